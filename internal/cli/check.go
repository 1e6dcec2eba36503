package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lockwatch/pkg/reconcile"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	root string // repository root to scan for manifests
}

// newCheckCmd creates the check command. The arguments are the files a
// commit touches, the way pre-commit hands them over; the command decides
// from those which projects need revalidation.
func newCheckCmd() *cobra.Command {
	opts := checkOpts{root: "."}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate lock-file pins against the declared ranges",
		Long: `Validate that every version pinned in the lock files still falls inside
the range declared in the project manifest.

The arguments are the changed files of the current commit. Nothing is
validated unless a dependency-declaring file (pyproject.toml or setup.cfg)
is among them.

Examples:
  lockwatch check pyproject.toml
  lockwatch check $(git diff --cached --name-only)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", opts.root, "repository root to scan for manifests")

	return cmd
}

func runCheck(ctx context.Context, opts checkOpts, files []string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner := reconcile.NewRunner(opts.root, logger)
	if err := runner.Run(ctx, files); err != nil {
		var violation *reconcile.GroupViolation
		if errors.As(err, &violation) {
			printViolation(violation)
			return fmt.Errorf("pinned dependencies are out of date")
		}
		return err
	}

	prog.done("Pinned dependencies reconcile with their declarations")
	printSuccess("all pins fulfil their declared ranges")
	return nil
}
