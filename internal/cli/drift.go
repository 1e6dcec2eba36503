package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lockwatch/pkg/reconcile"
)

// driftOpts holds the command-line flags for the drift command.
type driftOpts struct {
	dir string // project directory containing setup.cfg
}

// newDriftCmd creates the drift command, the narrow variant of check for a
// single setup.cfg project: only the dependency groups whose declarations
// differ from the previously committed manifest are revalidated.
func newDriftCmd() *cobra.Command {
	opts := driftOpts{dir: "."}

	cmd := &cobra.Command{
		Use:   "drift [files...]",
		Short: "Revalidate only the dependency groups changed since the last commit",
		Long: `Compare the current setup.cfg declarations against the version committed
at HEAD and revalidate only the dependency groups whose declarations
changed.

The command is a no-op unless setup.cfg is among the changed files. It must
run inside a git repository; an unreadable prior revision is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrift(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", opts.dir, "project directory containing setup.cfg")

	return cmd
}

func runDrift(ctx context.Context, opts driftOpts, files []string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner := reconcile.NewDriftRunner(opts.dir, logger)
	if err := runner.Run(ctx, files); err != nil {
		var violation *reconcile.GroupViolation
		if errors.As(err, &violation) {
			printViolation(violation)
			return fmt.Errorf("pinned dependencies are out of date")
		}
		return err
	}

	prog.done("Drifted dependency groups reconcile")
	printSuccess("changed declarations are covered by their lock files")
	return nil
}
