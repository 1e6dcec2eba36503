package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lockwatch/pkg/buildinfo"
)

// Execute runs the lockwatch CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (check, drift,
// openapi, completion), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. Violations are printed by the commands themselves, so
// cobra's own error echo is silenced.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:           "lockwatch",
		Short:         "Lockwatch keeps pinned dependency versions in step with their declared ranges",
		Long:          `Lockwatch is a pre-commit style checker that reconciles the exact versions recorded in lock files against the version ranges declared in project manifests, so a declaration change never ships without regenerated pins.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newDriftCmd())
	root.AddCommand(newOpenAPICmd())
	root.AddCommand(completionCommand())

	return root.ExecuteContext(ctx)
}
