package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/openapi"
)

// newOpenAPICmd creates the openapi command. Like check, it takes the
// changed files of a commit and ignores everything that is not a known API
// definition file.
func newOpenAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "openapi [files...]",
		Short: "Validate OpenAPI documents among changed files",
		Long: `Validate every OpenAPI document among the changed files against the
OpenAPI 3 schema. One diagnostic line is printed per schema error.

Files not named openapi.yaml, openapi.yml, or openapi.json are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenAPI(cmd.Context(), args)
		},
	}
}

func runOpenAPI(ctx context.Context, files []string) error {
	logger := loggerFromContext(ctx)
	checker := openapi.NewChecker(logger)
	if n := checker.Check(ctx, files); n > 0 {
		printError("%d schema error(s) found", n)
		return errors.New(errors.ErrCodeInvalidSpec, "OpenAPI document is invalid")
	}
	printSuccess("OpenAPI documents are valid")
	return nil
}
