package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tinyprotocol/internal/app"
)

type validateOptions struct {
	Spec string
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a project spec without loading any mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	bindSpecFlag(cmd, &opts.Spec)
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		SpecPath: resolveString(cmd, opts.Spec, "spec", "spec"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("validated: %s (%d versions, %d classes, %d globs)\n", result.Name, result.Versions, result.Classes, result.Globs)
	return nil
}
