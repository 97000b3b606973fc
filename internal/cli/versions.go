package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tinyprotocol/internal/app"
)

func newVersionsCommand() *cobra.Command {
	opts := sourceOptions{}
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Resolve and list the protocol ordinal of every declared version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd.Context(), cmd, opts)
		},
	}
	bindSourceFlags(cmd, &opts)
	return cmd
}

func runVersions(ctx context.Context, cmd *cobra.Command, opts sourceOptions) error {
	service := newAppService()
	result, err := service.Versions(ctx, app.VersionsRequest{
		SpecPath:  opts.specPath(cmd),
		Overrides: opts.overrides(cmd),
	})
	if err != nil {
		return err
	}
	for idx, version := range result.Versions {
		marker := ""
		if version.ID == result.Pivot {
			marker = " (pivot)"
		}
		fmt.Printf("%3d  %-12s %d%s\n", idx, version.ID, version.Protocol, marker)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}
