package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tinyprotocol/internal/app"
	"tinyprotocol/internal/types"
)

type prepareOptions struct {
	sourceOptions
	Report string
}

func newPrepareCommand() *cobra.Command {
	opts := prepareOptions{}
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Download, merge and cache the mapping files of every version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrepare(cmd.Context(), cmd, opts)
		},
	}
	bindSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write a load report to this path")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runPrepare(ctx context.Context, cmd *cobra.Command, opts prepareOptions) error {
	service := newAppService()
	result, err := service.Prepare(ctx, app.PrepareRequest{
		SpecPath:   opts.specPath(cmd),
		Overrides:  opts.overrides(cmd),
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}
	if result.Report.CacheHit {
		fmt.Println("mapping cache hit")
	}
	for _, version := range result.Report.Versions {
		fmt.Printf("- %s: %d classes [%s]%s\n", version.Version, version.Classes, types.SystemList(version.Loaded), degradedSuffix(version))
	}
	return nil
}

func degradedSuffix(report types.VersionReport) string {
	var parts []string
	if len(report.Absent) > 0 {
		parts = append(parts, "absent: "+types.SystemList(report.Absent))
	}
	if report.Degraded {
		parts = append(parts, fmt.Sprintf("%d dropped", len(report.Failures)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
