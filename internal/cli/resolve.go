package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tinyprotocol/internal/app"
)

type resolveOptions struct {
	sourceOptions
	Output        string
	Reobf         string
	AllowUnmapped bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve class and member ancestry and write the mapping table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}
	bindSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().StringVar(&opts.Output, "output", "", "Mapping table output path")
	cmd.Flags().StringVar(&opts.Reobf, "reobf-properties", "", "Properties file output path")
	cmd.Flags().BoolVar(&opts.AllowUnmapped, "allow-unmapped", false, "Skip entry points without ancestry instead of failing")

	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("reobf_properties", cmd.Flags().Lookup("reobf-properties"))
	_ = viper.BindPFlag("allow_unmapped", cmd.Flags().Lookup("allow-unmapped"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		SpecPath:      opts.specPath(cmd),
		Overrides:     opts.overrides(cmd),
		OutputPath:    resolveString(cmd, opts.Output, "output", "output"),
		ReobfPath:     resolveString(cmd, opts.Reobf, "reobf_properties", "reobf-properties"),
		AllowUnmapped: resolveBool(cmd, opts.AllowUnmapped, "allow_unmapped", "allow-unmapped"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("resolved: %s -> %s (%d classes, %d fields, %d methods)\n", result.Name, result.OutputPath, result.Classes, result.Fields, result.Methods)
	for _, name := range result.Unmapped {
		fmt.Printf("unmapped: %s\n", name)
	}
	return nil
}
