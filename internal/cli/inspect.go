package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tinyprotocol/internal/app"
)

type inspectOptions struct {
	Table    string
	Class    string
	Protocol int
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a mapping table or look up runtime names at one protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Table, "table", "mappings.yaml", "Mapping table path")
	cmd.Flags().StringVar(&opts.Class, "class", "", "Class to look up")
	cmd.Flags().IntVar(&opts.Protocol, "protocol", -1, "Protocol ordinal to look up")
	_ = viper.BindPFlag("table", cmd.Flags().Lookup("table"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		TablePath: resolveString(cmd, opts.Table, "table", "table"),
		Class:     opts.Class,
		Protocol:  opts.Protocol,
	})
	if err != nil {
		return err
	}

	fmt.Printf("versions: %d\n", len(result.Versions))
	fmt.Println("classes:")
	for _, class := range result.Classes {
		fmt.Printf("- %s [%d, %d) %s: %d fields, %d methods\n", class.Name, class.Offset, class.Offset+class.Size, formatBounds(class.Min, class.Max), class.Fields, class.Methods)
	}
	for _, lookup := range result.Lookups {
		if !lookup.Found {
			fmt.Printf("%s: absent at protocol %d\n", lookup.Entity, opts.Protocol)
			continue
		}
		fmt.Printf("%s -> %s\n", lookup.Entity, lookup.Runtime)
	}
	return nil
}

func formatBounds(minProtocol *int, maxProtocol *int) string {
	low, high := "*", "*"
	if minProtocol != nil {
		low = fmt.Sprint(*minProtocol)
	}
	if maxProtocol != nil {
		high = fmt.Sprint(*maxProtocol)
	}
	return low + ".." + high
}
