package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tinyprotocol/internal/app"
)

// sourceOptions are the spec overrides shared by every command that
// touches the version registry or the mapping sources.
type sourceOptions struct {
	Spec          string
	MappingsDir   string
	WorkDir       string
	ProtocolIndex string
	CacheDir      string
	NoCache       bool
	Workers       int
}

func bindSpecFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "spec", "tinyprotocol.yaml", "Project spec path")
	_ = viper.BindPFlag("spec", cmd.Flags().Lookup("spec"))
}

func bindSourceFlags(cmd *cobra.Command, opts *sourceOptions) {
	bindSpecFlag(cmd, &opts.Spec)
	cmd.Flags().StringVar(&opts.MappingsDir, "mappings-dir", "", "Read mappings from a local directory tree")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "", "Download directory for remote mappings")
	cmd.Flags().StringVar(&opts.ProtocolIndex, "protocol-index", "", "Protocol index URL or file")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Mapping cache directory")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Ignore the mapping cache")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent version loads")

	_ = viper.BindPFlag("mappings_dir", cmd.Flags().Lookup("mappings-dir"))
	_ = viper.BindPFlag("work_dir", cmd.Flags().Lookup("work-dir"))
	_ = viper.BindPFlag("protocol_index", cmd.Flags().Lookup("protocol-index"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("no_cache", cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
}

func (o sourceOptions) specPath(cmd *cobra.Command) string {
	return resolveString(cmd, o.Spec, "spec", "spec")
}

func (o sourceOptions) overrides(cmd *cobra.Command) app.SourceOverrides {
	return app.SourceOverrides{
		MappingsDir:   resolveString(cmd, o.MappingsDir, "mappings_dir", "mappings-dir"),
		WorkDir:       resolveString(cmd, o.WorkDir, "work_dir", "work-dir"),
		ProtocolIndex: resolveString(cmd, o.ProtocolIndex, "protocol_index", "protocol-index"),
		CacheDir:      resolveString(cmd, o.CacheDir, "cache_dir", "cache-dir"),
		NoCache:       resolveBool(cmd, o.NoCache, "no_cache", "no-cache"),
		Workers:       resolveInt(cmd, o.Workers, "workers", "workers"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetString(key); configured != "" {
		return configured
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
