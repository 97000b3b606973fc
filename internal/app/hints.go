package app

import (
	"fmt"
	"os"
	"strings"

	"tinyprotocol/internal/types"
)

// overrideHint pairs a flag name with the spec key it overrides.
type overrideHint struct {
	FlagName string
	SpecKey  string
}

// checkOverrideHints returns hints for flags whose value repeats what
// the spec already declares.
func checkOverrideHints(overrides SourceOverrides, spec types.ProjectSpec) []string {
	checks := []struct {
		hint     overrideHint
		provided string
		declared string
	}{
		{overrideHint{"--mappings-dir", "sources.mappings_dir"}, overrides.MappingsDir, spec.Sources.MappingsDir},
		{overrideHint{"--work-dir", "sources.work_dir"}, overrides.WorkDir, spec.Sources.WorkDir},
		{overrideHint{"--protocol-index", "sources.protocol_index"}, overrides.ProtocolIndex, spec.Sources.ProtocolIndex},
		{overrideHint{"--cache-dir", "cache.dir"}, overrides.CacheDir, spec.Cache.Dir},
	}

	var hints []string
	for _, c := range checks {
		provided := strings.TrimSpace(c.provided)
		if provided != "" && provided == strings.TrimSpace(c.declared) {
			hints = append(hints, fmt.Sprintf(
				"hint: %s repeats the spec value (%s); you can omit the flag",
				c.hint.FlagName, c.hint.SpecKey,
			))
		}
	}
	return hints
}

// emitHints writes hint messages to stderr.
func emitHints(hints []string) {
	for _, h := range hints {
		fmt.Fprintln(os.Stderr, h)
	}
}
