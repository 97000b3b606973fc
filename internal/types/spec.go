package types

type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ProjectSpec declares the versions, mapping sources and entry points of
// one resolution run.
type ProjectSpec struct {
	Metadata       Metadata      `yaml:"metadata"`
	Versions       []VersionSpec `yaml:"versions"`
	Pivot          string        `yaml:"pivot,omitempty"`
	ComparisonKeys []string      `yaml:"comparison_keys,omitempty"`
	RuntimeName    string        `yaml:"runtime_name,omitempty"`
	Load           LoadSpec      `yaml:"load,omitempty"`
	Sources        SourceSpec    `yaml:"sources,omitempty"`
	Cache          CacheSpec     `yaml:"cache,omitempty"`
	Classes        []ClassSpec   `yaml:"classes,omitempty"`
	ClassGlobs     []string      `yaml:"class_globs,omitempty"`
	Output         OutputSpec    `yaml:"output,omitempty"`
}

// VersionSpec leaves Protocol unset when the ordinal should come from the
// protocol index.
type VersionSpec struct {
	ID       string `yaml:"id"`
	Protocol *int   `yaml:"protocol,omitempty"`
}

type LoadSpec struct {
	Mode            LoadMode `yaml:"mode,omitempty"`
	RequiredSystems []string `yaml:"required_systems,omitempty"`
	Systems         []string `yaml:"systems,omitempty"`
	Workers         int      `yaml:"workers,omitempty"`
}

type SourceSpec struct {
	MappingsDir     string `yaml:"mappings_dir,omitempty"`
	WorkDir         string `yaml:"work_dir,omitempty"`
	ProtocolIndex   string `yaml:"protocol_index,omitempty"`
	VersionManifest string `yaml:"version_manifest,omitempty"`
	IntermediaryURL string `yaml:"intermediary_url,omitempty"`
	SeargeURL       string `yaml:"searge_url,omitempty"`
	SeargeLegacyURL string `yaml:"searge_legacy_url,omitempty"`
	SpigotURL       string `yaml:"spigot_url,omitempty"`
	VerifyChecksums *bool  `yaml:"verify_checksums,omitempty"`
	HTTPTimeoutSec  int    `yaml:"http_timeout_sec,omitempty"`
	HTTPRetries     int    `yaml:"http_retries,omitempty"`
}

type CacheSpec struct {
	Dir      string `yaml:"dir,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// ClassSpec is one entry point. Aliases seed a multi-root lineage when
// the class is known under different names across naming eras.
type ClassSpec struct {
	Name         string       `yaml:"name"`
	Aliases      []string     `yaml:"aliases,omitempty"`
	Superclasses []string     `yaml:"superclasses,omitempty"`
	Fields       bool         `yaml:"fields,omitempty"`
	Methods      bool         `yaml:"methods,omitempty"`
	Members      []MemberSpec `yaml:"members,omitempty"`
	Optional     bool         `yaml:"optional,omitempty"`
}

// Candidates lists every name the class is seeded with.
func (c ClassSpec) Candidates() []string {
	out := make([]string, 0, len(c.Aliases)+1)
	out = append(out, c.Name)
	return append(out, c.Aliases...)
}

// MemberSpec resolves one named member through candidate name and
// descriptor pairs written in any naming system.
type MemberSpec struct {
	ID         string      `yaml:"id"`
	Kind       MemberKind  `yaml:"kind"`
	Candidates []MemberRef `yaml:"candidates"`
}

type OutputSpec struct {
	Path            string `yaml:"path,omitempty"`
	ReobfProperties string `yaml:"reobf_properties,omitempty"`
	AllowUnmapped   bool   `yaml:"allow_unmapped,omitempty"`
}
