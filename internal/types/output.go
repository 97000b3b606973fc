package types

// MappingTable is the resolved artifact handed to code generation.
type MappingTable struct {
	Versions []VersionEntry `yaml:"versions"`
	Classes  []ClassEntry   `yaml:"classes"`
}

type ClassEntry struct {
	Name     string        `yaml:"name"`
	Mappings string        `yaml:"mappings"`
	Min      *int          `yaml:"min,omitempty"`
	Max      *int          `yaml:"max,omitempty"`
	Offset   int           `yaml:"offset"`
	Size     int           `yaml:"size"`
	Rows     []VersionRow  `yaml:"rows"`
	Fields   []MemberEntry `yaml:"fields,omitempty"`
	Methods  []MemberEntry `yaml:"methods,omitempty"`
}

type MemberEntry struct {
	Name         string       `yaml:"name"`
	Descriptor   string       `yaml:"descriptor,omitempty"`
	Type         string       `yaml:"type,omitempty"`
	ExternalType bool         `yaml:"external_type,omitempty"`
	Mappings     string       `yaml:"mappings"`
	Min          *int         `yaml:"min,omitempty"`
	Max          *int         `yaml:"max,omitempty"`
	Offset       int          `yaml:"offset"`
	Size         int          `yaml:"size"`
	Rows         []VersionRow `yaml:"rows"`
}

// VersionRow is one covered version of a tree.
type VersionRow struct {
	Version    string `yaml:"version"`
	Protocol   int    `yaml:"protocol"`
	Obfuscated string `yaml:"obfuscated"`
	Runtime    string `yaml:"runtime"`
	Descriptor string `yaml:"descriptor,omitempty"`
}

// LoadReport summarizes how each version's mapping file was assembled.
type LoadReport struct {
	CacheHit bool            `yaml:"cache_hit"`
	Versions []VersionReport `yaml:"versions"`
}

type VersionReport struct {
	Version  string         `yaml:"version"`
	Loaded   []NamingSystem `yaml:"loaded"`
	Absent   []NamingSystem `yaml:"absent,omitempty"`
	Failures []string       `yaml:"failures,omitempty"`
	Degraded bool           `yaml:"degraded,omitempty"`
	Classes  int            `yaml:"classes"`
}
