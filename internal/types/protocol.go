package types

// ProtocolData is one record of the external version protocol index.
type ProtocolData struct {
	MinecraftVersion string `json:"minecraftVersion"`
	Version          int    `json:"version"`
	DataVersion      int    `json:"dataVersion"`
	UsesNetty        bool   `json:"usesNetty"`
	MajorVersion     string `json:"majorVersion"`
}

// ProtocolIndex maps a version identifier to its protocol ordinal.
type ProtocolIndex map[string]int

// UnresolvedProtocol marks a registered version without a known ordinal.
const UnresolvedProtocol = -1

type VersionEntry struct {
	ID       string `yaml:"id" json:"id"`
	Protocol int    `yaml:"protocol" json:"protocol"`
}
