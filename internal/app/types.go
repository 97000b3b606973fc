package app

import "tinyprotocol/internal/types"

// SourceOverrides replaces spec source settings for a single run. Empty
// values keep whatever the spec declares.
type SourceOverrides struct {
	MappingsDir   string
	WorkDir       string
	ProtocolIndex string
	CacheDir      string
	NoCache       bool
	Workers       int
}

type ValidateRequest struct {
	SpecPath string
}

type ValidateResult struct {
	Name     string
	Versions int
	Classes  int
	Globs    int
}

type VersionsRequest struct {
	SpecPath  string
	Overrides SourceOverrides
}

type VersionsResult struct {
	Versions []types.VersionEntry
	Pivot    string
	Warnings []string
}

type PrepareRequest struct {
	SpecPath   string
	Overrides  SourceOverrides
	ReportPath string
}

type PrepareResult struct {
	Versions []types.VersionEntry
	Report   types.LoadReport
}

type ResolveRequest struct {
	SpecPath      string
	Overrides     SourceOverrides
	OutputPath    string
	ReobfPath     string
	AllowUnmapped bool
}

type ResolveResult struct {
	Name       string
	OutputPath string
	Classes    int
	Fields     int
	Methods    int
	Unmapped   []string
	Report     types.LoadReport
}

type InspectRequest struct {
	TablePath string
	Class     string
	Protocol  int
}

type InspectResult struct {
	Versions []types.VersionEntry
	Classes  []InspectClassSummary
	Lookups  []InspectLookup
}

type InspectClassSummary struct {
	Name    string
	Offset  int
	Size    int
	Min     *int
	Max     *int
	Fields  int
	Methods int
}

// InspectLookup is the runtime name a class or member carries at one
// protocol ordinal.
type InspectLookup struct {
	Entity  string
	Runtime string
	Found   bool
}
