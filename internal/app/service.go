package app

import (
	"tinyprotocol/internal/adapters"
	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

// Service wires the resolution pipeline to its ports. Sources,
// ProtocolIndex and Cache are optional; when nil they are built from the
// spec's source and cache settings.
type Service struct {
	SpecLoader    ports.ProjectSpecPort
	Sources       ports.MappingSourcePort
	ProtocolIndex ports.ProtocolIndexPort
	Cache         ports.MappingCachePort
	TableWriter   ports.TableWriterPort
	TableReader   ports.TableReaderPort
	ReobfWriter   ports.ReobfWriterPort
}

func NewService() Service {
	return Service{
		SpecLoader:  adapters.NewSpecFileAdapter(),
		TableWriter: adapters.NewOutputFileAdapter(""),
		TableReader: adapters.NewOutputReaderAdapter(),
		ReobfWriter: adapters.NewReobfOutputAdapter(""),
	}
}

func (s Service) sourcesFor(spec types.ProjectSpec) ports.MappingSourcePort {
	if s.Sources != nil {
		return s.Sources
	}
	if spec.Sources.MappingsDir != "" {
		return adapters.NewMappingDirAdapter(spec.Sources.MappingsDir)
	}
	verify := true
	if spec.Sources.VerifyChecksums != nil {
		verify = *spec.Sources.VerifyChecksums
	}
	return adapters.NewMappingHTTPAdapter(adapters.MappingHTTPConfig{
		VersionManifest: spec.Sources.VersionManifest,
		IntermediaryURL: spec.Sources.IntermediaryURL,
		SeargeURL:       spec.Sources.SeargeURL,
		SeargeLegacyURL: spec.Sources.SeargeLegacyURL,
		SpigotURL:       spec.Sources.SpigotURL,
		WorkDir:         spec.Sources.WorkDir,
		VerifyChecksums: verify,
		HTTPTimeoutSec:  spec.Sources.HTTPTimeoutSec,
		HTTPRetries:     spec.Sources.HTTPRetries,
	})
}

func (s Service) protocolIndexFor(spec types.ProjectSpec) ports.ProtocolIndexPort {
	if s.ProtocolIndex != nil {
		return s.ProtocolIndex
	}
	return adapters.NewProtocolIndexAdapter(spec.Sources.ProtocolIndex, spec.Sources.HTTPTimeoutSec, spec.Sources.HTTPRetries)
}

func (s Service) cacheFor(spec types.ProjectSpec) ports.MappingCachePort {
	if spec.Cache.Disabled {
		return nil
	}
	if s.Cache != nil {
		return s.Cache
	}
	if spec.Cache.Dir == "" {
		return nil
	}
	return adapters.NewMappingCacheAdapter(spec.Cache.Dir)
}

// applyOverrides folds request overrides into the spec.
func applyOverrides(spec types.ProjectSpec, overrides SourceOverrides) types.ProjectSpec {
	if overrides.MappingsDir != "" {
		spec.Sources.MappingsDir = overrides.MappingsDir
	}
	if overrides.WorkDir != "" {
		spec.Sources.WorkDir = overrides.WorkDir
	}
	if overrides.ProtocolIndex != "" {
		spec.Sources.ProtocolIndex = overrides.ProtocolIndex
	}
	if overrides.CacheDir != "" {
		spec.Cache.Dir = overrides.CacheDir
	}
	if overrides.NoCache {
		spec.Cache.Disabled = true
	}
	if overrides.Workers > 0 {
		spec.Load.Workers = overrides.Workers
	}
	return spec
}
