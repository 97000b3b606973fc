package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/core"
	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

// runContext is a compiled spec whose registry is resolved and sealed.
type runContext struct {
	spec     types.ProjectSpec
	compiled core.CompiledSpec
	ordinals []int
	warnings []string
}

// Versions resolves the registry without touching any mapping source.
func (s Service) Versions(ctx context.Context, req VersionsRequest) (VersionsResult, error) {
	run, err := s.compileRun(ctx, req.SpecPath, req.Overrides)
	if err != nil {
		return VersionsResult{}, err
	}
	return VersionsResult{
		Versions: run.compiled.Registry.Versions(),
		Pivot:    run.compiled.Pivot,
		Warnings: run.warnings,
	}, nil
}

// Prepare resolves the registry and loads every mapping file, through the
// cache when one is configured.
func (s Service) Prepare(ctx context.Context, req PrepareRequest) (PrepareResult, error) {
	run, err := s.compileRun(ctx, req.SpecPath, req.Overrides)
	if err != nil {
		return PrepareResult{}, err
	}
	_, report, err := s.loadFiles(ctx, run)
	if err != nil {
		return PrepareResult{}, err
	}
	if reportPath := strings.TrimSpace(req.ReportPath); reportPath != "" {
		if err := s.TableWriter.WriteLoadReport(reportPath, report); err != nil {
			return PrepareResult{}, err
		}
	}
	return PrepareResult{
		Versions: run.compiled.Registry.Versions(),
		Report:   report,
	}, nil
}

// compileRun loads and compiles the spec, then resolves every protocol
// ordinal. No mapping source is consulted before the registry is sealed.
func (s Service) compileRun(ctx context.Context, specPath string, overrides SourceOverrides) (runContext, error) {
	spec, err := s.loadSpec(specPath)
	if err != nil {
		return runContext{}, err
	}
	emitHints(checkOverrideHints(overrides, spec))
	spec = applyOverrides(spec, overrides)

	compiled, err := core.NewSpecCompiler().Compile(ctx, spec)
	if err != nil {
		return runContext{}, err
	}
	if err := compiled.Registry.ResolveAll(ctx, s.protocolIndexFor(spec)); err != nil {
		return runContext{}, err
	}
	compiled.Registry.Seal()
	ordinals, err := compiled.Registry.Ordinals()
	if err != nil {
		return runContext{}, err
	}
	warnings := compiled.Registry.CheckOrdering(ctx)
	log.Ctx(ctx).Info().
		Str("spec", spec.Metadata.Name).
		Int("versions", len(ordinals)).
		Str("pivot", compiled.Pivot).
		Msg("version registry resolved")
	return runContext{
		spec:     spec,
		compiled: compiled,
		ordinals: ordinals,
		warnings: warnings,
	}, nil
}

// loadFiles returns one mapping file per registered version. A cache hit
// skips every source fetch; a cache failure only costs a rebuild.
func (s Service) loadFiles(ctx context.Context, run runContext) ([]types.MappingFile, types.LoadReport, error) {
	versions := run.compiled.Registry.IDs()
	cache := s.cacheFor(run.spec)
	if cache != nil {
		files, ok, err := cache.Load(ctx, versions)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("mapping cache unreadable; rebuilding")
		}
		if ok {
			log.Ctx(ctx).Info().Int("versions", len(files)).Msg("mapping cache hit")
			return files, cacheHitReport(files), nil
		}
	}

	loader := newMappingLoader(s.sourcesFor(run.spec), run.compiled.Load, run.spec.Load.Workers)
	files, reports, err := loader.LoadAll(ctx, versions)
	if err != nil {
		return nil, types.LoadReport{Versions: reports}, err
	}
	if cache != nil {
		storeCache(ctx, cache, versions, files)
	}
	return files, types.LoadReport{Versions: reports}, nil
}

func storeCache(ctx context.Context, cache ports.MappingCachePort, versions []string, files []types.MappingFile) {
	if err := cache.Store(ctx, versions, files); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to store mapping cache")
	}
}

func cacheHitReport(files []types.MappingFile) types.LoadReport {
	report := types.LoadReport{CacheHit: true}
	for _, file := range files {
		report.Versions = append(report.Versions, types.VersionReport{
			Version: file.Version,
			Loaded:  file.Systems,
			Classes: len(file.Classes),
		})
	}
	return report
}
