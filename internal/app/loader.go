package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tinyprotocol/internal/core"
	"tinyprotocol/internal/policies"
	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const defaultLoadWorkers = 4

// mappingLoader fetches and merges the naming systems of every version.
// Versions load concurrently and independently: one failing version does
// not cancel its siblings, and the first failure in version order is
// returned once all have finished.
type mappingLoader struct {
	source  ports.MappingSourcePort
	policy  policies.LoadPolicy
	workers int
}

func newMappingLoader(source ports.MappingSourcePort, policy policies.LoadPolicy, workers int) mappingLoader {
	if workers <= 0 {
		workers = defaultLoadWorkers
	}
	return mappingLoader{source: source, policy: policy, workers: workers}
}

func (l mappingLoader) LoadAll(ctx context.Context, versions []string) ([]types.MappingFile, []types.VersionReport, error) {
	files := make([]types.MappingFile, len(versions))
	reports := make([]types.VersionReport, len(versions))
	errs := make([]error, len(versions))

	group := new(errgroup.Group)
	group.SetLimit(l.workers)
	for idx, version := range versions {
		group.Go(func() error {
			files[idx], reports[idx], errs[idx] = l.loadVersion(ctx, version)
			return nil
		})
	}
	_ = group.Wait()

	var first error
	for idx, err := range errs {
		if err == nil {
			continue
		}
		log.Ctx(ctx).Error().Err(err).Str("version", versions[idx]).Msg("failed to load mappings")
		if first == nil {
			first = err
		}
	}
	if first != nil {
		return nil, reports, first
	}
	return files, reports, nil
}

func (l mappingLoader) loadVersion(ctx context.Context, version string) (types.MappingFile, types.VersionReport, error) {
	report := types.VersionReport{Version: version}
	var tables []types.SymbolTable
	for _, system := range l.policy.Systems {
		if err := ctx.Err(); err != nil {
			return types.MappingFile{}, report, err
		}
		table, found, err := l.source.Fetch(ctx, version, system)
		if err == nil && found {
			err = core.ValidateTable(version, table)
		}
		switch {
		case err != nil:
			if l.policy.Decide(system, true) == policies.ActionAbort {
				return types.MappingFile{}, report, asMappingUnavailable(version, system, err)
			}
			log.Ctx(ctx).Warn().Err(err).Str("version", version).Str("system", string(system)).Msg("dropping naming system")
			report.Failures = append(report.Failures, string(system)+": "+shared.ErrorMessage(err))
			report.Degraded = true
		case !found:
			if l.policy.Decide(system, false) == policies.ActionAbort {
				return types.MappingFile{}, report, shared.MappingUnavailable(version, string(system), errors.New("required naming system is not published"))
			}
			log.Ctx(ctx).Debug().Str("version", version).Str("system", string(system)).Msg("naming system absent")
			report.Absent = append(report.Absent, system)
		default:
			tables = append(tables, table)
			report.Loaded = append(report.Loaded, system)
		}
	}
	file, err := core.MergeTables(version, tables)
	if err != nil {
		return types.MappingFile{}, report, err
	}
	report.Classes = len(file.Classes)
	log.Ctx(ctx).Debug().Str("version", version).Int("classes", report.Classes).Str("systems", types.SystemList(file.Systems)).Msg("mapping file merged")
	return file, report, nil
}

func asMappingUnavailable(version string, system types.NamingSystem, err error) error {
	if shared.KindOf(err) == shared.KindMappingUnavailable {
		return err
	}
	return shared.MappingUnavailable(version, string(system), err)
}
