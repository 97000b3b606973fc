package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/core"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const (
	defaultTablePath = "mappings.yaml"
	suggestionLimit  = 3
)

// Resolve runs the full pipeline: registry, mapping load, ancestry
// resolution of every entry point, then the table and properties
// outputs. Every entry point is attempted before failures are reported.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	run, err := s.compileRun(ctx, req.SpecPath, req.Overrides)
	if err != nil {
		return ResolveResult{}, err
	}
	files, report, err := s.loadFiles(ctx, run)
	if err != nil {
		return ResolveResult{}, err
	}
	pivot, ok := run.compiled.Registry.IndexOf(run.compiled.Pivot)
	if !ok {
		return ResolveResult{}, shared.InvalidConfiguration(fmt.Sprintf("pivot %s is not a declared version", run.compiled.Pivot))
	}

	resolver := entryResolver{
		engine:        core.NewAncestryEngine(files, run.compiled.Keys),
		pivot:         pivot,
		allowUnmapped: req.AllowUnmapped || run.spec.Output.AllowUnmapped,
	}
	resolver.builder = tableBuilder{
		engine:   resolver.engine,
		runtime:  run.compiled.Runtime,
		ordinals: run.ordinals,
	}

	entries := append([]types.ClassSpec(nil), run.spec.Classes...)
	entries = append(entries, resolver.expandGlobs(ctx, run.spec.ClassGlobs, run.spec.Classes)...)

	table := types.MappingTable{Versions: run.compiled.Registry.Versions()}
	var failures []error
	for _, class := range entries {
		entry, err := resolver.resolveClass(ctx, class)
		if err != nil {
			if shared.KindOf(err) == shared.KindUnmappedEntity && (resolver.allowUnmapped || class.Optional) {
				log.Ctx(ctx).Warn().Str("class", class.Name).Msg(shared.ErrorMessage(err))
				resolver.unmapped = append(resolver.unmapped, class.Name)
				continue
			}
			log.Ctx(ctx).Error().Err(err).Str("class", class.Name).Msg("failed to resolve entry point")
			failures = append(failures, err)
			continue
		}
		table.Classes = append(table.Classes, entry)
	}
	if len(failures) > 0 {
		return ResolveResult{}, aggregateFailures(failures)
	}

	outputPath := firstNonEmpty(req.OutputPath, run.spec.Output.Path, defaultTablePath)
	if err := s.TableWriter.WriteTable(outputPath, table); err != nil {
		return ResolveResult{}, err
	}
	if reobfPath := firstNonEmpty(req.ReobfPath, run.spec.Output.ReobfProperties); reobfPath != "" {
		if err := s.ReobfWriter.WriteProperties(reobfPath, table); err != nil {
			return ResolveResult{}, err
		}
	}

	result := ResolveResult{
		Name:       run.spec.Metadata.Name,
		OutputPath: outputPath,
		Classes:    len(table.Classes),
		Unmapped:   resolver.unmapped,
		Report:     report,
	}
	for _, class := range table.Classes {
		result.Fields += len(class.Fields)
		result.Methods += len(class.Methods)
	}
	log.Ctx(ctx).Info().
		Int("classes", result.Classes).
		Int("fields", result.Fields).
		Int("methods", result.Methods).
		Int("unmapped", len(result.Unmapped)).
		Msg("mapping table written")
	return result, nil
}

type entryResolver struct {
	engine        core.AncestryEngine
	builder       tableBuilder
	pivot         int
	allowUnmapped bool
	unmapped      []string
}

func (r *entryResolver) resolveClass(ctx context.Context, class types.ClassSpec) (types.ClassEntry, error) {
	lineage, err := r.classLineage(ctx, class.Name, class.Aliases)
	if err != nil {
		return types.ClassEntry{}, err
	}
	entry, err := r.builder.classEntry(class.Name, lineage)
	if err != nil {
		return types.ClassEntry{}, err
	}

	for _, member := range class.Members {
		memberLineage, err := r.engine.MemberLineage(ctx, member.Kind, lineage, member.Candidates)
		if err != nil {
			return types.ClassEntry{}, err
		}
		if memberLineage.Empty() {
			id := class.Name + "#" + member.ID
			if r.allowUnmapped || class.Optional {
				log.Ctx(ctx).Warn().Str("member", id).Msg("member has no ancestry")
				r.unmapped = append(r.unmapped, id)
				continue
			}
			return types.ClassEntry{}, shared.UnmappedEntity(id, nil)
		}
		memberEntry, err := r.builder.memberEntry(member.Kind, member.ID, memberLineage)
		if err != nil {
			return types.ClassEntry{}, err
		}
		appendMember(&entry, member.Kind, memberEntry)
	}

	if !class.Fields && !class.Methods {
		return entry, nil
	}
	chain := []types.ClassLineage{lineage}
	for _, super := range class.Superclasses {
		superLineage, err := r.classLineage(ctx, super, nil)
		if err != nil {
			if shared.KindOf(err) == shared.KindUnmappedEntity {
				log.Ctx(ctx).Warn().Str("class", class.Name).Str("superclass", super).Msg("superclass has no ancestry; skipping")
				continue
			}
			return types.ClassEntry{}, err
		}
		chain = append(chain, superLineage)
	}
	for _, kind := range []types.MemberKind{types.MemberKindField, types.MemberKindMethod} {
		if (kind == types.MemberKindField && !class.Fields) || (kind == types.MemberKindMethod && !class.Methods) {
			continue
		}
		for _, tree := range r.engine.WalkMembers(ctx, kind, chain) {
			memberEntry, err := r.builder.memberEntry(kind, "", types.MemberLineage{Segments: []types.MemberTree{tree}})
			if err != nil {
				return types.ClassEntry{}, err
			}
			appendMember(&entry, kind, memberEntry)
		}
	}
	return entry, nil
}

// classLineage resolves a single name from the pivot, or every candidate
// as a multi-root lineage when aliases are given.
func (r *entryResolver) classLineage(ctx context.Context, name string, aliases []string) (types.ClassLineage, error) {
	var lineage types.ClassLineage
	if len(aliases) == 0 {
		tree, err := r.engine.ClassAncestors(ctx, name, r.pivot)
		if err != nil {
			return types.ClassLineage{}, err
		}
		if !tree.Empty() {
			lineage.Segments = []types.ClassTree{tree}
		}
	} else {
		candidates := append([]string{name}, aliases...)
		var err error
		lineage, err = r.engine.ClassLineage(ctx, candidates)
		if err != nil {
			return types.ClassLineage{}, err
		}
	}
	if lineage.Empty() {
		suggestions := core.SuggestNames(shared.NormalizeClassName(name), r.engine.File(r.pivot).Names(), suggestionLimit)
		return types.ClassLineage{}, shared.UnmappedEntity(name, suggestions)
	}
	return lineage, nil
}

// expandGlobs turns class globs into class-only entry points, matched
// against the Mojang names of the pivot version. Explicit entries win.
func (r *entryResolver) expandGlobs(ctx context.Context, patterns []string, explicit []types.ClassSpec) []types.ClassSpec {
	if len(patterns) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	for _, class := range explicit {
		seen[shared.NormalizeClassName(class.Name)] = struct{}{}
	}
	file := r.engine.File(r.pivot)
	var out []types.ClassSpec
	for i := range file.Classes {
		class := &file.Classes[i]
		name, ok := class.Mapped(types.NamingMojang)
		if !ok {
			name = class.Best()
		}
		if _, ok := seen[name]; ok {
			continue
		}
		for _, pattern := range patterns {
			matched, err := doublestar.Match(pattern, name)
			if err != nil || !matched {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, types.ClassSpec{Name: name, Optional: true})
			break
		}
	}
	log.Ctx(ctx).Debug().Strs("globs", patterns).Int("classes", len(out)).Msg("expanded class globs")
	return out
}

func appendMember(entry *types.ClassEntry, kind types.MemberKind, member types.MemberEntry) {
	if kind == types.MemberKindMethod {
		entry.Methods = append(entry.Methods, member)
		return
	}
	entry.Fields = append(entry.Fields, member)
}

// aggregateFailures keeps the code and message of the first failure so
// callers can still classify it.
func aggregateFailures(failures []error) error {
	if len(failures) == 1 {
		return failures[0]
	}
	first := failures[0]
	return errbuilder.New().
		WithCode(errbuilder.CodeOf(first)).
		WithMsg(fmt.Sprintf("%s (and %d more failures)", shared.ErrorMessage(first), len(failures)-1)).
		WithCause(errors.Join(failures...))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
