package app

import (
	"tinyprotocol/internal/core"
	"tinyprotocol/internal/policies"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// tableBuilder renders resolved lineages into mapping table entries.
type tableBuilder struct {
	engine   core.AncestryEngine
	runtime  policies.RuntimeNamePolicy
	ordinals []int
}

func (b tableBuilder) classEntry(name string, lineage types.ClassLineage) (types.ClassEntry, error) {
	var runs []core.NameRun
	var rows []types.VersionRow
	for _, segment := range lineage.Segments {
		run := core.NameRun{Offset: segment.Offset}
		for v := segment.Offset; v < segment.End(); v++ {
			element, _ := segment.At(v)
			runtime := b.runtime.RuntimeName(element.Names, element.Original)
			run.Names = append(run.Names, runtime)
			rows = append(rows, types.VersionRow{
				Version:    b.engine.File(v).Version,
				Protocol:   b.ordinals[v],
				Obfuscated: element.Original,
				Runtime:    runtime,
			})
		}
		runs = append(runs, run)
	}
	mappings, err := core.JoinRuns(runs, b.ordinals)
	if err != nil {
		return types.ClassEntry{}, err
	}
	minProtocol, maxProtocol := core.ProtocolBounds(lineage.Offset(), lineage.End()-lineage.Offset(), b.ordinals)
	return types.ClassEntry{
		Name:     name,
		Mappings: mappings,
		Min:      minProtocol,
		Max:      maxProtocol,
		Offset:   lineage.Offset(),
		Size:     lineage.Size(),
		Rows:     rows,
	}, nil
}

// memberEntry renders a member lineage. An empty name is replaced by the
// Mojang name of the newest element.
func (b tableBuilder) memberEntry(kind types.MemberKind, name string, lineage types.MemberLineage) (types.MemberEntry, error) {
	var runs []core.NameRun
	var rows []types.VersionRow
	for _, segment := range lineage.Segments {
		run := core.NameRun{Offset: segment.Offset}
		for v := segment.Offset; v < segment.End(); v++ {
			element, _ := segment.At(v)
			runtime := b.runtime.RuntimeName(element.Names, element.Original)
			run.Names = append(run.Names, runtime)
			rows = append(rows, types.VersionRow{
				Version:    b.engine.File(v).Version,
				Protocol:   b.ordinals[v],
				Obfuscated: element.Original,
				Runtime:    runtime,
				Descriptor: b.runtimeDescriptor(v, element.Descriptor),
			})
		}
		runs = append(runs, run)
	}
	mappings, err := core.JoinRuns(runs, b.ordinals)
	if err != nil {
		return types.MemberEntry{}, err
	}

	newestIndex := lineage.End() - 1
	newest, _ := lineage.At(newestIndex)
	if name == "" {
		name = newest.Best()
		if mojang, ok := newest.Mapped(types.NamingMojang); ok {
			name = mojang
		}
	}
	descriptor := b.engine.File(newestIndex).RemapDescriptor(newest.Descriptor, types.NamingMojang)
	entry := types.MemberEntry{
		Name:       name,
		Descriptor: descriptor,
		Mappings:   mappings,
		Offset:     lineage.Offset(),
		Size:       lineage.Size(),
		Rows:       rows,
	}
	entry.Min, entry.Max = core.ProtocolBounds(lineage.Offset(), lineage.End()-lineage.Offset(), b.ordinals)
	if kind == types.MemberKindField && descriptor != "" {
		entry.Type, entry.ExternalType = shared.JavaTypeName(descriptor)
	}
	return entry, nil
}

func (b tableBuilder) runtimeDescriptor(version int, desc string) string {
	if desc == "" || b.runtime.System == "" {
		return desc
	}
	return b.engine.File(version).RemapDescriptor(desc, b.runtime.System)
}
