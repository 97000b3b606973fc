package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/policies"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

func segmentBounds(lineage types.ClassLineage) [][2]int {
	out := make([][2]int, 0, len(lineage.Segments))
	for _, segment := range lineage.Segments {
		out = append(out, [2]int{segment.Offset, segment.End()})
	}
	return out
}

func TestClassLineageRenamedAcrossEras(t *testing.T) {
	files := []types.MappingFile{
		buildFile(t, "1.16.5", mojangSpigot, classOf("ab", aliases("mojang", "net/minecraft/OldName", "spigot", "Old"))),
		buildFile(t, "1.17", mojangSpigot, classOf("ab", aliases("mojang", "net/minecraft/OldName", "spigot", "Old"))),
		buildFile(t, "1.17.1", mojangSpigot, classOf("cd", aliases("mojang", "net/minecraft/NewName", "spigot", "New"))),
	}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	lineage, err := engine.ClassLineage(t.Context(), []string{"net/minecraft/NewName", "net/minecraft/OldName"})
	require.NoError(t, err)
	if diff := cmp.Diff([][2]int{{0, 2}, {2, 3}}, segmentBounds(lineage)); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, lineage.Size())
	assert.Equal(t, 0, lineage.Offset())
	assert.Equal(t, 3, lineage.End())
}

func TestClassLineageAgreeingCandidatesUnion(t *testing.T) {
	files := spigotFiles(t, []string{"a", "a", "a"}, []string{"x", "y", "z"})
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	lineage, err := engine.ClassLineage(t.Context(), []string{"a", "z", "x"})
	require.NoError(t, err)
	if diff := cmp.Diff([][2]int{{0, 3}}, segmentBounds(lineage)); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
}

func TestClassLineageConflictingCandidates(t *testing.T) {
	files := []types.MappingFile{
		buildFile(t, "1.16.5", []types.NamingSystem{types.NamingMojang},
			classOf("p", aliases("mojang", "net/minecraft/X")),
			classOf("q", aliases("mojang", "net/minecraft/Y"))),
		buildFile(t, "1.17", []types.NamingSystem{types.NamingMojang},
			classOf("p", aliases("mojang", "net/minecraft/X")),
			classOf("q", aliases("mojang", "net/minecraft/Y"))),
	}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	_, err := engine.ClassLineage(t.Context(), []string{"net/minecraft/X", "net/minecraft/Y"})
	require.Error(t, err)
	assert.Equal(t, shared.KindConflictingAncestry, shared.KindOf(err))
}

func TestClassLineageGapKeepsSegments(t *testing.T) {
	files := []types.MappingFile{
		buildFile(t, "1.16.5", spigotOnly, classOf("x", aliases("spigot", "a"))),
		buildFile(t, "1.17", spigotOnly, classOf("w", aliases("spigot", "other"))),
		buildFile(t, "1.17.1", spigotOnly, classOf("x", aliases("spigot", "a"))),
	}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	lineage, err := engine.ClassLineage(t.Context(), []string{"a"})
	require.NoError(t, err)
	if diff := cmp.Diff([][2]int{{0, 1}, {2, 3}}, segmentBounds(lineage)); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, lineage.Size())
	_, ok := lineage.At(1)
	assert.False(t, ok)
}

func TestMemberLineageAcrossSegments(t *testing.T) {
	build := func(version string, obf string, alias string) types.MappingFile {
		class := classOf(obf, aliases("spigot", alias))
		class.Fields = []types.MemberMapping{memberOf("f", "I", aliases("spigot", "count"))}
		return buildFile(t, version, spigotOnly, class)
	}
	files := []types.MappingFile{build("1.16.5", "x", "a"), build("1.17", "y", "a"), build("1.17.1", "z", "b")}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	class, err := engine.ClassLineage(t.Context(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, class.Segments, 2)

	member, err := engine.MemberLineage(t.Context(), types.MemberKindField, class, []types.MemberRef{{Name: "count"}})
	require.NoError(t, err)
	require.Len(t, member.Segments, 2)
	assert.Equal(t, 0, member.Offset())
	assert.Equal(t, 3, member.End())
	assert.Equal(t, 3, member.Size())
	for _, segment := range member.Segments {
		for v := segment.Offset; v < segment.End(); v++ {
			assert.True(t, class.Segments[0].Covers(v) || class.Segments[1].Covers(v))
		}
	}
}

func TestWalkMembersSkipsConstants(t *testing.T) {
	files := memberFiles(t)
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())
	class, err := engine.ClassLineage(t.Context(), []string{"net/minecraft/Entity"})
	require.NoError(t, err)

	fields := engine.WalkMembers(t.Context(), types.MemberKindField, []types.ClassLineage{class})
	require.Len(t, fields, 1)
	assert.Equal(t, []string{"a", "a", "a"}, fields[0].Originals())
	for _, tree := range fields {
		for v := tree.Offset; v < tree.End(); v++ {
			element, _ := tree.At(v)
			name, _ := element.Mapped(types.NamingMojang)
			assert.NotEqual(t, "MAX_VALUE", name)
		}
	}

	methods := engine.WalkMembers(t.Context(), types.MemberKindMethod, []types.ClassLineage{class})
	var bounds [][2]int
	for _, tree := range methods {
		bounds = append(bounds, [2]int{tree.Offset, tree.End()})
	}
	if diff := cmp.Diff([][2]int{{2, 3}, {0, 3}, {0, 2}}, bounds); diff != "" {
		t.Fatalf("unexpected method trees (-want +got):\n%s", diff)
	}
}

func TestWalkMembersIncludesSuperclasses(t *testing.T) {
	build := func(version string) types.MappingFile {
		base := classOf("base", aliases("mojang", "net/minecraft/Base"))
		base.Fields = []types.MemberMapping{memberOf("a", "I", aliases("mojang", "health"))}
		derived := classOf("derived", aliases("mojang", "net/minecraft/Derived"))
		derived.Fields = []types.MemberMapping{
			memberOf("b", "J", aliases("mojang", "experience")),
			memberOf("c", "I", aliases("mojang", "MAX_LEVEL")),
		}
		return buildFile(t, version, []types.NamingSystem{types.NamingMojang}, base, derived)
	}
	files := []types.MappingFile{build("1.16.5"), build("1.17")}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())

	derived, err := engine.ClassLineage(t.Context(), []string{"net/minecraft/Derived"})
	require.NoError(t, err)
	base, err := engine.ClassLineage(t.Context(), []string{"net/minecraft/Base"})
	require.NoError(t, err)

	fields := engine.WalkMembers(t.Context(), types.MemberKindField, []types.ClassLineage{derived, base})
	var names []string
	for _, tree := range fields {
		element, _ := tree.At(tree.End() - 1)
		name, _ := element.Mapped(types.NamingMojang)
		names = append(names, name)
		assert.Equal(t, 2, tree.Size())
	}
	if diff := cmp.Diff([]string{"experience", "health"}, names); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

// requireSingleClaim fails when a (version, obfuscated name, descriptor)
// appears in more than one tree.
func requireSingleClaim(t *testing.T, trees []types.MemberTree) {
	t.Helper()
	seen := map[memberClaim]int{}
	for i, tree := range trees {
		for v := tree.Offset; v < tree.End(); v++ {
			element, ok := tree.At(v)
			require.True(t, ok)
			key := memberClaim{v, element.Original, element.Descriptor}
			if prev, dup := seen[key]; dup {
				t.Fatalf("member %s%s at version %d emitted by trees %d and %d", element.Original, element.Descriptor, v, prev, i)
			}
			seen[key] = i
		}
	}
}

func TestWalkMembersMixedSystems(t *testing.T) {
	oldEntity := func(fields ...types.MemberMapping) types.ClassMapping {
		class := classOf("ent", aliases("spigot", "Entity"))
		class.Fields = fields
		return class
	}
	newEntity := func(fields ...types.MemberMapping) types.ClassMapping {
		class := classOf("ent", aliases("mojang", "net/minecraft/Entity", "spigot", "Entity"))
		class.Fields = fields
		return class
	}

	tests := []struct {
		name       string
		files      func(t *testing.T) []types.MappingFile
		wantBounds [][2]int
		wantOrig   [][]string
	}{
		{
			name: "constant without mojang alias in older version stays out",
			files: func(t *testing.T) []types.MappingFile {
				return []types.MappingFile{
					buildFile(t, "1.13.2", spigotOnly, oldEntity(
						memberOf("a", "I", aliases("spigot", "id")),
						memberOf("b", "I", nil),
					)),
					buildFile(t, "1.17", mojangSpigot, newEntity(
						memberOf("a", "I", aliases("mojang", "id", "spigot", "id")),
						memberOf("b", "I", aliases("mojang", "MAX_VALUE")),
					)),
				}
			},
			wantBounds: [][2]int{{0, 2}},
			wantOrig:   [][]string{{"a", "a"}},
		},
		{
			name: "element reached by a later walk is not claimed twice",
			files: func(t *testing.T) []types.MappingFile {
				return []types.MappingFile{
					buildFile(t, "1.16.5", spigotOnly, oldEntity(memberOf("a", "I", nil))),
					buildFile(t, "1.17", spigotOnly, oldEntity(memberOf("a", "I", aliases("spigot", "foo")))),
				}
			},
			wantBounds: [][2]int{{1, 2}, {0, 1}},
			wantOrig:   [][]string{{"a"}, {"a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewAncestryEngine(tt.files(t), policies.DefaultKeyPolicy())
			class, err := engine.ClassLineage(t.Context(), []string{"Entity"})
			require.NoError(t, err)
			require.Equal(t, engine.Len(), class.Size())

			fields := engine.WalkMembers(t.Context(), types.MemberKindField, []types.ClassLineage{class})
			requireSingleClaim(t, fields)

			var bounds [][2]int
			var originals [][]string
			for _, tree := range fields {
				bounds = append(bounds, [2]int{tree.Offset, tree.End()})
				originals = append(originals, tree.Originals())
				for v := tree.Offset; v < tree.End(); v++ {
					element, _ := tree.At(v)
					assert.False(t, element.IsConstant(), "constant %s emitted at version %d", element.Original, v)
				}
			}
			if diff := cmp.Diff(tt.wantBounds, bounds); diff != "" {
				t.Fatalf("unexpected field trees (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOrig, originals); diff != "" {
				t.Fatalf("unexpected originals (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalkMembersSuperclassMixedSystems(t *testing.T) {
	build := func(version string, systems []types.NamingSystem, baseNames map[types.NamingSystem]string) types.MappingFile {
		base := classOf("base", aliases("spigot", "Base"))
		base.Fields = []types.MemberMapping{memberOf("a", "I", baseNames)}
		derived := classOf("derived", aliases("spigot", "Derived"))
		derived.Fields = []types.MemberMapping{memberOf("a", "I", aliases("spigot", "level"))}
		return buildFile(t, version, systems, base, derived)
	}
	files := []types.MappingFile{
		build("1.13.2", spigotOnly, nil),
		build("1.17", mojangSpigot, aliases("mojang", "health", "spigot", "health")),
	}
	engine := NewAncestryEngine(files, policies.DefaultKeyPolicy())
	derived, err := engine.ClassLineage(t.Context(), []string{"Derived"})
	require.NoError(t, err)
	base, err := engine.ClassLineage(t.Context(), []string{"Base"})
	require.NoError(t, err)

	fields := engine.WalkMembers(t.Context(), types.MemberKindField, []types.ClassLineage{derived, base})
	requireSingleClaim(t, fields)
	require.Len(t, fields, 1, "the derived field claims a@I in both versions first")
	assert.Equal(t, []string{"a", "a"}, fields[0].Originals())
	for v := 0; v < 2; v++ {
		element, ok := fields[0].At(v)
		require.True(t, ok)
		name, _ := element.Mapped(types.NamingSpigot)
		assert.Equal(t, "level", name, "version %d", v)
	}
}
