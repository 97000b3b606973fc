package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// ClassLineage resolves a class known under several candidate names.
// Each candidate is seeded at every version where it resolves and is not
// yet covered by one of its own trees. Overlapping trees must agree on
// every shared version and are then unioned; any disagreement is a
// conflict. The surviving trees are returned in ascending order.
func (e AncestryEngine) ClassLineage(ctx context.Context, candidates []string) (types.ClassLineage, error) {
	var trees []types.ClassTree
	for _, name := range candidates {
		covered := make([]bool, len(e.files))
		for v := range e.files {
			if covered[v] {
				continue
			}
			seed, ok := e.files[v].Lookup(name)
			if !ok {
				continue
			}
			tree := e.growClass(ctx, seed, v)
			for i := tree.Offset; i < tree.End(); i++ {
				covered[i] = true
			}
			trees = append(trees, tree)
		}
	}
	segments, err := unionClassTrees(trees)
	if err != nil {
		return types.ClassLineage{}, err
	}
	log.Ctx(ctx).Debug().Strs("candidates", candidates).Int("segments", len(segments)).Msg("resolved class lineage")
	return types.ClassLineage{Segments: segments}, nil
}

func unionClassTrees(trees []types.ClassTree) ([]types.ClassTree, error) {
	sort.SliceStable(trees, func(i, j int) bool {
		return trees[i].Offset < trees[j].Offset
	})
	var out []types.ClassTree
	for _, tree := range trees {
		if len(out) == 0 || tree.Offset >= out[len(out)-1].End() {
			out = append(out, tree)
			continue
		}
		last := &out[len(out)-1]
		for v := tree.Offset; v < min(tree.End(), last.End()); v++ {
			have, _ := last.At(v)
			got, _ := tree.At(v)
			if have != got {
				return nil, shared.ConflictingAncestry(fmt.Sprintf("%s and %s both claim version index %d", have.Best(), got.Best(), v))
			}
		}
		if tree.End() > last.End() {
			last.Elements = append(append([]*types.ClassMapping(nil), last.Elements...), tree.Elements[last.End()-tree.Offset:]...)
		}
	}
	return out, nil
}

// MemberLineage resolves a member across every segment of a class
// lineage, seeding from the candidates at each uncovered version.
func (e AncestryEngine) MemberLineage(ctx context.Context, kind types.MemberKind, class types.ClassLineage, candidates []types.MemberRef) (types.MemberLineage, error) {
	var trees []types.MemberTree
	for _, segment := range class.Segments {
		for v := segment.Offset; v < segment.End(); v++ {
			owner, _ := segment.At(v)
			seed, ok := e.seedMember(kind, owner, &e.files[v], candidates)
			if !ok {
				continue
			}
			tree := e.growMember(ctx, kind, segment, v, seed, nil)
			trees = append(trees, tree)
			v = tree.End() - 1
		}
	}
	segments, err := unionMemberTrees(trees)
	if err != nil {
		return types.MemberLineage{}, err
	}
	return types.MemberLineage{Segments: segments}, nil
}

func unionMemberTrees(trees []types.MemberTree) ([]types.MemberTree, error) {
	sort.SliceStable(trees, func(i, j int) bool {
		return trees[i].Offset < trees[j].Offset
	})
	var out []types.MemberTree
	for _, tree := range trees {
		if len(out) == 0 || tree.Offset >= out[len(out)-1].End() {
			out = append(out, tree)
			continue
		}
		last := &out[len(out)-1]
		for v := tree.Offset; v < min(tree.End(), last.End()); v++ {
			have, _ := last.At(v)
			got, _ := tree.At(v)
			if have != got {
				return nil, shared.ConflictingAncestry(fmt.Sprintf("members %s and %s both claim version index %d", have.Original, got.Original, v))
			}
		}
		if tree.End() > last.End() {
			cut := last.End() - tree.Offset
			last.Elements = append(append([]*types.MemberMapping(nil), last.Elements...), tree.Elements[cut:]...)
			last.Owners = append(append([]*types.ClassMapping(nil), last.Owners...), tree.Owners[cut:]...)
		}
	}
	return out, nil
}

type memberClaim struct {
	version    int
	original   string
	descriptor string
}

// WalkMembers enumerates every member of kind declared along a class
// chain ordered from most derived to least derived. Versions are scanned
// from the newest covered version backwards. Each (version, obfuscated
// name, descriptor) is emitted at most once: the first tree to reach it
// claims it and later trees stop growing there. A field tree that holds a
// constant in any version is dropped whole, but still claims its elements.
func (e AncestryEngine) WalkMembers(ctx context.Context, kind types.MemberKind, chain []types.ClassLineage) []types.MemberTree {
	claimed := map[memberClaim]struct{}{}
	isClaimed := func(version int, member *types.MemberMapping) bool {
		_, ok := claimed[memberClaim{version, member.Original, member.Descriptor}]
		return ok
	}
	var out []types.MemberTree
	skipped := 0
	for _, lineage := range chain {
		for s := len(lineage.Segments) - 1; s >= 0; s-- {
			segment := lineage.Segments[s]
			for v := segment.End() - 1; v >= segment.Offset; v-- {
				owner, _ := segment.At(v)
				members := owner.Members(kind)
				for i := range members {
					member := &members[i]
					if isClaimed(v, member) {
						continue
					}
					tree := e.growMember(ctx, kind, segment, v, member, isClaimed)
					constant := false
					for w := tree.Offset; w < tree.End(); w++ {
						element, _ := tree.At(w)
						claimed[memberClaim{w, element.Original, element.Descriptor}] = struct{}{}
						constant = constant || (kind == types.MemberKindField && element.IsConstant())
					}
					if constant {
						skipped++
						continue
					}
					out = append(out, tree)
				}
			}
		}
	}
	log.Ctx(ctx).Debug().Str("kind", string(kind)).Int("trees", len(out)).Int("constants", skipped).Msg("walked members")
	return out
}
