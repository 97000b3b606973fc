package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// AncestryEngine resolves class and member identities across an ordered,
// fully loaded mapping file sequence. It performs no I/O and never
// mutates its inputs, so independent queries may run concurrently.
type AncestryEngine struct {
	files []types.MappingFile
	keys  []types.ComparisonKey
}

func NewAncestryEngine(files []types.MappingFile, policy ports.KeyPolicyPort) AncestryEngine {
	return AncestryEngine{
		files: files,
		keys:  policy.ComparisonKeys(),
	}
}

func (e AncestryEngine) Len() int {
	return len(e.files)
}

func (e AncestryEngine) File(version int) *types.MappingFile {
	return &e.files[version]
}

func (e AncestryEngine) checkPivot(pivot int) error {
	if pivot < 0 || pivot >= len(e.files) {
		return shared.InvalidConfiguration(fmt.Sprintf("pivot index %d outside version range [0, %d)", pivot, len(e.files)))
	}
	return nil
}

// ClassAncestors seeds a tree at pivot with the class named name and
// extends it backward then forward until the first version without a
// match. An unknown name yields an empty tree, not an error.
func (e AncestryEngine) ClassAncestors(ctx context.Context, name string, pivot int) (types.ClassTree, error) {
	if err := e.checkPivot(pivot); err != nil {
		return types.ClassTree{}, err
	}
	seed, ok := e.files[pivot].Lookup(name)
	if !ok {
		log.Ctx(ctx).Debug().Str("class", name).Str("version", e.files[pivot].Version).Msg("class not found at pivot")
		return types.ClassTree{}, nil
	}
	return e.growClass(ctx, seed, pivot), nil
}

func (e AncestryEngine) growClass(ctx context.Context, seed *types.ClassMapping, pivot int) types.ClassTree {
	assert.NotEmpty(ctx, seed.Original, "seed class must have an obfuscated name")
	var backward []*types.ClassMapping
	current := seed
	for v := pivot - 1; v >= 0; v-- {
		next, ok := e.matchClass(current, v)
		if !ok {
			break
		}
		backward = append(backward, next)
		current = next
	}
	elements := make([]*types.ClassMapping, 0, len(backward)+1)
	for i := len(backward) - 1; i >= 0; i-- {
		elements = append(elements, backward[i])
	}
	elements = append(elements, seed)
	current = seed
	for v := pivot + 1; v < len(e.files); v++ {
		next, ok := e.matchClass(current, v)
		if !ok {
			break
		}
		elements = append(elements, next)
		current = next
	}
	tree := types.ClassTree{Offset: pivot - len(backward), Elements: elements}
	log.Ctx(ctx).Debug().
		Str("class", seed.Best()).
		Int("offset", tree.Offset).
		Int("size", tree.Size()).
		Msg("resolved class ancestors")
	return tree
}

// matchClass finds the counterpart of current in version target using
// the first comparison key available for this adjacent pair.
func (e AncestryEngine) matchClass(current *types.ClassMapping, target int) (*types.ClassMapping, bool) {
	file := &e.files[target]
	for _, key := range e.keys {
		value, ok := e.classKeyValue(current, key, file)
		if !ok {
			continue
		}
		return file.ClassByKey(key, value)
	}
	return nil, false
}

func (e AncestryEngine) classKeyValue(class *types.ClassMapping, key types.ComparisonKey, target *types.MappingFile) (string, bool) {
	system, ok := key.System()
	if !ok {
		return class.Original, true
	}
	if !target.HasSystem(system) {
		return "", false
	}
	return class.Mapped(system)
}

// FieldAncestors resolves a field inside a resolved class tree.
func (e AncestryEngine) FieldAncestors(ctx context.Context, class types.ClassTree, pivot int, candidates []types.MemberRef) (types.MemberTree, error) {
	return e.MemberAncestors(ctx, types.MemberKindField, class, pivot, candidates)
}

// MethodAncestors resolves a method inside a resolved class tree.
func (e AncestryEngine) MethodAncestors(ctx context.Context, class types.ClassTree, pivot int, candidates []types.MemberRef) (types.MemberTree, error) {
	return e.MemberAncestors(ctx, types.MemberKindMethod, class, pivot, candidates)
}

// MemberAncestors seeds a member at pivot from the first candidate that
// matches inside the class element there and walks it within the class
// range. Candidates may name the member in any naming system; their
// descriptors are written in that same system.
func (e AncestryEngine) MemberAncestors(ctx context.Context, kind types.MemberKind, class types.ClassTree, pivot int, candidates []types.MemberRef) (types.MemberTree, error) {
	if class.Empty() {
		return types.MemberTree{Kind: kind}, nil
	}
	owner, ok := class.At(pivot)
	if !ok {
		return types.MemberTree{}, shared.InvalidConfiguration(fmt.Sprintf("pivot index %d outside class range [%d, %d)", pivot, class.Offset, class.End()))
	}
	seed, ok := e.seedMember(kind, owner, &e.files[pivot], candidates)
	if !ok {
		log.Ctx(ctx).Debug().Str("class", owner.Best()).Str("kind", string(kind)).Msg("member not found at pivot")
		return types.MemberTree{Kind: kind}, nil
	}
	return e.growMember(ctx, kind, class, pivot, seed, nil), nil
}

func (e AncestryEngine) seedMember(kind types.MemberKind, owner *types.ClassMapping, file *types.MappingFile, candidates []types.MemberRef) (*types.MemberMapping, bool) {
	for _, candidate := range candidates {
		for _, system := range file.Systems {
			for _, member := range owner.MembersByAlias(kind, system, candidate.Name) {
				if candidate.Descriptor == "" || file.RemapDescriptor(member.Descriptor, system) == candidate.Descriptor {
					return member, true
				}
			}
		}
		for _, member := range owner.MembersByOriginal(kind, candidate.Name) {
			if candidate.Descriptor == "" || member.Descriptor == candidate.Descriptor {
				return member, true
			}
		}
	}
	return nil, false
}

// growMember walks seed within the class range. A non-nil stop ends the
// walk in either direction at the first element it rejects.
func (e AncestryEngine) growMember(ctx context.Context, kind types.MemberKind, class types.ClassTree, pivot int, seed *types.MemberMapping, stop func(version int, member *types.MemberMapping) bool) types.MemberTree {
	var backward []*types.MemberMapping
	var backwardOwners []*types.ClassMapping
	current, from := seed, pivot
	for v := pivot - 1; v >= class.Offset; v-- {
		owner, _ := class.At(v)
		next, ok := e.matchMember(kind, current, from, owner, v)
		if !ok || (stop != nil && stop(v, next)) {
			break
		}
		backward = append(backward, next)
		backwardOwners = append(backwardOwners, owner)
		current, from = next, v
	}
	tree := types.MemberTree{
		Kind:     kind,
		Offset:   pivot - len(backward),
		Elements: make([]*types.MemberMapping, 0, len(backward)+1),
		Owners:   make([]*types.ClassMapping, 0, len(backward)+1),
	}
	for i := len(backward) - 1; i >= 0; i-- {
		tree.Elements = append(tree.Elements, backward[i])
		tree.Owners = append(tree.Owners, backwardOwners[i])
	}
	pivotOwner, _ := class.At(pivot)
	tree.Elements = append(tree.Elements, seed)
	tree.Owners = append(tree.Owners, pivotOwner)
	current, from = seed, pivot
	for v := pivot + 1; v < class.End(); v++ {
		owner, _ := class.At(v)
		next, ok := e.matchMember(kind, current, from, owner, v)
		if !ok || (stop != nil && stop(v, next)) {
			break
		}
		tree.Elements = append(tree.Elements, next)
		tree.Owners = append(tree.Owners, owner)
		current, from = next, v
	}
	log.Ctx(ctx).Debug().
		Str("member", seed.Original+seed.Descriptor).
		Str("kind", string(kind)).
		Int("offset", tree.Offset).
		Int("size", tree.Size()).
		Msg("resolved member ancestors")
	return tree
}

// matchMember finds the counterpart of current, declared in version from,
// among the members of owner in version target. Descriptors are compared
// after remapping into the naming system of the deciding key, so members
// sharing a name but not a signature never unify. Ambiguous matches stop
// the walk.
func (e AncestryEngine) matchMember(kind types.MemberKind, current *types.MemberMapping, from int, owner *types.ClassMapping, target int) (*types.MemberMapping, bool) {
	source, file := &e.files[from], &e.files[target]
	for _, key := range e.keys {
		system, isAlias := key.System()
		var candidates []*types.MemberMapping
		var want string
		if isAlias {
			if !file.HasSystem(system) {
				continue
			}
			alias, ok := current.Mapped(system)
			if !ok {
				continue
			}
			candidates = owner.MembersByAlias(kind, system, alias)
			want = source.RemapDescriptor(current.Descriptor, system)
		} else {
			candidates = owner.MembersByOriginal(kind, current.Original)
			want = current.Descriptor
		}
		var match *types.MemberMapping
		for _, candidate := range candidates {
			got := candidate.Descriptor
			if isAlias {
				got = file.RemapDescriptor(got, system)
			}
			if want != "" && got != "" && want != got {
				continue
			}
			if match != nil {
				return nil, false
			}
			match = candidate
		}
		return match, match != nil
	}
	return nil, false
}
