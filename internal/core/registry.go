package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// VersionRegistry owns the declared version order and the protocol
// ordinal of every version. The ordinal list it produces is the
// coordinate system of every ancestor tree.
type VersionRegistry struct {
	entries []types.VersionEntry
	index   map[string]int
	sealed  bool
}

func NewVersionRegistry() *VersionRegistry {
	return &VersionRegistry{index: map[string]int{}}
}

// Register records an explicit ordinal. Registering a known identifier
// again keeps its position and replaces the ordinal.
func (r *VersionRegistry) Register(versionID string, protocol int) error {
	if protocol < 0 {
		return shared.InvalidConfiguration(fmt.Sprintf("protocol ordinal for %s must be >= 0, got %d", versionID, protocol))
	}
	return r.put(versionID, protocol)
}

// RegisterUnresolved records a version whose ordinal must come from the
// protocol index.
func (r *VersionRegistry) RegisterUnresolved(versionID string) error {
	return r.put(versionID, types.UnresolvedProtocol)
}

func (r *VersionRegistry) put(versionID string, protocol int) error {
	id := strings.TrimSpace(versionID)
	if id == "" {
		return shared.InvalidConfiguration("version id must not be empty")
	}
	if r.sealed {
		return shared.InvalidConfiguration(fmt.Sprintf("version registry is sealed, cannot register %s", id))
	}
	if pos, ok := r.index[id]; ok {
		r.entries[pos].Protocol = protocol
		return nil
	}
	r.index[id] = len(r.entries)
	r.entries = append(r.entries, types.VersionEntry{ID: id, Protocol: protocol})
	return nil
}

// Seal freezes the registry for the remainder of the run.
func (r *VersionRegistry) Seal() {
	r.sealed = true
}

func (r *VersionRegistry) Len() int {
	return len(r.entries)
}

func (r *VersionRegistry) Versions() []types.VersionEntry {
	return append([]types.VersionEntry(nil), r.entries...)
}

func (r *VersionRegistry) IDs() []string {
	out := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.ID)
	}
	return out
}

func (r *VersionRegistry) IndexOf(versionID string) (int, bool) {
	pos, ok := r.index[strings.TrimSpace(versionID)]
	return pos, ok
}

func (r *VersionRegistry) Unresolved() []string {
	var out []string
	for _, entry := range r.entries {
		if entry.Protocol < 0 {
			out = append(out, entry.ID)
		}
	}
	return out
}

// ResolveAll fills every unresolved ordinal from the protocol index. The
// index is only consulted when something is unresolved, and a single
// missing identifier fails the call without touching the registry.
func (r *VersionRegistry) ResolveAll(ctx context.Context, index ports.ProtocolIndexPort) error {
	unresolved := r.Unresolved()
	if len(unresolved) == 0 {
		return nil
	}
	if r.sealed {
		return shared.InvalidConfiguration("version registry is sealed")
	}
	if index == nil {
		return shared.UnresolvableVersion(unresolved[0])
	}
	data, err := index.Load(ctx)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load protocol index").
			WithCause(err)
	}
	resolved := make(map[string]int, len(unresolved))
	for _, id := range unresolved {
		protocol, ok := data[id]
		if !ok || protocol < 0 {
			return shared.UnresolvableVersion(id)
		}
		resolved[id] = protocol
	}
	for id, protocol := range resolved {
		r.entries[r.index[id]].Protocol = protocol
		log.Ctx(ctx).Debug().Str("version", id).Int("protocol", protocol).Msg("resolved protocol ordinal")
	}
	return nil
}

// Ordinals returns the protocol ordinals in declared version order.
func (r *VersionRegistry) Ordinals() ([]int, error) {
	if len(r.entries) == 0 {
		return nil, shared.InvalidConfiguration("version list must not be empty")
	}
	out := make([]int, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.Protocol < 0 {
			return nil, shared.UnresolvableVersion(entry.ID)
		}
		out = append(out, entry.Protocol)
	}
	return out, nil
}

// CheckOrdering reports adjacent versions whose release identifiers or
// ordinals decrease. Decreases are legal but usually a typo.
func (r *VersionRegistry) CheckOrdering(ctx context.Context) []string {
	order := newReleaseOrder()
	var warnings []string
	for i := 1; i < len(r.entries); i++ {
		prev, cur := r.entries[i-1], r.entries[i]
		if cmp, ok := order.compare(prev.ID, cur.ID); ok && cmp > 0 {
			warnings = append(warnings, fmt.Sprintf("version %s is declared after newer release %s", cur.ID, prev.ID))
		}
		if prev.Protocol >= 0 && cur.Protocol >= 0 && cur.Protocol < prev.Protocol {
			warnings = append(warnings, fmt.Sprintf("protocol %d of %s decreases from %d of %s", cur.Protocol, cur.ID, prev.Protocol, prev.ID))
		}
	}
	for _, warning := range warnings {
		log.Ctx(ctx).Warn().Msg(warning)
	}
	return warnings
}
