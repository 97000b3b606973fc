package ports

import (
	"context"

	"tinyprotocol/internal/types"
)

// MappingSourcePort fetches one raw naming system table for one version.
// found is false when the system does not exist for that version; an
// error means the table exists but could not be fetched or parsed.
type MappingSourcePort interface {
	Fetch(ctx context.Context, version string, system types.NamingSystem) (table types.SymbolTable, found bool, err error)
}

type ProtocolIndexPort interface {
	Load(ctx context.Context) (types.ProtocolIndex, error)
}

// MappingCachePort persists the full mapping file sequence keyed by the
// ordered version list. ok is false on any miss.
type MappingCachePort interface {
	Load(ctx context.Context, versions []string) (files []types.MappingFile, ok bool, err error)
	Store(ctx context.Context, versions []string, files []types.MappingFile) error
}
