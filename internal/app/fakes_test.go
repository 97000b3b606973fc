package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/adapters"
	"tinyprotocol/internal/types"
)

func fixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	return filepath.Join(append([]string{root, "fixtures"}, parts...)...)
}

type fetchKey struct {
	version string
	system  types.NamingSystem
}

// countingSource wraps a mapping source, counts fetches and can fail or
// hide selected systems.
type countingSource struct {
	inner  adapters.MappingDirAdapter
	fail   map[fetchKey]error
	absent map[fetchKey]bool

	mu      sync.Mutex
	fetches int
}

func newCountingSource(t *testing.T) *countingSource {
	return &countingSource{
		inner:  adapters.NewMappingDirAdapter(fixturePath(t, "mappings")),
		fail:   map[fetchKey]error{},
		absent: map[fetchKey]bool{},
	}
}

func (s *countingSource) Fetch(ctx context.Context, version string, system types.NamingSystem) (types.SymbolTable, bool, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()
	key := fetchKey{version, system}
	if err, ok := s.fail[key]; ok {
		return types.SymbolTable{}, false, err
	}
	if s.absent[key] {
		return types.SymbolTable{}, false, nil
	}
	return s.inner.Fetch(ctx, version, system)
}

func (s *countingSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

type staticIndex struct {
	index types.ProtocolIndex
	loads int
}

func (i *staticIndex) Load(context.Context) (types.ProtocolIndex, error) {
	i.loads++
	return i.index, nil
}

// memoryCache keeps one stored sequence in memory.
type memoryCache struct {
	versions []string
	files    []types.MappingFile
	loadErr  error
	stores   int
}

func (c *memoryCache) Load(_ context.Context, versions []string) ([]types.MappingFile, bool, error) {
	if c.loadErr != nil {
		return nil, false, c.loadErr
	}
	if c.files == nil || len(versions) != len(c.versions) {
		return nil, false, nil
	}
	for idx := range versions {
		if versions[idx] != c.versions[idx] {
			return nil, false, nil
		}
	}
	return c.files, true, nil
}

func (c *memoryCache) Store(_ context.Context, versions []string, files []types.MappingFile) error {
	c.stores++
	c.versions = append([]string(nil), versions...)
	c.files = files
	return nil
}

// mutatingLoader loads a fixture spec and applies a change before
// handing it to the service.
type mutatingLoader struct {
	mutate func(spec *types.ProjectSpec)
}

func (l mutatingLoader) LoadProject(path string) (types.ProjectSpec, error) {
	spec, err := adapters.NewSpecFileAdapter().LoadProject(path)
	if err != nil {
		return types.ProjectSpec{}, err
	}
	if l.mutate != nil {
		l.mutate(&spec)
	}
	return spec, nil
}

func testService(t *testing.T, source *countingSource, mutate func(spec *types.ProjectSpec)) Service {
	t.Helper()
	service := NewService()
	service.SpecLoader = mutatingLoader{mutate: mutate}
	service.Sources = source
	return service
}

var errFetch = errors.New("connection reset")
