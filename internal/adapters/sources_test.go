package adapters

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const fixtureMappings = "../../fixtures/mappings"

func TestMappingDirAdapterFetch(t *testing.T) {
	adapter := NewMappingDirAdapter(fixtureMappings)

	tests := []struct {
		version string
		system  types.NamingSystem
		found   bool
		classes int
	}{
		{version: "1.17", system: types.NamingMojang, found: true, classes: 3},
		{version: "1.17", system: types.NamingIntermediary, found: true, classes: 3},
		{version: "1.17", system: types.NamingSpigot, found: true, classes: 3},
		{version: "1.17", system: types.NamingSearge, found: false},
		{version: "1.16.5", system: types.NamingSearge, found: true, classes: 3},
		{version: "1.16.5", system: types.NamingIntermediary, found: false},
		{version: "1.12.2", system: types.NamingMojang, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.version+"/"+string(tt.system), func(t *testing.T) {
			table, found, err := adapter.Fetch(t.Context(), tt.version, tt.system)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Len(t, table.Classes, tt.classes)
			if found {
				assert.Equal(t, tt.system, table.System)
			}
		})
	}
}

func TestMappingDirAdapterErrors(t *testing.T) {
	_, _, err := NewMappingDirAdapter("").Fetch(t.Context(), "1.17", types.NamingMojang)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "1.17"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "1.17", "mojang.txt"), []byte("garbage line\n"), 0644))
	_, _, err = NewMappingDirAdapter(root).Fetch(t.Context(), "1.17", types.NamingMojang)
	require.Error(t, err)
	assert.Equal(t, shared.KindMappingUnavailable, shared.KindOf(err))
	assert.Equal(t, "mapping unavailable: version=1.17 system=mojang", shared.ErrorMessage(err))
}

func TestMappingCacheRoundTrip(t *testing.T) {
	versions := []string{"1.16.5", "1.17"}
	source := NewMappingDirAdapter(fixtureMappings)
	var files []types.MappingFile
	for _, version := range versions {
		table, found, err := source.Fetch(t.Context(), version, types.NamingSpigot)
		require.NoError(t, err)
		require.True(t, found)
		classes := make([]types.ClassMapping, 0, len(table.Classes))
		for _, class := range table.Classes {
			classes = append(classes, types.ClassMapping{
				Original: class.From,
				Names:    map[types.NamingSystem]string{types.NamingSpigot: class.To},
			})
		}
		file, err := types.NewMappingFile(version, []types.NamingSystem{types.NamingSpigot}, classes)
		require.NoError(t, err)
		files = append(files, file)
	}

	cache := NewMappingCacheAdapter(t.TempDir())
	_, ok, err := cache.Load(t.Context(), versions)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(t.Context(), versions, files))
	loaded, ok, err := cache.Load(t.Context(), versions)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, 2)
	class, found := loaded[1].Lookup("net/minecraft/server/EntityHuman")
	require.True(t, found)
	assert.Equal(t, "bke", class.Original)

	_, ok, err = cache.Load(t.Context(), []string{"1.17", "1.16.5"})
	require.NoError(t, err)
	assert.False(t, ok, "a reordered version list is a different key")

	require.Error(t, cache.Store(t.Context(), versions, files[:1]))
}

func TestMappingCacheCorruptedIsMiss(t *testing.T) {
	cache := NewMappingCacheAdapter(t.TempDir())
	versions := []string{"1.17"}
	require.NoError(t, os.WriteFile(cache.Path(versions), []byte("not zstd"), 0644))
	_, ok, err := cache.Load(t.Context(), versions)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMappingCacheKey(t *testing.T) {
	assert.Equal(t, MappingCacheKey([]string{"1.16.5", "1.17"}), MappingCacheKey([]string{"1.16.5", "1.17"}))
	assert.NotEqual(t, MappingCacheKey([]string{"1.16.5", "1.17"}), MappingCacheKey([]string{"1.17", "1.16.5"}))
	assert.Len(t, MappingCacheKey(nil), 16)
}

func TestProtocolIndexAdapterFile(t *testing.T) {
	index, err := NewProtocolIndexAdapter("../../fixtures/protocol-index.json", 0, 0).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 756, index["1.17.1"])
	assert.Equal(t, 754, index["1.16.4"])

	_, err = NewProtocolIndexAdapter(filepath.Join(t.TempDir(), "missing.json"), 0, 0).Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestProtocolIndexAdapterHTTPLoadsOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"minecraftVersion":"1.17","version":755},{"minecraftVersion":"1.17","version":1}]`))
	}))
	defer server.Close()

	adapter := NewProtocolIndexAdapter(server.URL+"/protocolVersions.json", 5, 1)
	for i := 0; i < 2; i++ {
		index, err := adapter.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 755, index["1.17"], "the first record of a version wins")
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestProtocolIndexAdapterHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.json" {
			_, _ = w.Write([]byte(`{"not":"a list"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewProtocolIndexAdapter(server.URL+"/missing.json", 5, 1).Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = NewProtocolIndexAdapter(server.URL+"/bad.json", 5, 1).Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func sha1Of(data string) string {
	sum := sha1.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

type mappingServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newMappingServer(t *testing.T, mojang string, mojangSHA string) *mappingServer {
	t.Helper()
	fixture := func(name string) string {
		data, err := os.ReadFile(filepath.Join(fixtureMappings, "1.17", name))
		require.NoError(t, err)
		return string(data)
	}
	classes, members, tiny := fixture("spigot-cl.csrg"), fixture("spigot-mem.csrg"), fixture("intermediary.tiny")

	srv := &mappingServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"versions":[{"id":"1.17","url":"` + srv.URL + `/v/1.17.json","sha1":""}]}`))
	})
	mux.HandleFunc("/v/1.17.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":{"server_mappings":{"url":"` + srv.URL + `/mojang/1.17.txt","sha1":"` + mojangSHA + `"}}}`))
	})
	mux.HandleFunc("/mojang/1.17.txt", func(w http.ResponseWriter, r *http.Request) {
		srv.hits.Add(1)
		_, _ = w.Write([]byte(mojang))
	})
	mux.HandleFunc("/intermediary/1.17.tiny", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tiny))
	})
	mux.HandleFunc("/versions/1.17.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refs":{"BuildData":"abc123"}}`))
	})
	mux.HandleFunc("/stash/projects/SPIGOT/repos/builddata/raw/info.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("at"))
		_, _ = w.Write([]byte(`{"classMappings":"bukkit-1.17-cl.csrg","memberMappings":"bukkit-1.17-members.csrg"}`))
	})
	mux.HandleFunc("/stash/projects/SPIGOT/repos/builddata/raw/mappings/bukkit-1.17-cl.csrg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(classes))
	})
	mux.HandleFunc("/stash/projects/SPIGOT/repos/builddata/raw/mappings/bukkit-1.17-members.csrg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(members))
	})
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTTPAdapter(srv *mappingServer, workDir string) MappingHTTPAdapter {
	return NewMappingHTTPAdapter(MappingHTTPConfig{
		VersionManifest:  srv.URL + "/manifest.json",
		IntermediaryURL:  srv.URL + "/intermediary/{version}.tiny",
		SeargeURL:        srv.URL + "/searge/{version}/mcp_config.zip",
		SeargeLegacyURL:  srv.URL + "/searge/{version}/mcp.zip",
		SpigotURL:        srv.URL + "/",
		WorkDir:          workDir,
		VerifyChecksums:  true,
		HTTPTimeoutSec:   5,
		HTTPRetries:      1,
		HTTPRetryDelayMs: 1,
	})
}

func TestMappingHTTPAdapterFetch(t *testing.T) {
	mojang, err := os.ReadFile(filepath.Join(fixtureMappings, "1.17", "mojang.txt"))
	require.NoError(t, err)
	srv := newMappingServer(t, string(mojang), sha1Of(string(mojang)))
	workDir := t.TempDir()
	adapter := newTestHTTPAdapter(srv, workDir)

	for _, system := range []types.NamingSystem{types.NamingMojang, types.NamingIntermediary, types.NamingSpigot} {
		table, found, err := adapter.Fetch(t.Context(), "1.17", system)
		require.NoError(t, err, system)
		require.True(t, found, system)
		assert.Len(t, table.Classes, 3, system)
	}

	_, found, err := adapter.Fetch(t.Context(), "1.17", types.NamingSearge)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = adapter.Fetch(t.Context(), "1.18", types.NamingMojang)
	require.NoError(t, err)
	assert.False(t, found, "versions missing from the manifest are absent")

	assert.FileExists(t, filepath.Join(workDir, "1.17", "mojang.txt"))
	_, _, err = newTestHTTPAdapter(srv, workDir).Fetch(t.Context(), "1.17", types.NamingMojang)
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "a verified download is reused")
}

func TestMappingHTTPAdapterChecksumMismatch(t *testing.T) {
	srv := newMappingServer(t, "net.minecraft.Entity -> a:\n", strings.Repeat("0", 40))
	_, _, err := newTestHTTPAdapter(srv, "").Fetch(t.Context(), "1.17", types.NamingMojang)
	require.Error(t, err)
	assert.Equal(t, shared.KindMappingUnavailable, shared.KindOf(err))
}
