package adapters

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const (
	DefaultVersionManifest = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	DefaultIntermediaryURL = "https://raw.githubusercontent.com/FabricMC/intermediary/master/mappings/{version}.tiny"
	DefaultSeargeURL       = "https://maven.minecraftforge.net/de/oceanlabs/mcp/mcp_config/{version}/mcp_config-{version}.zip"
	DefaultSeargeLegacyURL = "https://maven.minecraftforge.net/de/oceanlabs/mcp/mcp/{version}/mcp-{version}-srg.zip"
	DefaultSpigotURL       = "https://hub.spigotmc.org"
)

const mojangMappingsDownload = "server_mappings"

type MappingHTTPConfig struct {
	VersionManifest  string
	IntermediaryURL  string
	SeargeURL        string
	SeargeLegacyURL  string
	SpigotURL        string
	WorkDir          string
	VerifyChecksums  bool
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

// MappingHTTPAdapter downloads the four naming systems from their public
// distribution points. Downloads are kept under WorkDir and reused when
// their checksum still matches.
type MappingHTTPAdapter struct {
	cfg      MappingHTTPConfig
	http     httpRetryConfig
	manifest *manifestLoader
}

type versionManifest struct {
	Versions []manifestEntry `json:"versions"`
}

type manifestEntry struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
}

type versionMeta struct {
	Downloads map[string]downloadEntry `json:"downloads"`
}

type downloadEntry struct {
	SHA1 string `json:"sha1"`
	URL  string `json:"url"`
}

type spigotVersion struct {
	Refs struct {
		BuildData string `json:"BuildData"`
	} `json:"refs"`
}

type buildDataInfo struct {
	ClassMappings  string `json:"classMappings"`
	MemberMappings string `json:"memberMappings"`
}

type manifestLoader struct {
	once    sync.Once
	entries map[string]manifestEntry
	err     error
}

func NewMappingHTTPAdapter(cfg MappingHTTPConfig) MappingHTTPAdapter {
	if cfg.VersionManifest == "" {
		cfg.VersionManifest = DefaultVersionManifest
	}
	if cfg.IntermediaryURL == "" {
		cfg.IntermediaryURL = DefaultIntermediaryURL
	}
	if cfg.SeargeURL == "" {
		cfg.SeargeURL = DefaultSeargeURL
	}
	if cfg.SeargeLegacyURL == "" {
		cfg.SeargeLegacyURL = DefaultSeargeLegacyURL
	}
	if cfg.SpigotURL == "" {
		cfg.SpigotURL = DefaultSpigotURL
	}
	cfg.SpigotURL = strings.TrimRight(cfg.SpigotURL, "/")
	return MappingHTTPAdapter{
		cfg:      cfg,
		http:     normalizeHTTPConfig(cfg.HTTPTimeoutSec, cfg.HTTPRetries, cfg.HTTPRetryDelayMs),
		manifest: &manifestLoader{},
	}
}

func (a MappingHTTPAdapter) Fetch(ctx context.Context, version string, system types.NamingSystem) (types.SymbolTable, bool, error) {
	var table types.SymbolTable
	var found bool
	var err error
	switch system {
	case types.NamingMojang:
		table, found, err = a.fetchMojang(ctx, version)
	case types.NamingIntermediary:
		table, found, err = a.fetchIntermediary(ctx, version)
	case types.NamingSearge:
		table, found, err = a.fetchSearge(ctx, version)
	case types.NamingSpigot:
		table, found, err = a.fetchSpigot(ctx, version)
	default:
		return types.SymbolTable{}, false, shared.InvalidConfiguration("unknown naming system: " + string(system))
	}
	if err != nil {
		return types.SymbolTable{}, false, shared.MappingUnavailable(version, string(system), err)
	}
	log.Ctx(ctx).Debug().Str("version", version).Str("system", string(system)).Bool("found", found).Msg("fetched mapping")
	return table, found, nil
}

func (a MappingHTTPAdapter) fetchMojang(ctx context.Context, version string) (types.SymbolTable, bool, error) {
	entries, err := a.manifestEntries(ctx)
	if err != nil {
		return types.SymbolTable{}, false, err
	}
	entry, ok := entries[version]
	if !ok {
		return types.SymbolTable{}, false, nil
	}
	data, found, err := a.download(ctx, filepath.Join(version, "version.json"), entry.URL, entry.SHA1)
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	var meta versionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return types.SymbolTable{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode version metadata").
			WithCause(err)
	}
	mappings, ok := meta.Downloads[mojangMappingsDownload]
	if !ok {
		return types.SymbolTable{}, false, nil
	}
	data, found, err = a.download(ctx, filepath.Join(version, "mojang.txt"), mappings.URL, mappings.SHA1)
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	table, err := ParseProGuard(bytes.NewReader(data))
	return table, err == nil, err
}

func (a MappingHTTPAdapter) manifestEntries(ctx context.Context) (map[string]manifestEntry, error) {
	a.manifest.once.Do(func() {
		data, found, err := fetchBytes(ctx, a.cfg.VersionManifest, a.http)
		if err == nil && !found {
			err = shared.HTTPStatusError(404, a.cfg.VersionManifest)
		}
		if err != nil {
			a.manifest.err = err
			return
		}
		var manifest versionManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			a.manifest.err = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to decode version manifest").
				WithCause(err)
			return
		}
		a.manifest.entries = make(map[string]manifestEntry, len(manifest.Versions))
		for _, entry := range manifest.Versions {
			a.manifest.entries[entry.ID] = entry
		}
	})
	return a.manifest.entries, a.manifest.err
}

func (a MappingHTTPAdapter) fetchIntermediary(ctx context.Context, version string) (types.SymbolTable, bool, error) {
	data, found, err := a.download(ctx, filepath.Join(version, "intermediary.tiny"), expandURL(a.cfg.IntermediaryURL, version), "")
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	table, err := ParseTiny(bytes.NewReader(data))
	return table, err == nil, err
}

func (a MappingHTTPAdapter) fetchSearge(ctx context.Context, version string) (types.SymbolTable, bool, error) {
	data, found, err := a.download(ctx, filepath.Join(version, "mcp_config.zip"), expandURL(a.cfg.SeargeURL, version), "")
	if err != nil {
		return types.SymbolTable{}, false, err
	}
	if !found {
		data, found, err = a.download(ctx, filepath.Join(version, "mcp.zip"), expandURL(a.cfg.SeargeLegacyURL, version), "")
		if err != nil || !found {
			return types.SymbolTable{}, false, err
		}
	}
	table, err := ParseSeargeArchive(data)
	return table, err == nil, err
}

func (a MappingHTTPAdapter) fetchSpigot(ctx context.Context, version string) (types.SymbolTable, bool, error) {
	data, found, err := fetchBytes(ctx, fmt.Sprintf("%s/versions/%s.json", a.cfg.SpigotURL, version), a.http)
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	var spigot spigotVersion
	if err := json.Unmarshal(data, &spigot); err != nil {
		return types.SymbolTable{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode spigot version").
			WithCause(err)
	}
	commit := spigot.Refs.BuildData
	if commit == "" {
		return types.SymbolTable{}, false, nil
	}
	data, found, err = fetchBytes(ctx, a.buildDataURL("info.json", commit), a.http)
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	var info buildDataInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return types.SymbolTable{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode spigot build data").
			WithCause(err)
	}
	if info.ClassMappings == "" {
		return types.SymbolTable{}, false, nil
	}
	classes, found, err := a.download(ctx, filepath.Join(version, "spigot-cl.csrg"), a.buildDataURL("mappings/"+info.ClassMappings, commit), "")
	if err != nil || !found {
		return types.SymbolTable{}, false, err
	}
	var members []byte
	if info.MemberMappings != "" {
		members, _, err = a.download(ctx, filepath.Join(version, "spigot-mem.csrg"), a.buildDataURL("mappings/"+info.MemberMappings, commit), "")
		if err != nil {
			return types.SymbolTable{}, false, err
		}
	}
	var table types.SymbolTable
	if members != nil {
		table, err = ParseCSRG(bytes.NewReader(classes), bytes.NewReader(members))
	} else {
		table, err = ParseCSRG(bytes.NewReader(classes), nil)
	}
	return table, err == nil, err
}

func (a MappingHTTPAdapter) buildDataURL(file string, commit string) string {
	return fmt.Sprintf("%s/stash/projects/SPIGOT/repos/builddata/raw/%s?at=%s", a.cfg.SpigotURL, file, commit)
}

// download returns the work directory copy of name when present and
// valid, otherwise fetches url and stores it. A known checksum is
// verified when checksum verification is enabled.
func (a MappingHTTPAdapter) download(ctx context.Context, name string, url string, checksum string) ([]byte, bool, error) {
	verify := a.cfg.VerifyChecksums && checksum != ""
	var local string
	if a.cfg.WorkDir != "" {
		local = filepath.Join(a.cfg.WorkDir, name)
		data, err := os.ReadFile(local)
		switch {
		case err == nil && (!verify || sha1Hex(data) == checksum):
			log.Ctx(ctx).Debug().Str("file", local).Msg("reusing downloaded mapping")
			return data, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read downloaded mapping").
				WithCause(err)
		}
	}
	data, found, err := fetchBytes(ctx, url, a.http)
	if err != nil || !found {
		return nil, found, err
	}
	if verify {
		if got := sha1Hex(data); got != checksum {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("checksum mismatch").
				WithCause(fmt.Errorf("url=%s want=%s got=%s", url, checksum, got))
		}
	}
	if local != "" {
		if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create download directory").
				WithCause(err)
		}
		if err := os.WriteFile(local, data, 0644); err != nil {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to store downloaded mapping").
				WithCause(err)
		}
	}
	return data, true, nil
}

func expandURL(template string, version string) string {
	return strings.ReplaceAll(template, "{version}", version)
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

var _ ports.MappingSourcePort = MappingHTTPAdapter{}
