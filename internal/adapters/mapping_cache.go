package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

const mappingCacheFormat = 1

type mappingCacheEnvelope struct {
	Format   int                 `json:"format"`
	Versions []string            `json:"versions"`
	Files    []types.MappingFile `json:"files"`
}

// MappingCacheAdapter stores the mapping file sequence as one zstd
// compressed JSON artifact per ordered version list.
type MappingCacheAdapter struct {
	Dir string
}

func NewMappingCacheAdapter(dir string) MappingCacheAdapter {
	return MappingCacheAdapter{Dir: dir}
}

// MappingCacheKey hashes the ordered version list.
func MappingCacheKey(versions []string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(versions, "\n")))
}

func (a MappingCacheAdapter) Path(versions []string) string {
	return filepath.Join(a.Dir, fmt.Sprintf("mappings-%s.json.zst", MappingCacheKey(versions)))
}

// Load treats every mismatch or decode failure as a full miss.
func (a MappingCacheAdapter) Load(ctx context.Context, versions []string) ([]types.MappingFile, bool, error) {
	path := a.Path(versions)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open mapping cache").
			WithCause(err)
	}
	defer file.Close()
	decoder, err := zstd.NewReader(file)
	if err != nil {
		log.Ctx(ctx).Warn().Str("path", path).Err(err).Msg("discarding unreadable mapping cache")
		return nil, false, nil
	}
	defer decoder.Close()
	var envelope mappingCacheEnvelope
	if err := json.NewDecoder(decoder).Decode(&envelope); err != nil {
		log.Ctx(ctx).Warn().Str("path", path).Err(err).Msg("discarding corrupted mapping cache")
		return nil, false, nil
	}
	if reason := envelopeMismatch(envelope, versions); reason != "" {
		log.Ctx(ctx).Info().Str("path", path).Str("reason", reason).Msg("mapping cache miss")
		return nil, false, nil
	}
	files := make([]types.MappingFile, 0, len(envelope.Files))
	for _, stored := range envelope.Files {
		rebuilt, err := types.NewMappingFile(stored.Version, stored.Systems, stored.Classes)
		if err != nil {
			log.Ctx(ctx).Warn().Str("path", path).Err(err).Msg("discarding inconsistent mapping cache")
			return nil, false, nil
		}
		files = append(files, rebuilt)
	}
	log.Ctx(ctx).Debug().Str("path", path).Int("versions", len(files)).Msg("mapping cache hit")
	return files, true, nil
}

func envelopeMismatch(envelope mappingCacheEnvelope, versions []string) string {
	if envelope.Format != mappingCacheFormat {
		return fmt.Sprintf("format %d", envelope.Format)
	}
	if !slices.Equal(envelope.Versions, versions) {
		return "version list differs"
	}
	if len(envelope.Files) != len(versions) {
		return "file count differs"
	}
	for idx, file := range envelope.Files {
		if file.Version != versions[idx] {
			return fmt.Sprintf("file %d holds %s", idx, file.Version)
		}
	}
	return ""
}

func (a MappingCacheAdapter) Store(ctx context.Context, versions []string, files []types.MappingFile) error {
	if len(versions) != len(files) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mapping cache requires one file per version")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create mapping cache directory").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(a.Dir, "mappings-*.tmp")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create mapping cache").
			WithCause(err)
	}
	defer os.Remove(tmp.Name())
	encoder, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create mapping cache encoder").
			WithCause(err)
	}
	envelope := mappingCacheEnvelope{Format: mappingCacheFormat, Versions: versions, Files: files}
	if err := json.NewEncoder(encoder).Encode(envelope); err != nil {
		encoder.Close()
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode mapping cache").
			WithCause(err)
	}
	if err := encoder.Close(); err != nil {
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to flush mapping cache").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close mapping cache").
			WithCause(err)
	}
	path := a.Path(versions)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to store mapping cache").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Str("path", path).Int("versions", len(files)).Msg("stored mapping cache")
	return nil
}

var _ ports.MappingCachePort = MappingCacheAdapter{}
