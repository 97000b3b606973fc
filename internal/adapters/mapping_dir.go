package adapters

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// Per-version file names, tried in order.
var (
	mojangFiles       = []string{"mojang.txt", "server.txt", "client.txt"}
	intermediaryFiles = []string{"intermediary.tiny", "mappings.tiny"}
	seargeFiles       = []string{"searge.tsrg", "joined.tsrg", "joined.srg", "mcp_config.zip", "mcp.zip"}
	spigotClassFiles  = []string{"spigot-cl.csrg", "bukkit-cl.csrg"}
	spigotMemberFiles = []string{"spigot-mem.csrg", "bukkit-members.csrg"}
)

// MappingDirAdapter reads mapping files laid out as <root>/<version>/<file>.
type MappingDirAdapter struct {
	Root string
}

func NewMappingDirAdapter(root string) MappingDirAdapter {
	return MappingDirAdapter{Root: root}
}

func (a MappingDirAdapter) Fetch(ctx context.Context, version string, system types.NamingSystem) (types.SymbolTable, bool, error) {
	if strings.TrimSpace(a.Root) == "" {
		return types.SymbolTable{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mappings directory is required")
	}
	dir := filepath.Join(a.Root, version)
	var table types.SymbolTable
	var found bool
	var err error
	switch system {
	case types.NamingMojang:
		table, found, err = readFirst(dir, mojangFiles, func(_ string, data []byte) (types.SymbolTable, error) {
			return ParseProGuard(bytes.NewReader(data))
		})
	case types.NamingIntermediary:
		table, found, err = readFirst(dir, intermediaryFiles, func(_ string, data []byte) (types.SymbolTable, error) {
			return ParseTiny(bytes.NewReader(data))
		})
	case types.NamingSearge:
		table, found, err = readFirst(dir, seargeFiles, parseSeargeFile)
	case types.NamingSpigot:
		table, found, err = readSpigot(dir)
	default:
		return types.SymbolTable{}, false, shared.InvalidConfiguration("unknown naming system: " + string(system))
	}
	if err != nil {
		return types.SymbolTable{}, false, shared.MappingUnavailable(version, string(system), err)
	}
	log.Ctx(ctx).Debug().Str("version", version).Str("system", string(system)).Bool("found", found).Msg("read mapping directory")
	return table, found, nil
}

func parseSeargeFile(name string, data []byte) (types.SymbolTable, error) {
	if strings.HasSuffix(name, ".zip") {
		return ParseSeargeArchive(data)
	}
	return ParseSearge(bytes.NewReader(data))
}

func readFirst(dir string, names []string, parse func(name string, data []byte) (types.SymbolTable, error)) (types.SymbolTable, bool, error) {
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return types.SymbolTable{}, false, err
		}
		table, err := parse(name, data)
		if err != nil {
			return types.SymbolTable{}, false, err
		}
		return table, true, nil
	}
	return types.SymbolTable{}, false, nil
}

func readSpigot(dir string) (types.SymbolTable, bool, error) {
	classes, err := openFirst(dir, spigotClassFiles)
	if err != nil || classes == nil {
		return types.SymbolTable{}, false, err
	}
	defer classes.Close()
	members, err := openFirst(dir, spigotMemberFiles)
	if err != nil {
		return types.SymbolTable{}, false, err
	}
	var memberReader io.Reader
	if members != nil {
		defer members.Close()
		memberReader = members
	}
	table, err := ParseCSRG(classes, memberReader)
	if err != nil {
		return types.SymbolTable{}, false, err
	}
	return table, true, nil
}

func openFirst(dir string, names []string) (*os.File, error) {
	for _, name := range names {
		file, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return nil, nil
}

var _ ports.MappingSourcePort = MappingDirAdapter{}
