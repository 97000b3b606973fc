package adapters

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const DefaultProtocolIndex = "https://raw.githubusercontent.com/PrismarineJS/minecraft-data/master/data/pc/common/protocolVersions.json"

// ProtocolIndexAdapter reads the version protocol index from a URL or a
// local file. The index is loaded at most once.
type ProtocolIndexAdapter struct {
	Source string
	http   httpRetryConfig
	state  *protocolIndexState
}

type protocolIndexState struct {
	once  sync.Once
	index types.ProtocolIndex
	err   error
}

func NewProtocolIndexAdapter(source string, timeoutSec int, retries int) ProtocolIndexAdapter {
	if strings.TrimSpace(source) == "" {
		source = DefaultProtocolIndex
	}
	return ProtocolIndexAdapter{
		Source: source,
		http:   normalizeHTTPConfig(timeoutSec, retries, 0),
		state:  &protocolIndexState{},
	}
}

func (a ProtocolIndexAdapter) Load(ctx context.Context) (types.ProtocolIndex, error) {
	a.state.once.Do(func() {
		a.state.index, a.state.err = a.load(ctx)
	})
	return a.state.index, a.state.err
}

func (a ProtocolIndexAdapter) load(ctx context.Context) (types.ProtocolIndex, error) {
	var data []byte
	if strings.HasPrefix(a.Source, "http://") || strings.HasPrefix(a.Source, "https://") {
		body, found, err := fetchBytes(ctx, a.Source, a.http)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("protocol index not found").
				WithCause(shared.HTTPStatusError(404, a.Source))
		}
		data = body
	} else {
		body, err := os.ReadFile(a.Source)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("protocol index file not found").
				WithCause(err)
		}
		data = body
	}
	index, err := ParseProtocolIndex(data)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("source", a.Source).Int("versions", len(index)).Msg("loaded protocol index")
	return index, nil
}

// ParseProtocolIndex decodes the protocol index records. The first record
// of a version wins.
func ParseProtocolIndex(data []byte) (types.ProtocolIndex, error) {
	var records []types.ProtocolData
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode protocol index").
			WithCause(err)
	}
	index := make(types.ProtocolIndex, len(records))
	for _, record := range records {
		if record.MinecraftVersion == "" {
			continue
		}
		if _, ok := index[record.MinecraftVersion]; ok {
			continue
		}
		index[record.MinecraftVersion] = record.Version
	}
	return index, nil
}

var _ ports.ProtocolIndexPort = ProtocolIndexAdapter{}
