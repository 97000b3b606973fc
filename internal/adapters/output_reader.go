package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

type OutputReaderAdapter struct{}

func NewOutputReaderAdapter() OutputReaderAdapter {
	return OutputReaderAdapter{}
}

func (a OutputReaderAdapter) ReadTable(path string) (types.MappingTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.MappingTable{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("mapping table not found").
			WithCause(err)
	}
	var table types.MappingTable
	if err := yaml.Unmarshal(content, &table); err != nil {
		return types.MappingTable{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid mapping table format").
			WithCause(err)
	}
	return table, nil
}

var _ ports.TableReaderPort = OutputReaderAdapter{}
