package app

import (
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/core"
	"tinyprotocol/internal/types"
)

// Inspect summarizes a written mapping table. When Class and a protocol
// ordinal are given it also looks up the runtime names of that class and
// its members at that ordinal.
func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	tablePath := strings.TrimSpace(req.TablePath)
	if tablePath == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mapping table path is required")
	}
	table, err := s.TableReader.ReadTable(tablePath)
	if err != nil {
		return InspectResult{}, err
	}

	byName := map[string]types.ClassEntry{}
	for _, class := range table.Classes {
		byName[class.Name] = class
	}
	var summaries []InspectClassSummary
	for _, name := range sortedKeys(byName) {
		class := byName[name]
		summaries = append(summaries, InspectClassSummary{
			Name:    class.Name,
			Offset:  class.Offset,
			Size:    class.Size,
			Min:     class.Min,
			Max:     class.Max,
			Fields:  len(class.Fields),
			Methods: len(class.Methods),
		})
	}
	result := InspectResult{Versions: table.Versions, Classes: summaries}

	className := strings.TrimSpace(req.Class)
	if className == "" || req.Protocol < 0 {
		return result, nil
	}
	class, ok := byName[className]
	if !ok {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("class not in mapping table: " + className)
	}
	lookups, err := lookupClass(class, req.Protocol)
	if err != nil {
		return InspectResult{}, err
	}
	result.Lookups = lookups
	return result, nil
}

func lookupClass(class types.ClassEntry, protocol int) ([]InspectLookup, error) {
	var out []InspectLookup
	add := func(entity string, mappings string) error {
		name, found, err := core.FindMapping(mappings, protocol)
		if err != nil {
			return err
		}
		out = append(out, InspectLookup{Entity: entity, Runtime: name, Found: found})
		return nil
	}
	if err := add(class.Name, class.Mappings); err != nil {
		return nil, err
	}
	for _, field := range class.Fields {
		if err := add(class.Name+"#"+field.Name, field.Mappings); err != nil {
			return nil, err
		}
	}
	for _, method := range class.Methods {
		if err := add(class.Name+"#"+method.Name+method.Descriptor, method.Mappings); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
