package core

import (
	"errors"
	"fmt"
	"sort"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// ReverseTable swaps an inverted table so that From is the obfuscated
// name. Member descriptors are rewritten into obfuscated class names.
func ReverseTable(table types.SymbolTable) types.SymbolTable {
	if !table.Inverted {
		return table
	}
	toObfuscated := make(map[string]string, len(table.Classes))
	for _, class := range table.Classes {
		toObfuscated[class.From] = class.To
	}
	remap := func(desc string) string {
		return shared.MapDescriptorClasses(desc, func(name string) string {
			if obfuscated, ok := toObfuscated[name]; ok {
				return obfuscated
			}
			return name
		})
	}
	reverseMembers := func(members []types.SymbolMember) []types.SymbolMember {
		if len(members) == 0 {
			return nil
		}
		out := make([]types.SymbolMember, 0, len(members))
		for _, member := range members {
			out = append(out, types.SymbolMember{
				From:       member.To,
				To:         member.From,
				Descriptor: remap(member.Descriptor),
			})
		}
		return out
	}
	out := types.SymbolTable{
		System:  table.System,
		Classes: make([]types.SymbolClass, 0, len(table.Classes)),
	}
	for _, class := range table.Classes {
		out.Classes = append(out.Classes, types.SymbolClass{
			From:    class.To,
			To:      class.From,
			Fields:  reverseMembers(class.Fields),
			Methods: reverseMembers(class.Methods),
		})
	}
	return out
}

// ValidateTable checks that obfuscated class names and class aliases are
// unique within one obfuscated-keyed table.
func ValidateTable(version string, table types.SymbolTable) error {
	if table.Inverted {
		table = ReverseTable(table)
	}
	obfuscated := make(map[string]struct{}, len(table.Classes))
	aliases := make(map[string]string, len(table.Classes))
	for _, class := range table.Classes {
		if _, ok := obfuscated[class.From]; ok {
			return shared.MappingUnavailable(version, string(table.System), fmt.Errorf("duplicate class %s", class.From))
		}
		obfuscated[class.From] = struct{}{}
		if class.To == "" {
			continue
		}
		if other, ok := aliases[class.To]; ok {
			return shared.MappingUnavailable(version, string(table.System),
				fmt.Errorf("alias %s claimed by %s and %s", class.To, other, class.From))
		}
		aliases[class.To] = class.From
	}
	return nil
}

// MergeTables builds one mapping file from the available system tables.
// The highest ranked table (Mojang when present) is the backbone; the
// rest are joined onto it by obfuscated class name and by member name and
// descriptor. Classes missing from the backbone are dropped.
func MergeTables(version string, tables []types.SymbolTable) (types.MappingFile, error) {
	if len(tables) == 0 {
		return types.MappingFile{}, shared.MappingUnavailable(version, "all", errors.New("no naming system available"))
	}
	ordered := make([]types.SymbolTable, 0, len(tables))
	for _, table := range tables {
		ordered = append(ordered, ReverseTable(table))
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].System.Rank() < ordered[j].System.Rank()
	})

	backbone := ordered[0]
	classes := make([]types.ClassMapping, 0, len(backbone.Classes))
	positions := make(map[string]int, len(backbone.Classes))
	for _, class := range backbone.Classes {
		positions[class.From] = len(classes)
		classes = append(classes, types.ClassMapping{
			Original: class.From,
			Names:    aliasMap(backbone.System, class.To),
			Fields:   backboneMembers(backbone.System, class.Fields),
			Methods:  backboneMembers(backbone.System, class.Methods),
		})
	}
	systems := []types.NamingSystem{backbone.System}
	for _, table := range ordered[1:] {
		systems = append(systems, table.System)
		for _, class := range table.Classes {
			pos, ok := positions[class.From]
			if !ok {
				continue
			}
			target := &classes[pos]
			if class.To != "" {
				target.Names[table.System] = class.To
			}
			joinMembers(target.Fields, class.Fields, table.System)
			joinMembers(target.Methods, class.Methods, table.System)
		}
	}
	return types.NewMappingFile(version, systems, classes)
}

func aliasMap(system types.NamingSystem, alias string) map[types.NamingSystem]string {
	names := map[types.NamingSystem]string{}
	if alias != "" {
		names[system] = alias
	}
	return names
}

func backboneMembers(system types.NamingSystem, members []types.SymbolMember) []types.MemberMapping {
	if len(members) == 0 {
		return nil
	}
	out := make([]types.MemberMapping, 0, len(members))
	for _, member := range members {
		out = append(out, types.MemberMapping{
			Original:   member.From,
			Descriptor: member.Descriptor,
			Names:      aliasMap(system, member.To),
		})
	}
	return out
}

// joinMembers attaches aliases to backbone members. A member matches on
// name and descriptor; when either side lacks a descriptor it matches on
// name alone, provided the name is unambiguous.
func joinMembers(targets []types.MemberMapping, sources []types.SymbolMember, system types.NamingSystem) {
	if len(targets) == 0 || len(sources) == 0 {
		return
	}
	byKey := make(map[string]int, len(targets))
	byName := make(map[string][]int, len(targets))
	for pos, member := range targets {
		byKey[member.Original+" "+member.Descriptor] = pos
		byName[member.Original] = append(byName[member.Original], pos)
	}
	for _, source := range sources {
		pos, ok := -1, false
		if source.Descriptor != "" {
			pos, ok = byKey[source.From+" "+source.Descriptor]
		}
		if !ok {
			candidates := byName[source.From]
			if len(candidates) != 1 {
				continue
			}
			if source.Descriptor != "" && targets[candidates[0]].Descriptor != "" {
				continue
			}
			pos = candidates[0]
		}
		target := &targets[pos]
		if target.Descriptor == "" && source.Descriptor != "" {
			target.Descriptor = source.Descriptor
			byKey[target.Original+" "+target.Descriptor] = pos
		}
		if source.To != "" {
			target.Names[system] = source.To
		}
	}
}
