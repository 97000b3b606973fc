package types

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"tinyprotocol/internal/shared"
)

// SymbolTable is one raw naming system table as produced by a parser.
// From is the obfuscated side unless Inverted is set, in which case the
// table maps aliases to obfuscated names (the Mojang layout).
type SymbolTable struct {
	System   NamingSystem
	Inverted bool
	Classes  []SymbolClass
}

type SymbolClass struct {
	From    string
	To      string
	Fields  []SymbolMember
	Methods []SymbolMember
}

// SymbolMember carries a descriptor written in the From side naming.
// The descriptor may be empty for formats that omit field types.
type SymbolMember struct {
	From       string
	To         string
	Descriptor string
}

type MemberRef struct {
	Name       string `yaml:"name" json:"name"`
	Descriptor string `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
}

type MemberMapping struct {
	Original   string                  `json:"original"`
	Descriptor string                  `json:"descriptor,omitempty"`
	Names      map[NamingSystem]string `json:"names,omitempty"`
}

func (m *MemberMapping) Mapped(system NamingSystem) (string, bool) {
	name, ok := m.Names[system]
	return name, ok && name != ""
}

func (m *MemberMapping) Best() string {
	for _, system := range NamingSystems() {
		if name, ok := m.Mapped(system); ok {
			return name
		}
	}
	return m.Original
}

// IsConstant reports whether the Mojang alias looks like a compile-time
// constant.
func (m *MemberMapping) IsConstant() bool {
	name, ok := m.Mapped(NamingMojang)
	return ok && IsConstantName(name)
}

// IsConstantName applies the all-uppercase identifier heuristic.
func IsConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r), r == '_', r == '$':
		default:
			return false
		}
	}
	return hasLetter
}

type ClassMapping struct {
	Original string                  `json:"original"`
	Names    map[NamingSystem]string `json:"names,omitempty"`
	Fields   []MemberMapping         `json:"fields,omitempty"`
	Methods  []MemberMapping         `json:"methods,omitempty"`

	members map[MemberKind]*memberIndex
}

type memberIndex struct {
	byOriginal map[string][]int
	byAlias    map[NamingSystem]map[string][]int
}

func (c *ClassMapping) Mapped(system NamingSystem) (string, bool) {
	name, ok := c.Names[system]
	return name, ok && name != ""
}

// Best returns the alias of the first available system in display order,
// falling back to the obfuscated name.
func (c *ClassMapping) Best() string {
	for _, system := range NamingSystems() {
		if name, ok := c.Mapped(system); ok {
			return name
		}
	}
	return c.Original
}

func (c *ClassMapping) Members(kind MemberKind) []MemberMapping {
	if kind == MemberKindMethod {
		return c.Methods
	}
	return c.Fields
}

// MembersByOriginal returns every member of kind with the obfuscated name.
func (c *ClassMapping) MembersByOriginal(kind MemberKind, name string) []*MemberMapping {
	idx := c.members[kind]
	if idx == nil {
		return nil
	}
	return c.pick(kind, idx.byOriginal[name])
}

// MembersByAlias returns every member of kind carrying alias under system.
func (c *ClassMapping) MembersByAlias(kind MemberKind, system NamingSystem, alias string) []*MemberMapping {
	idx := c.members[kind]
	if idx == nil {
		return nil
	}
	return c.pick(kind, idx.byAlias[system][alias])
}

func (c *ClassMapping) pick(kind MemberKind, positions []int) []*MemberMapping {
	if len(positions) == 0 {
		return nil
	}
	members := c.Members(kind)
	out := make([]*MemberMapping, 0, len(positions))
	for _, pos := range positions {
		out = append(out, &members[pos])
	}
	return out
}

func (c *ClassMapping) buildIndexes() error {
	c.members = map[MemberKind]*memberIndex{}
	for _, kind := range []MemberKind{MemberKindField, MemberKindMethod} {
		idx := &memberIndex{
			byOriginal: map[string][]int{},
			byAlias:    map[NamingSystem]map[string][]int{},
		}
		seen := map[string]struct{}{}
		for pos, member := range c.Members(kind) {
			key := member.Original + " " + member.Descriptor
			if _, ok := seen[key]; ok {
				return fmt.Errorf("duplicate %s %s%s in class %s", kind, member.Original, member.Descriptor, c.Original)
			}
			seen[key] = struct{}{}
			idx.byOriginal[member.Original] = append(idx.byOriginal[member.Original], pos)
			for system, alias := range member.Names {
				if alias == "" {
					continue
				}
				if idx.byAlias[system] == nil {
					idx.byAlias[system] = map[string][]int{}
				}
				idx.byAlias[system][alias] = append(idx.byAlias[system][alias], pos)
			}
		}
		c.members[kind] = idx
	}
	return nil
}

// MappingFile is the immutable per-version symbol table merged from every
// available naming system. Build it with NewMappingFile.
type MappingFile struct {
	Version string         `json:"version"`
	Systems []NamingSystem `json:"systems"`
	Classes []ClassMapping `json:"classes"`

	byOriginal map[string]int
	byAlias    map[NamingSystem]map[string]int
}

// NewMappingFile validates uniqueness of obfuscated class names, of member
// name and descriptor pairs, and of class aliases per system, then builds
// lookup indexes. The input slices are copied.
func NewMappingFile(version string, systems []NamingSystem, classes []ClassMapping) (MappingFile, error) {
	file := MappingFile{
		Version:    version,
		Systems:    sortSystems(systems),
		Classes:    append([]ClassMapping(nil), classes...),
		byOriginal: make(map[string]int, len(classes)),
		byAlias:    map[NamingSystem]map[string]int{},
	}
	for _, system := range file.Systems {
		file.byAlias[system] = map[string]int{}
	}
	for pos := range file.Classes {
		class := &file.Classes[pos]
		if _, ok := file.byOriginal[class.Original]; ok {
			return MappingFile{}, shared.MappingUnavailable(version, file.primarySystem(),
				fmt.Errorf("duplicate class %s", class.Original))
		}
		file.byOriginal[class.Original] = pos
		for system, alias := range class.Names {
			if alias == "" {
				continue
			}
			aliases, ok := file.byAlias[system]
			if !ok {
				return MappingFile{}, shared.MappingUnavailable(version, string(system),
					fmt.Errorf("class %s carries alias of unloaded system", class.Original))
			}
			if other, dup := aliases[alias]; dup {
				return MappingFile{}, shared.MappingUnavailable(version, string(system),
					fmt.Errorf("alias %s shared by %s and %s", alias, file.Classes[other].Original, class.Original))
			}
			aliases[alias] = pos
		}
		if err := class.buildIndexes(); err != nil {
			return MappingFile{}, shared.MappingUnavailable(version, file.primarySystem(), err)
		}
	}
	return file, nil
}

func (f *MappingFile) primarySystem() string {
	if len(f.Systems) == 0 {
		return "none"
	}
	return string(f.Systems[0])
}

func (f *MappingFile) HasSystem(system NamingSystem) bool {
	_, ok := f.byAlias[system]
	return ok
}

// Class looks up a class by obfuscated name.
func (f *MappingFile) Class(original string) (*ClassMapping, bool) {
	pos, ok := f.byOriginal[original]
	if !ok {
		return nil, false
	}
	return &f.Classes[pos], true
}

func (f *MappingFile) ClassByAlias(system NamingSystem, alias string) (*ClassMapping, bool) {
	pos, ok := f.byAlias[system][alias]
	if !ok {
		return nil, false
	}
	return &f.Classes[pos], true
}

// ClassByKey resolves a class by the value of a comparison key.
func (f *MappingFile) ClassByKey(key ComparisonKey, value string) (*ClassMapping, bool) {
	if system, ok := key.System(); ok {
		return f.ClassByAlias(system, value)
	}
	return f.Class(value)
}

// Lookup resolves name as an alias in display order, then as an
// obfuscated name.
func (f *MappingFile) Lookup(name string) (*ClassMapping, bool) {
	name = shared.NormalizeClassName(name)
	for _, system := range f.Systems {
		if class, ok := f.ClassByAlias(system, name); ok {
			return class, true
		}
	}
	return f.Class(name)
}

// RemapDescriptor rewrites the class references of an obfuscated
// descriptor into system names. Classes without an alias keep their
// obfuscated name.
func (f *MappingFile) RemapDescriptor(desc string, system NamingSystem) string {
	return shared.MapDescriptorClasses(desc, func(name string) string {
		class, ok := f.Class(name)
		if !ok {
			return name
		}
		if alias, ok := class.Mapped(system); ok {
			return alias
		}
		return name
	})
}

// Names lists every class name known to the file: obfuscated names and
// all aliases, sorted and deduplicated.
func (f *MappingFile) Names() []string {
	set := map[string]struct{}{}
	for _, class := range f.Classes {
		set[class.Original] = struct{}{}
		for _, alias := range class.Names {
			if alias != "" {
				set[alias] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortSystems(systems []NamingSystem) []NamingSystem {
	seen := map[NamingSystem]struct{}{}
	out := make([]NamingSystem, 0, len(systems))
	for _, system := range systems {
		if _, ok := seen[system]; ok || system.Rank() < 0 {
			continue
		}
		seen[system] = struct{}{}
		out = append(out, system)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rank() < out[j].Rank()
	})
	return out
}

// SystemList renders systems as a comma-separated list.
func SystemList(systems []NamingSystem) string {
	parts := make([]string, 0, len(systems))
	for _, system := range systems {
		parts = append(parts, string(system))
	}
	return strings.Join(parts, ",")
}
