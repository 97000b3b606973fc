package core

import (
	"fmt"
	"strconv"
	"strings"

	"tinyprotocol/internal/shared"
)

// JoinedMapping is one name of a compact mapping string together with
// the protocol ordinals it is valid for.
type JoinedMapping struct {
	Name     string
	Ordinals []int
}

// NameRun is a contiguous run of runtime names starting at version index
// Offset.
type NameRun struct {
	Offset int
	Names  []string
}

// JoinMappings renders the runtime names of a tree starting at offset as
// "name=754,755+other=756". Names keep first-seen order and ordinals are
// deduplicated per name.
func JoinMappings(names []string, offset int, ordinals []int) (string, error) {
	return JoinRuns([]NameRun{{Offset: offset, Names: names}}, ordinals)
}

// JoinRuns joins the runs of a lineage into one mapping string.
func JoinRuns(runs []NameRun, ordinals []int) (string, error) {
	var groups []JoinedMapping
	positions := map[string]int{}
	for _, run := range runs {
		if run.Offset < 0 || run.Offset+len(run.Names) > len(ordinals) {
			return "", shared.InvalidConfiguration(fmt.Sprintf("tree [%d, %d) exceeds %d versions", run.Offset, run.Offset+len(run.Names), len(ordinals)))
		}
		for i, name := range run.Names {
			ordinal := ordinals[run.Offset+i]
			pos, ok := positions[name]
			if !ok {
				pos = len(groups)
				positions[name] = pos
				groups = append(groups, JoinedMapping{Name: name})
			}
			group := &groups[pos]
			if containsInt(group.Ordinals, ordinal) {
				continue
			}
			group.Ordinals = append(group.Ordinals, ordinal)
		}
	}
	return FormatMappings(groups), nil
}

func FormatMappings(groups []JoinedMapping) string {
	parts := make([]string, 0, len(groups))
	for _, group := range groups {
		ordinals := make([]string, 0, len(group.Ordinals))
		for _, ordinal := range group.Ordinals {
			ordinals = append(ordinals, strconv.Itoa(ordinal))
		}
		parts = append(parts, group.Name+"="+strings.Join(ordinals, ","))
	}
	return strings.Join(parts, "+")
}

// UnwrapMappings parses a compact mapping string.
func UnwrapMappings(joined string) ([]JoinedMapping, error) {
	joined = strings.TrimSpace(joined)
	if joined == "" {
		return nil, nil
	}
	var out []JoinedMapping
	for _, part := range strings.Split(joined, "+") {
		name, list, ok := strings.Cut(part, "=")
		if !ok || name == "" || list == "" {
			return nil, shared.InvalidConfiguration(fmt.Sprintf("malformed mapping segment %q", part))
		}
		group := JoinedMapping{Name: name}
		for _, value := range strings.Split(list, ",") {
			ordinal, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || ordinal < 0 {
				return nil, shared.InvalidConfiguration(fmt.Sprintf("malformed protocol ordinal %q in %q", value, part))
			}
			group.Ordinals = append(group.Ordinals, ordinal)
		}
		out = append(out, group)
	}
	return out, nil
}

// FindMapping returns the name valid for ordinal.
func FindMapping(joined string, ordinal int) (string, bool, error) {
	groups, err := UnwrapMappings(joined)
	if err != nil {
		return "", false, err
	}
	for _, group := range groups {
		if containsInt(group.Ordinals, ordinal) {
			return group.Name, true, nil
		}
	}
	return "", false, nil
}

// ProtocolBounds returns the inclusive ordinal bounds of a tree. A bound
// is nil when the tree reaches that end of the version list.
func ProtocolBounds(offset int, size int, ordinals []int) (minProtocol *int, maxProtocol *int) {
	if size <= 0 {
		return nil, nil
	}
	if offset > 0 && offset < len(ordinals) {
		value := ordinals[offset]
		minProtocol = &value
	}
	if end := offset + size; end < len(ordinals) && end > 0 {
		value := ordinals[end-1]
		maxProtocol = &value
	}
	return minProtocol, maxProtocol
}

func containsInt(values []int, target int) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
