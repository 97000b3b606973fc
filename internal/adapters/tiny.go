package adapters

import (
	"bufio"
	"io"
	"strings"

	"tinyprotocol/internal/types"
)

const (
	tinyOfficial     = "official"
	tinyIntermediary = "intermediary"
)

// ParseTiny reads an Intermediary mapping in Tiny v1 or Tiny v2 format,
// keyed by the official (obfuscated) namespace.
func ParseTiny(reader io.Reader) (types.SymbolTable, error) {
	scanner := newLineScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return types.SymbolTable{}, scanError("tiny", err)
		}
		return types.SymbolTable{}, parseError("tiny", 1, "")
	}
	header := strings.Split(scanner.Text(), "\t")
	switch {
	case len(header) >= 3 && header[0] == "v1":
		return parseTinyV1(scanner, header[1:])
	case len(header) >= 5 && header[0] == "tiny" && header[1] == "2":
		return parseTinyV2(scanner, header[3:])
	default:
		return types.SymbolTable{}, parseError("tiny", 1, scanner.Text())
	}
}

func tinyColumns(namespaces []string) (int, int, bool) {
	from, to := -1, -1
	for idx, namespace := range namespaces {
		switch namespace {
		case tinyOfficial:
			from = idx
		case tinyIntermediary:
			to = idx
		}
	}
	return from, to, from >= 0 && to >= 0
}

type tinyClassIndex struct {
	table     *types.SymbolTable
	positions map[string]int
}

func (t *tinyClassIndex) class(name string) *types.SymbolClass {
	pos, ok := t.positions[name]
	if !ok {
		pos = len(t.table.Classes)
		t.positions[name] = pos
		t.table.Classes = append(t.table.Classes, types.SymbolClass{From: name})
	}
	return &t.table.Classes[pos]
}

func parseTinyV1(scanner *bufio.Scanner, namespaces []string) (types.SymbolTable, error) {
	from, to, ok := tinyColumns(namespaces)
	if !ok {
		return types.SymbolTable{}, parseError("tiny", 1, strings.Join(namespaces, "\t"))
	}
	if from != 0 {
		return types.SymbolTable{}, parseError("tiny", 1, "descriptors must use the official namespace")
	}
	table := types.SymbolTable{System: types.NamingIntermediary}
	index := &tinyClassIndex{table: &table, positions: map[string]int{}}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		switch cols[0] {
		case "CLASS":
			if len(cols) < 1+len(namespaces) {
				return types.SymbolTable{}, parseError("tiny", lineNo, line)
			}
			index.class(cols[1+from]).To = cols[1+to]
		case "FIELD", "METHOD":
			if len(cols) < 3+len(namespaces) {
				return types.SymbolTable{}, parseError("tiny", lineNo, line)
			}
			member := types.SymbolMember{
				From:       cols[3+from],
				To:         cols[3+to],
				Descriptor: cols[2],
			}
			class := index.class(cols[1])
			if cols[0] == "FIELD" {
				class.Fields = append(class.Fields, member)
			} else {
				class.Methods = append(class.Methods, member)
			}
		default:
			return types.SymbolTable{}, parseError("tiny", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("tiny", err)
	}
	return table, nil
}

func parseTinyV2(scanner *bufio.Scanner, namespaces []string) (types.SymbolTable, error) {
	from, to, ok := tinyColumns(namespaces)
	if !ok || from != 0 {
		return types.SymbolTable{}, parseError("tiny", 1, strings.Join(namespaces, "\t"))
	}
	table := types.SymbolTable{System: types.NamingIntermediary}
	index := &tinyClassIndex{table: &table, positions: map[string]int{}}
	var current *types.SymbolClass
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := len(line) - len(strings.TrimLeft(line, "\t"))
		cols := strings.Split(line[depth:], "\t")
		switch {
		case depth == 0 && cols[0] == "c":
			if len(cols) < 1+len(namespaces) {
				return types.SymbolTable{}, parseError("tiny", lineNo, line)
			}
			current = index.class(cols[1+from])
			current.To = cols[1+to]
		case depth == 1 && (cols[0] == "f" || cols[0] == "m"):
			if current == nil || len(cols) < 2+len(namespaces) {
				return types.SymbolTable{}, parseError("tiny", lineNo, line)
			}
			member := types.SymbolMember{
				From:       cols[2+from],
				To:         cols[2+to],
				Descriptor: cols[1],
			}
			if cols[0] == "f" {
				current.Fields = append(current.Fields, member)
			} else {
				current.Methods = append(current.Methods, member)
			}
		case depth == 1 && cols[0] == "c", depth >= 2:
			// comments, parameters and locals
		default:
			if depth == 0 {
				return types.SymbolTable{}, parseError("tiny", lineNo, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("tiny", err)
	}
	return table, nil
}
