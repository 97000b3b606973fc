package adapters

import (
	"bufio"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"

	"tinyprotocol/internal/types"
)

// ParseSearge reads a Searge mapping in TSRG v1, TSRG v2 or SRG format,
// detected from the first meaningful line.
func ParseSearge(reader io.Reader) (types.SymbolTable, error) {
	buffered := bufio.NewReader(reader)
	head, err := buffered.Peek(8)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return types.SymbolTable{}, scanError("srg", err)
	}
	text := string(head)
	switch {
	case strings.HasPrefix(text, "tsrg2 "):
		return parseTSRG2(newLineScanner(buffered))
	case strings.HasPrefix(text, "PK: "), strings.HasPrefix(text, "CL: "),
		strings.HasPrefix(text, "FD: "), strings.HasPrefix(text, "MD: "):
		return parseSRG(newLineScanner(buffered))
	default:
		return parseTSRG(newLineScanner(buffered))
	}
}

func parseTSRG(scanner *bufio.Scanner) (types.SymbolTable, error) {
	table := types.SymbolTable{System: types.NamingSearge}
	var current *types.SymbolClass
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		indented := line[0] == '\t' || line[0] == ' '
		cols := strings.Fields(line)
		if !indented {
			if len(cols) != 2 {
				return types.SymbolTable{}, parseError("tsrg", lineNo, line)
			}
			if strings.HasSuffix(cols[0], "/") {
				current = nil
				continue
			}
			table.Classes = append(table.Classes, types.SymbolClass{From: cols[0], To: cols[1]})
			current = &table.Classes[len(table.Classes)-1]
			continue
		}
		if current == nil {
			return types.SymbolTable{}, parseError("tsrg", lineNo, line)
		}
		switch len(cols) {
		case 2:
			current.Fields = append(current.Fields, types.SymbolMember{From: cols[0], To: cols[1]})
		case 3:
			current.Methods = append(current.Methods, types.SymbolMember{From: cols[0], Descriptor: cols[1], To: cols[2]})
		default:
			return types.SymbolTable{}, parseError("tsrg", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("tsrg", err)
	}
	return table, nil
}

// parseTSRG2 keeps the first two namespaces. Field lines carry an optional
// descriptor, detected by the column count.
func parseTSRG2(scanner *bufio.Scanner) (types.SymbolTable, error) {
	if !scanner.Scan() {
		return types.SymbolTable{}, parseError("tsrg2", 1, "")
	}
	namespaces := len(strings.Fields(scanner.Text())) - 1
	if namespaces < 2 {
		return types.SymbolTable{}, parseError("tsrg2", 1, scanner.Text())
	}
	table := types.SymbolTable{System: types.NamingSearge}
	var current *types.SymbolClass
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := len(line) - len(strings.TrimLeft(line, "\t"))
		cols := strings.Fields(line)
		switch depth {
		case 0:
			if len(cols) != namespaces {
				return types.SymbolTable{}, parseError("tsrg2", lineNo, line)
			}
			table.Classes = append(table.Classes, types.SymbolClass{From: cols[0], To: cols[1]})
			current = &table.Classes[len(table.Classes)-1]
		case 1:
			if current == nil {
				return types.SymbolTable{}, parseError("tsrg2", lineNo, line)
			}
			switch {
			case len(cols) == namespaces+1 && strings.HasPrefix(cols[1], "("):
				current.Methods = append(current.Methods, types.SymbolMember{From: cols[0], Descriptor: cols[1], To: cols[2]})
			case len(cols) == namespaces+1:
				current.Fields = append(current.Fields, types.SymbolMember{From: cols[0], Descriptor: cols[1], To: cols[2]})
			case len(cols) == namespaces:
				current.Fields = append(current.Fields, types.SymbolMember{From: cols[0], To: cols[1]})
			default:
				return types.SymbolTable{}, parseError("tsrg2", lineNo, line)
			}
		default:
			// parameters and static markers
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("tsrg2", err)
	}
	return table, nil
}

func parseSRG(scanner *bufio.Scanner) (types.SymbolTable, error) {
	table := types.SymbolTable{System: types.NamingSearge}
	positions := map[string]int{}
	class := func(name string) *types.SymbolClass {
		pos, ok := positions[name]
		if !ok {
			pos = len(table.Classes)
			positions[name] = pos
			table.Classes = append(table.Classes, types.SymbolClass{From: name})
		}
		return &table.Classes[pos]
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		switch cols[0] {
		case "PK:":
		case "CL:":
			if len(cols) != 3 {
				return types.SymbolTable{}, parseError("srg", lineNo, line)
			}
			class(cols[1]).To = cols[2]
		case "FD:":
			if len(cols) != 3 {
				return types.SymbolTable{}, parseError("srg", lineNo, line)
			}
			owner, name, ok := splitOwner(cols[1])
			_, mapped, ok2 := splitOwner(cols[2])
			if !ok || !ok2 {
				return types.SymbolTable{}, parseError("srg", lineNo, line)
			}
			target := class(owner)
			target.Fields = append(target.Fields, types.SymbolMember{From: name, To: mapped})
		case "MD:":
			if len(cols) != 5 {
				return types.SymbolTable{}, parseError("srg", lineNo, line)
			}
			owner, name, ok := splitOwner(cols[1])
			_, mapped, ok2 := splitOwner(cols[3])
			if !ok || !ok2 {
				return types.SymbolTable{}, parseError("srg", lineNo, line)
			}
			target := class(owner)
			target.Methods = append(target.Methods, types.SymbolMember{From: name, Descriptor: cols[2], To: mapped})
		default:
			return types.SymbolTable{}, parseError("srg", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("srg", err)
	}
	return table, nil
}

func splitOwner(value string) (string, string, bool) {
	idx := strings.LastIndexByte(value, '/')
	if idx <= 0 || idx == len(value)-1 {
		return "", "", false
	}
	return value[:idx], value[idx+1:], true
}

var seargeArchiveEntries = []string{"config/joined.tsrg", "joined.tsrg", "joined.srg"}

// ParseSeargeArchive reads the joined mapping from an mcp_config or
// legacy mcp srg archive.
func ParseSeargeArchive(data []byte) (types.SymbolTable, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return types.SymbolTable{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open searge archive").
			WithCause(err)
	}
	entries := map[string]*zip.File{}
	for _, file := range archive.File {
		entries[path.Clean(file.Name)] = file
	}
	for _, name := range seargeArchiveEntries {
		file, ok := entries[name]
		if !ok {
			continue
		}
		handle, err := file.Open()
		if err != nil {
			return types.SymbolTable{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to open searge archive entry").
				WithCause(err)
		}
		table, err := ParseSearge(handle)
		_ = handle.Close()
		return table, err
	}
	return types.SymbolTable{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("searge archive has no joined mapping")
}
