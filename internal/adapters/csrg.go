package adapters

import (
	"io"
	"strings"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// ParseCSRG reads the Spigot class mapping and, when present, the member
// mapping. Member lines name their owner and descriptor in Spigot names;
// both are translated back to obfuscated names through the class table.
func ParseCSRG(classes io.Reader, members io.Reader) (types.SymbolTable, error) {
	table := types.SymbolTable{System: types.NamingSpigot}
	positions := map[string]int{}
	toObfuscated := map[string]string{}
	scanner := newLineScanner(classes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != 2 {
			return types.SymbolTable{}, parseError("csrg", lineNo, line)
		}
		if _, ok := positions[cols[0]]; ok {
			continue
		}
		positions[cols[0]] = len(table.Classes)
		toObfuscated[cols[1]] = cols[0]
		table.Classes = append(table.Classes, types.SymbolClass{From: cols[0], To: cols[1]})
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("csrg", err)
	}
	if members == nil {
		return table, nil
	}

	obfuscate := func(name string) string {
		if original, ok := toObfuscated[name]; ok {
			return original
		}
		return name
	}
	owner := func(name string) *types.SymbolClass {
		original := obfuscate(name)
		pos, ok := positions[original]
		if !ok {
			pos = len(table.Classes)
			positions[original] = pos
			table.Classes = append(table.Classes, types.SymbolClass{From: original})
		}
		return &table.Classes[pos]
	}
	scanner = newLineScanner(members)
	lineNo = 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		switch len(cols) {
		case 3:
			target := owner(cols[0])
			target.Fields = append(target.Fields, types.SymbolMember{From: cols[1], To: cols[2]})
		case 4:
			target := owner(cols[0])
			target.Methods = append(target.Methods, types.SymbolMember{
				From:       cols[1],
				To:         cols[3],
				Descriptor: shared.MapDescriptorClasses(cols[2], obfuscate),
			})
		default:
			return types.SymbolTable{}, parseError("csrg", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("csrg", err)
	}
	return table, nil
}
