package adapters

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

const maxMappingLine = 1024 * 1024

func newLineScanner(reader io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMappingLine)
	return scanner
}

func parseError(format string, line int, text string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed %s mapping at line %d", format, line)).
		WithCause(fmt.Errorf("%q", text))
}

func scanError(format string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to read %s mapping", format)).
		WithCause(err)
}

// ParseProGuard reads a Mojang ProGuard mapping. The resulting table maps
// Mojang names to obfuscated names and is marked inverted; member
// descriptors are written in Mojang names.
func ParseProGuard(reader io.Reader) (types.SymbolTable, error) {
	table := types.SymbolTable{System: types.NamingMojang, Inverted: true}
	scanner := newLineScanner(reader)
	var current *types.SymbolClass
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		left, right, ok := strings.Cut(line, " -> ")
		if !ok {
			return types.SymbolTable{}, parseError("proguard", lineNo, raw)
		}
		if raw[0] != ' ' && raw[0] != '\t' {
			if !strings.HasSuffix(right, ":") {
				return types.SymbolTable{}, parseError("proguard", lineNo, raw)
			}
			table.Classes = append(table.Classes, types.SymbolClass{
				From: shared.NormalizeClassName(left),
				To:   shared.NormalizeClassName(strings.TrimSuffix(right, ":")),
			})
			current = &table.Classes[len(table.Classes)-1]
			continue
		}
		if current == nil {
			return types.SymbolTable{}, parseError("proguard", lineNo, raw)
		}
		member, isMethod, ok := parseProGuardMember(left, right)
		if !ok {
			return types.SymbolTable{}, parseError("proguard", lineNo, raw)
		}
		if isMethod {
			current.Methods = append(current.Methods, member)
		} else {
			current.Fields = append(current.Fields, member)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.SymbolTable{}, scanError("proguard", err)
	}
	return table, nil
}

// parseProGuardMember handles "type name", "a:b:type name(args)" and the
// inlined "a:b:type name(args):c:d" forms.
func parseProGuardMember(left string, obfuscated string) (types.SymbolMember, bool, bool) {
	left = stripLineNumbers(left)
	javaType, rest, ok := strings.Cut(left, " ")
	if !ok || obfuscated == "" {
		return types.SymbolMember{}, false, false
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return types.SymbolMember{
			From:       rest,
			To:         obfuscated,
			Descriptor: shared.JavaTypeDescriptor(javaType),
		}, false, true
	}
	closing := strings.IndexByte(rest, ')')
	if closing < open {
		return types.SymbolMember{}, false, false
	}
	var params []string
	if args := rest[open+1 : closing]; args != "" {
		params = strings.Split(args, ",")
	}
	return types.SymbolMember{
		From:       rest[:open],
		To:         obfuscated,
		Descriptor: shared.MethodDescriptor(params, javaType),
	}, true, true
}

func stripLineNumbers(value string) string {
	for i := 0; i < 2; i++ {
		head, tail, ok := strings.Cut(value, ":")
		if !ok || head == "" || strings.Trim(head, "0123456789") != "" {
			return value
		}
		value = tail
	}
	return value
}
