package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

// ReobfOutputAdapter writes the compact mapping strings as a properties
// file, one "<name>=<mapping>" line per class and member, the payload
// generated reflective accessors embed.
type ReobfOutputAdapter struct {
	Dir string
}

func NewReobfOutputAdapter(dir string) ReobfOutputAdapter {
	return ReobfOutputAdapter{Dir: dir}
}

func (a ReobfOutputAdapter) WriteProperties(path string, table types.MappingTable) error {
	var lines []string
	for _, class := range table.Classes {
		lines = append(lines, propertyLine(class.Name, class.Mappings))
		for _, field := range class.Fields {
			lines = append(lines, propertyLine(class.Name+"#"+field.Name, field.Mappings))
		}
		for _, method := range class.Methods {
			lines = append(lines, propertyLine(class.Name+"#"+method.Name+method.Descriptor, method.Mappings))
		}
	}
	sort.Strings(lines)

	target := path
	if !filepath.IsAbs(target) && a.Dir != "" {
		target = filepath.Join(a.Dir, target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write reobfuscation properties").
			WithCause(err)
	}
	return nil
}

func propertyLine(key string, value string) string {
	escaped := strings.NewReplacer(":", "\\:", "=", "\\=", " ", "\\ ").Replace(key)
	return fmt.Sprintf("%s=%s", escaped, value)
}

var _ ports.ReobfWriterPort = ReobfOutputAdapter{}
