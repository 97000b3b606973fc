package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"tinyprotocol/internal/ports"
	"tinyprotocol/internal/types"
)

// OutputFileAdapter writes YAML artifacts relative to Dir. Absolute paths
// are used as given.
type OutputFileAdapter struct {
	Dir string
}

func NewOutputFileAdapter(dir string) OutputFileAdapter {
	return OutputFileAdapter{Dir: dir}
}

func (a OutputFileAdapter) WriteTable(path string, table types.MappingTable) error {
	return a.writeYAML(path, table, "mapping table")
}

func (a OutputFileAdapter) WriteLoadReport(path string, report types.LoadReport) error {
	return a.writeYAML(path, report, "load report")
}

func (a OutputFileAdapter) writeYAML(path string, value any, what string) error {
	target, err := a.ensurePath(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal " + what).
			WithCause(err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + what).
			WithCause(err)
	}
	return nil
}

func (a OutputFileAdapter) ensurePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	target := path
	if !filepath.IsAbs(target) && a.Dir != "" {
		target = filepath.Join(a.Dir, target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return target, nil
}

var _ ports.TableWriterPort = OutputFileAdapter{}
