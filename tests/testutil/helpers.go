// Package testutil provides shared test helpers used across integration
// and e2e test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root, two levels
// up from the test package directory.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// Fixture returns the absolute path of a file under fixtures/.
func Fixture(t *testing.T, parts ...string) string {
	t.Helper()
	return filepath.Join(append([]string{RepoRoot(t), "fixtures"}, parts...)...)
}

// FixtureMappingFiles lists every mapping file under fixtures/mappings as
// paths relative to that directory.
func FixtureMappingFiles(t *testing.T) []string {
	t.Helper()
	root := Fixture(t, "mappings")
	var files []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files
}

// WriteSpec writes a project spec into a temporary directory and returns
// its path.
func WriteSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinyprotocol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
