package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"validate", "versions", "prepare", "resolve", "inspect"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestSourceCommandFlags(t *testing.T) {
	sourceFlags := []string{"spec", "mappings-dir", "work-dir", "protocol-index", "cache-dir", "no-cache", "workers"}
	tests := []struct {
		name  string
		cmd   *cobra.Command
		extra []string
	}{
		{name: "versions", cmd: newVersionsCommand()},
		{name: "prepare", cmd: newPrepareCommand(), extra: []string{"report"}},
		{name: "resolve", cmd: newResolveCommand(), extra: []string{"output", "reobf-properties", "allow-unmapped"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range append(append([]string(nil), sourceFlags...), tt.extra...) {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "missing flag: %s", name)
			}
		})
	}
}

func TestValidateAndInspectFlags(t *testing.T) {
	validate := newValidateCommand()
	assert.NotNil(t, validate.Flags().Lookup("spec"))
	assert.Nil(t, validate.Flags().Lookup("mappings-dir"))

	inspect := newInspectCommand()
	for _, name := range []string{"table", "class", "protocol"} {
		assert.NotNil(t, inspect.Flags().Lookup(name), "missing flag: %s", name)
	}
	assert.Equal(t, "-1", inspect.Flags().Lookup("protocol").DefValue)
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "tinyprotocol_test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStringPrefersChangedFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var value string
	cmd.Flags().StringVar(&value, "test-flag", "default", "test flag")
	assert.Equal(t, "default", resolveString(cmd, value, "tinyprotocol_unset_key", "test-flag"))

	require.NoError(t, cmd.Flags().Set("test-flag", "explicit"))
	assert.Equal(t, "explicit", resolveString(cmd, value, "tinyprotocol_unset_key", "test-flag"))
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestResolveInt(t *testing.T) {
	assert.Equal(t, 42, resolveInt(nil, 42, "test_key", "test-flag"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")

	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestSourceOverridesFromFlags(t *testing.T) {
	opts := sourceOptions{}
	cmd := &cobra.Command{Use: "test"}
	bindSourceFlags(cmd, &opts)
	require.NoError(t, cmd.Flags().Set("mappings-dir", "fixtures/mappings"))
	require.NoError(t, cmd.Flags().Set("no-cache", "true"))
	require.NoError(t, cmd.Flags().Set("workers", "3"))

	overrides := opts.overrides(cmd)
	assert.Equal(t, "fixtures/mappings", overrides.MappingsDir)
	assert.True(t, overrides.NoCache)
	assert.Equal(t, 3, overrides.Workers)
}

func TestDegradedSuffix(t *testing.T) {
	assert.Empty(t, degradedSuffix(types.VersionReport{Version: "1.17.1"}))

	absent := types.VersionReport{Version: "1.16.5", Absent: []types.NamingSystem{types.NamingIntermediary}}
	assert.Equal(t, " (absent: intermediary)", degradedSuffix(absent))

	absent.Degraded = true
	absent.Failures = []string{"spigot: connection reset"}
	assert.Equal(t, " (absent: intermediary; 1 dropped)", degradedSuffix(absent))
}

func TestFormatBounds(t *testing.T) {
	low, high := 754, 756
	assert.Equal(t, "*..*", formatBounds(nil, nil))
	assert.Equal(t, "754..*", formatBounds(&low, nil))
	assert.Equal(t, "754..756", formatBounds(&low, &high))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "invalid configuration", err: shared.InvalidConfiguration("pivot is not a declared version"), expected: 2},
		{name: "already exists", err: errbuilder.New().WithCode(errbuilder.CodeAlreadyExists).WithMsg("dup"), expected: 2},
		{name: "conflicting ancestry", err: shared.ConflictingAncestry("a and b overlap at 1.17"), expected: 3},
		{name: "unresolvable version", err: shared.UnresolvableVersion("1.17.1"), expected: 4},
		{name: "unmapped entity", err: shared.UnmappedEntity("Entity", nil), expected: 5},
		{name: "mapping unavailable", err: shared.MappingUnavailable("1.17", "mojang", errors.New("timeout")), expected: 5},
		{name: "unknown error", err: assert.AnError, expected: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "unresolvable version: 1.17.1", errorMessage(shared.UnresolvableVersion("1.17.1")))
	assert.Equal(t, assert.AnError.Error(), errorMessage(assert.AnError))
}

// ---------- Command execution tests ----------

func fixture(parts ...string) string {
	return filepath.Join(append([]string{"..", "..", "fixtures"}, parts...)...)
}

func runRoot(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCommand()
	root.SetArgs(args)
	root.SetContext(t.Context())
	return root.Execute()
}

func TestValidateCommand(t *testing.T) {
	require.NoError(t, runRoot(t, "validate", "--spec", fixture("project.yaml"), "--log-level", "error"))

	err := runRoot(t, "validate", "--spec", fixture("missing.yaml"), "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, "spec file not found", errorMessage(err))
	assert.Equal(t, 5, exitCodeForError(err))
}

func TestVersionsCommand(t *testing.T) {
	require.NoError(t, runRoot(t, "versions",
		"--spec", fixture("project-unresolved.yaml"),
		"--protocol-index", fixture("protocol-index.json"),
		"--log-level", "error",
	))
}

func TestVersionsCommandUnresolvable(t *testing.T) {
	index := filepath.Join(t.TempDir(), "protocol-index.json")
	require.NoError(t, os.WriteFile(index, []byte(`[
  {"minecraftVersion": "1.17", "version": 755},
  {"minecraftVersion": "1.16.5", "version": 754}
]`), 0o644))

	err := runRoot(t, "versions",
		"--spec", fixture("project-unresolved.yaml"),
		"--protocol-index", index,
		"--log-level", "error",
	)
	require.Error(t, err)
	assert.Equal(t, "unresolvable version: 1.17.1", errorMessage(err))
	assert.Equal(t, 4, exitCodeForError(err))
}

func TestResolveAndInspectCommands(t *testing.T) {
	out := t.TempDir()
	table := filepath.Join(out, "mappings.yaml")
	reobf := filepath.Join(out, "reobf.properties")

	require.NoError(t, runRoot(t, "resolve",
		"--spec", fixture("project.yaml"),
		"--mappings-dir", fixture("mappings"),
		"--output", table,
		"--reobf-properties", reobf,
		"--log-level", "error",
	))
	assert.FileExists(t, table)
	assert.FileExists(t, reobf)

	require.NoError(t, runRoot(t, "inspect",
		"--table", table,
		"--class", "net.minecraft.world.entity.Entity",
		"--protocol", "755",
		"--log-level", "error",
	))

	err := runRoot(t, "inspect", "--table", filepath.Join(out, "absent.yaml"), "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, 5, exitCodeForError(err))
}
