package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/types"
)

var (
	spigotOnly    = []types.NamingSystem{types.NamingSpigot}
	mojangSpigot  = []types.NamingSystem{types.NamingMojang, types.NamingSpigot}
	sampleVersion = []string{"1.16.5", "1.17", "1.17.1"}
)

func buildFile(t *testing.T, version string, systems []types.NamingSystem, classes ...types.ClassMapping) types.MappingFile {
	t.Helper()
	file, err := types.NewMappingFile(version, systems, classes)
	require.NoError(t, err)
	return file
}

// aliases builds a name map from system, alias pairs.
func aliases(pairs ...string) map[types.NamingSystem]string {
	out := map[types.NamingSystem]string{}
	for i := 0; i+1 < len(pairs); i += 2 {
		out[types.NamingSystem(pairs[i])] = pairs[i+1]
	}
	return out
}

func classOf(original string, names map[types.NamingSystem]string) types.ClassMapping {
	return types.ClassMapping{Original: original, Names: names}
}

func memberOf(original string, desc string, names map[types.NamingSystem]string) types.MemberMapping {
	return types.MemberMapping{Original: original, Descriptor: desc, Names: names}
}
