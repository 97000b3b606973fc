package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/types"
)

// KeyPolicy is the ordered list of comparison keys tried for each pair of
// adjacent versions. The first key available on both sides decides.
type KeyPolicy struct {
	keys []types.ComparisonKey
}

func DefaultKeyPolicy() KeyPolicy {
	return KeyPolicy{keys: []types.ComparisonKey{
		types.KeyForSystem(types.NamingSpigot),
		types.ComparisonKeyObfuscated,
		types.KeyForSystem(types.NamingMojang),
	}}
}

func NewKeyPolicy(values []string) (KeyPolicy, error) {
	if len(values) == 0 {
		return DefaultKeyPolicy(), nil
	}
	seen := map[types.ComparisonKey]struct{}{}
	policy := KeyPolicy{}
	for _, value := range values {
		key := types.ComparisonKey(strings.ToLower(strings.TrimSpace(value)))
		if !key.Valid() {
			return KeyPolicy{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown comparison key: %s", value))
		}
		if _, ok := seen[key]; ok {
			return KeyPolicy{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("duplicate comparison key: %s", value))
		}
		seen[key] = struct{}{}
		policy.keys = append(policy.keys, key)
	}
	return policy, nil
}

func (p KeyPolicy) ComparisonKeys() []types.ComparisonKey {
	return append([]types.ComparisonKey(nil), p.keys...)
}

func (p KeyPolicy) String() string {
	parts := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		parts = append(parts, string(key))
	}
	return strings.Join(parts, ",")
}
