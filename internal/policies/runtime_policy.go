package policies

import (
	"tinyprotocol/internal/types"
)

// RuntimeNamePolicy picks the name a symbol carries at runtime: the alias
// of the configured system when present, else the obfuscated name.
type RuntimeNamePolicy struct {
	System types.NamingSystem
}

func DefaultRuntimeNamePolicy() RuntimeNamePolicy {
	return RuntimeNamePolicy{System: types.NamingSpigot}
}

// NewRuntimeNamePolicy accepts a naming system or "obfuscated".
func NewRuntimeNamePolicy(value string) (RuntimeNamePolicy, error) {
	if value == "" {
		return DefaultRuntimeNamePolicy(), nil
	}
	if types.ComparisonKey(value) == types.ComparisonKeyObfuscated {
		return RuntimeNamePolicy{}, nil
	}
	systems, err := parseSystems([]string{value})
	if err != nil {
		return RuntimeNamePolicy{}, err
	}
	return RuntimeNamePolicy{System: systems[0]}, nil
}

func (p RuntimeNamePolicy) RuntimeName(names map[types.NamingSystem]string, original string) string {
	if p.System == "" {
		return original
	}
	if alias := names[p.System]; alias != "" {
		return alias
	}
	return original
}
