package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/types"
)

const (
	ActionAbort   = "abort"
	ActionDegrade = "degrade"
)

// LoadPolicy decides what happens when a naming system cannot be loaded
// for a version.
type LoadPolicy struct {
	Mode     types.LoadMode
	Systems  []types.NamingSystem
	Required map[types.NamingSystem]struct{}
}

func DefaultLoadPolicy() LoadPolicy {
	return LoadPolicy{
		Mode:     types.LoadModeDegrade,
		Systems:  types.NamingSystems(),
		Required: map[types.NamingSystem]struct{}{},
	}
}

func NewLoadPolicy(spec types.LoadSpec) (LoadPolicy, error) {
	policy := DefaultLoadPolicy()
	switch spec.Mode {
	case "":
	case types.LoadModeStrict, types.LoadModeDegrade:
		policy.Mode = spec.Mode
	default:
		return LoadPolicy{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown load mode: %s", spec.Mode))
	}
	if len(spec.Systems) > 0 {
		systems, err := parseSystems(spec.Systems)
		if err != nil {
			return LoadPolicy{}, err
		}
		policy.Systems = systems
	}
	required, err := parseSystems(spec.RequiredSystems)
	if err != nil {
		return LoadPolicy{}, err
	}
	for _, system := range required {
		if !containsSystem(policy.Systems, system) {
			return LoadPolicy{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("required system %s is not loaded", system))
		}
		policy.Required[system] = struct{}{}
	}
	return policy, nil
}

func (p LoadPolicy) IsRequired(system types.NamingSystem) bool {
	_, ok := p.Required[system]
	return ok
}

// Decide maps a failed or absent system to an action. Strict mode aborts
// on every failure; degrade mode aborts only for required systems.
func (p LoadPolicy) Decide(system types.NamingSystem, failed bool) string {
	if p.IsRequired(system) {
		return ActionAbort
	}
	if failed && p.Mode == types.LoadModeStrict {
		return ActionAbort
	}
	return ActionDegrade
}

func parseSystems(values []string) ([]types.NamingSystem, error) {
	out := make([]types.NamingSystem, 0, len(values))
	for _, value := range values {
		system, ok := types.ParseNamingSystem(strings.ToLower(strings.TrimSpace(value)))
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown naming system: %s", value))
		}
		if !containsSystem(out, system) {
			out = append(out, system)
		}
	}
	return out, nil
}

func containsSystem(systems []types.NamingSystem, system types.NamingSystem) bool {
	for _, candidate := range systems {
		if candidate == system {
			return true
		}
	}
	return false
}
