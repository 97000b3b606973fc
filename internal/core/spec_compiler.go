package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"tinyprotocol/internal/policies"
	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

type SpecCompiler struct{}

// CompiledSpec is a validated project spec turned into the registry and
// policies a resolution run needs.
type CompiledSpec struct {
	Registry *VersionRegistry
	Keys     policies.KeyPolicy
	Load     policies.LoadPolicy
	Runtime  policies.RuntimeNamePolicy
	Pivot    string
}

func NewSpecCompiler() SpecCompiler {
	return SpecCompiler{}
}

func (c SpecCompiler) ValidateSpec(ctx context.Context, spec types.ProjectSpec) error {
	if strings.TrimSpace(spec.Metadata.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("metadata.name must be set")
	}
	assert.NotEmpty(ctx, spec.Metadata.Name, "metadata.name must be set")
	if len(spec.Versions) == 0 {
		return shared.InvalidConfiguration("versions must not be empty")
	}
	declared := map[string]struct{}{}
	for _, version := range spec.Versions {
		id := strings.TrimSpace(version.ID)
		if id == "" {
			return shared.InvalidConfiguration("versions.id must not be empty")
		}
		if _, ok := declared[id]; ok {
			return shared.InvalidConfiguration(fmt.Sprintf("version %s declared twice", id))
		}
		declared[id] = struct{}{}
		if version.Protocol != nil && *version.Protocol < 0 {
			return shared.InvalidConfiguration(fmt.Sprintf("protocol ordinal for %s must be >= 0, got %d", id, *version.Protocol))
		}
	}
	if spec.Pivot != "" {
		if _, ok := declared[spec.Pivot]; !ok {
			return shared.InvalidConfiguration(fmt.Sprintf("pivot %s is not a declared version", spec.Pivot))
		}
	}
	if _, err := policies.NewKeyPolicy(spec.ComparisonKeys); err != nil {
		return err
	}
	if _, err := policies.NewRuntimeNamePolicy(spec.RuntimeName); err != nil {
		return err
	}
	if _, err := policies.NewLoadPolicy(spec.Load); err != nil {
		return err
	}
	if spec.Load.Workers < 0 {
		return shared.InvalidConfiguration("load.workers must not be negative")
	}
	if len(spec.Classes) == 0 && len(spec.ClassGlobs) == 0 {
		return shared.InvalidConfiguration("classes or class_globs must not be empty")
	}
	names := map[string]struct{}{}
	for _, class := range spec.Classes {
		if err := validateClass(class); err != nil {
			return err
		}
		if _, ok := names[class.Name]; ok {
			return shared.InvalidConfiguration(fmt.Sprintf("class %s declared twice", class.Name))
		}
		names[class.Name] = struct{}{}
	}
	for _, pattern := range spec.ClassGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return shared.InvalidConfiguration(fmt.Sprintf("invalid class glob: %s", pattern))
		}
	}
	log.Ctx(ctx).Debug().Str("spec", spec.Metadata.Name).Int("versions", len(spec.Versions)).Msg("spec validated")
	return nil
}

func validateClass(class types.ClassSpec) error {
	if strings.TrimSpace(class.Name) == "" {
		return shared.InvalidConfiguration("classes.name must not be empty")
	}
	for _, alias := range class.Aliases {
		if strings.TrimSpace(alias) == "" {
			return shared.InvalidConfiguration(fmt.Sprintf("class %s has an empty alias", class.Name))
		}
	}
	ids := map[string]struct{}{}
	for _, member := range class.Members {
		if strings.TrimSpace(member.ID) == "" {
			return shared.InvalidConfiguration(fmt.Sprintf("class %s has a member without id", class.Name))
		}
		if _, ok := ids[member.ID]; ok {
			return shared.InvalidConfiguration(fmt.Sprintf("class %s declares member %s twice", class.Name, member.ID))
		}
		ids[member.ID] = struct{}{}
		if member.Kind != types.MemberKindField && member.Kind != types.MemberKindMethod {
			return shared.InvalidConfiguration(fmt.Sprintf("member %s.%s has invalid kind %q", class.Name, member.ID, member.Kind))
		}
		if len(member.Candidates) == 0 {
			return shared.InvalidConfiguration(fmt.Sprintf("member %s.%s has no candidates", class.Name, member.ID))
		}
		for _, candidate := range member.Candidates {
			if strings.TrimSpace(candidate.Name) == "" {
				return shared.InvalidConfiguration(fmt.Sprintf("member %s.%s has a candidate without name", class.Name, member.ID))
			}
			if candidate.Descriptor != "" && !shared.ValidDescriptor(candidate.Descriptor) {
				return shared.InvalidConfiguration(fmt.Sprintf("member %s.%s has malformed descriptor %s", class.Name, member.ID, candidate.Descriptor))
			}
		}
	}
	return nil
}

// Compile validates spec and builds its version registry and policies.
// Versions without a protocol are registered unresolved.
func (c SpecCompiler) Compile(ctx context.Context, spec types.ProjectSpec) (CompiledSpec, error) {
	if err := c.ValidateSpec(ctx, spec); err != nil {
		return CompiledSpec{}, err
	}
	registry := NewVersionRegistry()
	for _, version := range spec.Versions {
		var err error
		if version.Protocol == nil {
			err = registry.RegisterUnresolved(version.ID)
		} else {
			err = registry.Register(version.ID, *version.Protocol)
		}
		if err != nil {
			return CompiledSpec{}, err
		}
	}
	keys, err := policies.NewKeyPolicy(spec.ComparisonKeys)
	if err != nil {
		return CompiledSpec{}, err
	}
	load, err := policies.NewLoadPolicy(spec.Load)
	if err != nil {
		return CompiledSpec{}, err
	}
	runtime, err := policies.NewRuntimeNamePolicy(spec.RuntimeName)
	if err != nil {
		return CompiledSpec{}, err
	}
	pivot := spec.Pivot
	if pivot == "" {
		pivot = spec.Versions[len(spec.Versions)-1].ID
	}
	return CompiledSpec{
		Registry: registry,
		Keys:     keys,
		Load:     load,
		Runtime:  runtime,
		Pivot:    strings.TrimSpace(pivot),
	}, nil
}
