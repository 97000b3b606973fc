package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"tinyprotocol/internal/core"
	"tinyprotocol/internal/types"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	spec, err := s.loadSpec(req.SpecPath)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := core.NewSpecCompiler().ValidateSpec(ctx, spec); err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Name:     spec.Metadata.Name,
		Versions: len(spec.Versions),
		Classes:  len(spec.Classes),
		Globs:    len(spec.ClassGlobs),
	}, nil
}

func (s Service) loadSpec(path string) (types.ProjectSpec, error) {
	specPath := strings.TrimSpace(path)
	if specPath == "" {
		return types.ProjectSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project spec path is required")
	}
	return s.SpecLoader.LoadProject(specPath)
}
