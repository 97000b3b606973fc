package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind classifies failures raised by the mapping pipeline.
type ErrorKind string

const (
	KindUnknown              ErrorKind = ""
	KindInvalidConfiguration ErrorKind = "invalid-configuration"
	KindUnresolvableVersion  ErrorKind = "unresolvable-version"
	KindMappingUnavailable   ErrorKind = "mapping-unavailable"
	KindUnmappedEntity       ErrorKind = "unmapped-entity"
	KindConflictingAncestry  ErrorKind = "conflicting-ancestry"
)

const (
	unresolvableVersionPrefix = "unresolvable version: "
	mappingUnavailablePrefix  = "mapping unavailable: "
	unmappedEntityPrefix      = "unmapped entity: "
	conflictingAncestryPrefix = "conflicting ancestry: "
)

func InvalidConfiguration(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

func UnresolvableVersion(versionID string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(unresolvableVersionPrefix + versionID)
}

// MappingUnavailable reports that one naming system could not be fetched,
// parsed or validated for one version.
func MappingUnavailable(versionID string, system string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%sversion=%s system=%s", mappingUnavailablePrefix, versionID, system))
	if cause != nil {
		return builder.WithCause(cause)
	}
	return builder
}

func UnmappedEntity(name string, suggestions []string) error {
	msg := unmappedEntityPrefix + name
	if len(suggestions) > 0 {
		msg = fmt.Sprintf("%s (did you mean %s?)", msg, strings.Join(suggestions, ", "))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg)
}

func ConflictingAncestry(detail string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(conflictingAncestryPrefix + detail)
}

// KindOf recovers the taxonomy kind from an error built by this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	message := ErrorMessage(err)
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return KindInvalidConfiguration
	case errbuilder.CodeFailedPrecondition:
		if strings.HasPrefix(message, conflictingAncestryPrefix) {
			return KindConflictingAncestry
		}
		if strings.HasPrefix(message, unresolvableVersionPrefix) {
			return KindUnresolvableVersion
		}
	case errbuilder.CodeInternal:
		if strings.HasPrefix(message, mappingUnavailablePrefix) {
			return KindMappingUnavailable
		}
	case errbuilder.CodeNotFound:
		if strings.HasPrefix(message, unmappedEntityPrefix) {
			return KindUnmappedEntity
		}
	}
	return KindUnknown
}

// ErrorMessage returns the builder message of err when present, falling
// back to err.Error().
func ErrorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
