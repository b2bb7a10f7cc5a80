package seed

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDefinition is returned when a template names an unknown definition.
	ErrMissingDefinition = errors.New("missing entity definition")
	// ErrInvalidFunc is returned for an unknown function falloff clamp policy.
	ErrInvalidFunc = errors.New("invalid falloff function")
	// ErrNoClasses is returned when a distribution has nothing to place.
	ErrNoClasses = errors.New("no placement classes")
	// ErrSchemaVersion is returned when restoring a snapshot of another layout.
	ErrSchemaVersion = errors.New("unsupported snapshot schema")
	// ErrNoSnapshot is returned by snapshot stores that hold nothing under a name.
	ErrNoSnapshot = errors.New("snapshot not found")
	// ErrDuplicate is returned when a distribution name is registered twice.
	ErrDuplicate = errors.New("duplicate distribution")
)

// Diagnostic records a setting that was out of range and has been corrected.
type Diagnostic struct {
	Template string
	Key      string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Template, d.Key, d.Message)
}

type diagnostics struct {
	template string
	list     []Diagnostic
}

func (d *diagnostics) warn(key, format string, args ...any) {
	d.list = append(d.list, Diagnostic{
		Template: d.template,
		Key:      key,
		Message:  fmt.Sprintf(format, args...),
	})
}
