package schema

import (
	"errors"
	"fmt"

	"tabular-mapper/internal/diagnostic"
)

var (
	// ErrSchemaConflict is matched by every *ConflictError.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrFlattenMismatch is returned when a flattened node is merged with one that is not.
	ErrFlattenMismatch = errors.New("flattened flags disagree")
)

// ConflictError reports two samples that disagree on the shape of a field.
type ConflictError struct {
	Path  string // column path of the field, e.g. "addr_city"
	Left  string // shape seen first in the fold
	Right string // shape it was merged with

	// Record labels the sampled record that introduced the conflict, e.g. "#3".
	// Diagnostics holds everything collected up to and including the conflict.
	// Both are set by InferAll only.
	Record      string
	Diagnostics diagnostic.Diagnostics
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema conflict at %q: %s vs %s", e.Path, e.Left, e.Right)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSchemaConflict
}

// describe names the shape of a node in conflict messages.
func describe(n *Node) string {
	var s string

	switch n.Shape {
	case ShapeScalar:
		s = "scalar " + n.Kind.TypeName()
	case ShapeStruct:
		s = "struct"
	default:
		s = "null"
	}

	if n.Repeated {
		return "array of " + s
	}

	return s
}
