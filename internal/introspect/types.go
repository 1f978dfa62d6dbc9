package introspect

import (
	"errors"
	"fmt"

	"tabular-mapper/internal/common"
	"tabular-mapper/primitive"
)

var (
	// ErrNotRecord is returned when a value has no enumerable properties.
	ErrNotRecord = errors.New("value is not a record")
	// ErrNoAccessor is returned when a record has no property for an accessor.
	ErrNoAccessor = errors.New("no such accessor")
)

// CategoryEnum is the value category of a property.
type CategoryEnum int

const (
	CategoryUnknown    CategoryEnum = iota // declared as an interface or unsupported, resolved from the runtime value
	CategoryNull                           // nil value, shape unknown
	CategoryScalar                         // primitive.KindEnum carries the kind
	CategoryRecord                         // nested record with its own properties
	CategoryCollection                     // ordered collection of records or scalars
)

// String returns a human-readable representation of the CategoryEnum.
func (c CategoryEnum) String() string {
	switch c {
	case CategoryNull:
		return "null"
	case CategoryScalar:
		return "scalar"
	case CategoryRecord:
		return "record"
	case CategoryCollection:
		return "collection"
	default:
		return common.UnknownStr
	}
}

// Property describes one named property of a record.
type Property struct {
	Name     string             // Column segment, e.g. "customerRef"
	Accessor string             // Retrieval key passed to Invoke, e.g. "CustomerRef"
	Kind     primitive.KindEnum // Declared scalar kind, 0 when the declared type is not a scalar
	Category CategoryEnum       // Declared category, CategoryUnknown when only the value can tell
	Ordinal  int                // Declaration position, equal for properties with no natural order
}

// Introspector gives the schema engine access to records of any shape.
// Implementations must be safe for concurrent use once schema construction is done.
type Introspector interface {
	// Properties enumerates the properties of a record in a stable order.
	Properties(record any) ([]Property, error)
	// Invoke reads one property. A missing or unreadable property yields an *AccessError.
	Invoke(record any, accessor string) (any, error)
	// Elements returns the elements of a collection value.
	Elements(value any) ([]any, bool)
	// Classify resolves the category and scalar kind of a runtime value.
	Classify(value any) (CategoryEnum, primitive.KindEnum)
}

// Record is implemented by record types that describe their own properties
// instead of relying on reflection.
type Record interface {
	Properties() []Property
	Property(accessor string) (any, error)
}

// AccessError reports a property that could not be read.
type AccessError struct {
	Accessor string
	Type     string
	Err      error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot read %s on %s: %v", e.Accessor, e.Type, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
