package primitive

import (
	"encoding/json"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum is the scalar kind of a column or schema leaf.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, it marks a type that is not a scalar

	KindByte
	KindShort
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBool
	KindDate
	KindTimestamp
	KindEnumString // named integer or string type, materialized as its string form
	KindBinary     // raw bytes, and the placeholder kind for shapes nothing could classify

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// IsNumber reports whether the kind holds a numeric value.
func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindByte, KindShort, KindInt32, KindInt64,
		KindFloat32, KindFloat64, KindDecimal:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindByte, KindShort, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

// IsTemporal reports whether the kind is materialized as epoch milliseconds.
func (k KindEnum) IsTemporal() bool {
	return k == KindDate || k == KindTimestamp
}

// Bits returns the width of an integer or floating-point kind.
func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only fixed width numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindByte:
		return 8
	case KindShort:
		return 16
	case KindInt32, KindFloat32:
		return 32
	case KindInt64, KindFloat64:
		return 64
	}
}

// TypeName returns the table type name of the kind, as used in exported schemas.
func (k KindEnum) TypeName() string {
	switch k {
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt32:
		return "integer"
	case KindInt64:
		return "long"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindEnumString:
		return "enum"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	decimalType  = reflect.TypeFor[decimal.Decimal]()
	bigIntType   = reflect.TypeFor[big.Int]()
	bigFloatType = reflect.TypeFor[big.Float]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
	numberType   = reflect.TypeFor[json.Number]()
	bytesType    = reflect.TypeFor[[]byte]()
)

// FromReflectType maps a declared Go type to its scalar kind.
// Pointers are dereferenced. A zero result means the type is not a scalar:
// structs, maps, slices, arrays and interfaces are classified by the caller.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	for rtype.Kind() == reflect.Ptr {
		rtype = rtype.Elem()
	}

	// check if true primitive type
	switch rtype {
	case reflect.TypeOf(int8(0)):
		return KindByte
	case reflect.TypeOf(int16(0)), reflect.TypeOf(uint8(0)):
		return KindShort
	case reflect.TypeOf(int32(0)), reflect.TypeOf(uint16(0)):
		return KindInt32
	case reflect.TypeOf(int(0)), reflect.TypeOf(int64(0)), reflect.TypeOf(uint32(0)), durationType:
		return KindInt64
	case reflect.TypeOf(uint(0)), reflect.TypeOf(uint64(0)), reflect.TypeOf(uintptr(0)):
		return KindDecimal
	case reflect.TypeOf(float32(0)):
		return KindFloat32
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	case reflect.TypeOf(false):
		return KindBool
	case reflect.TypeOf(""):
		return KindString
	case timeType:
		return KindTimestamp
	case decimalType, bigIntType, bigFloatType:
		return KindDecimal
	case uuidType:
		return KindString
	case bytesType:
		return KindBinary
	case numberType:
		// the concrete kind depends on the literal, see FromValue
		return KindFloat64
	}

	// check if it's a primitive enum type
	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return KindEnumString
	case reflect.Bool:
		return KindBool
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	}
}

// FromValue maps a runtime value to its scalar kind. It refines FromReflectType
// for values whose kind depends on content, such as JSON number literals.
func FromValue(value any) KindEnum {
	if n, ok := value.(json.Number); ok {
		if _, err := n.Int64(); err == nil {
			return KindInt64
		}

		return KindFloat64
	}

	if value == nil {
		return 0
	}

	return FromReflectType(reflect.TypeOf(value))
}
