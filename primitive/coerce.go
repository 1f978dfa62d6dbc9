package primitive

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/shopspring/decimal"
)

const (
	// DecimalPrecision and DecimalScale describe the fixed-point representation
	// of KindDecimal cells.
	DecimalPrecision = 38
	DecimalScale     = 18
)

// Coerce converts a resolved property value into the cell representation of kind:
//
//	byte, short, int32, int64  -> int8, int16, int32, int64
//	float32, float64           -> float32, float64
//	decimal                    -> decimal128.Num scaled by DecimalScale
//	string, enum               -> string
//	boolean                    -> bool
//	date, timestamp            -> int64 milliseconds since the Unix epoch
//	binary                     -> []byte
//
// It returns nil when the value is nil or cannot be represented as kind.
func Coerce(kind KindEnum, value any) any {
	value = Indirect(value)
	if value == nil {
		return nil
	}

	switch kind {
	case KindByte:
		if n, ok := toInt64(value); ok && n >= math.MinInt8 && n <= math.MaxInt8 {
			return int8(n)
		}
	case KindShort:
		if n, ok := toInt64(value); ok && n >= math.MinInt16 && n <= math.MaxInt16 {
			return int16(n)
		}
	case KindInt32:
		if n, ok := toInt64(value); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	case KindInt64:
		if n, ok := toInt64(value); ok {
			return n
		}
	case KindFloat32:
		if f, ok := toFloat64(value); ok {
			return float32(f)
		}
	case KindFloat64:
		if f, ok := toFloat64(value); ok {
			return f
		}
	case KindDecimal:
		if d, ok := ToDecimal(value); ok {
			return d
		}
	case KindString, KindEnumString:
		return toString(value)
	case KindBool:
		if b, ok := value.(bool); ok {
			return b
		}

		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Bool {
			return rv.Bool()
		}
	case KindDate, KindTimestamp:
		if t, ok := value.(time.Time); ok {
			return t.UnixMilli()
		}
	case KindBinary:
		switch v := value.(type) {
		case []byte:
			return v
		case string:
			return []byte(v)
		}
	}

	return nil
}

// Indirect strips pointers and interfaces from value. Nil pointers become nil.
// Pointers to big numbers are kept, their methods live on the pointer.
func Indirect(value any) any {
	switch value.(type) {
	case nil:
		return nil
	case *big.Int, *big.Float:
		if reflect.ValueOf(value).IsNil() {
			return nil
		}

		return value
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		if rv.Kind() == reflect.Ptr && (rv.Type().Elem() == bigIntType || rv.Type().Elem() == bigFloatType) {
			return rv.Interface()
		}

		rv = rv.Elem()
	}

	return rv.Interface()
}

// ToDecimal converts a numeric value into a fixed-point number with
// DecimalScale fractional digits. Values that do not fit DecimalPrecision
// digits are rejected.
func ToDecimal(value any) (decimal128.Num, bool) {
	d, ok := toShopspring(value)
	if !ok {
		return decimal128.Num{}, false
	}

	unscaled := d.Shift(DecimalScale).BigInt()
	if unscaled.CmpAbs(maxUnscaled) > 0 {
		return decimal128.Num{}, false
	}

	return decimal128.FromBigInt(unscaled), true
}

var maxUnscaled = new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPrecision), nil), big.NewInt(1))

func toShopspring(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *big.Int:
		return decimal.NewFromBigInt(v, 0), true
	case big.Int:
		return decimal.NewFromBigInt(&v, 0), true
	case *big.Float:
		d, err := decimal.NewFromString(v.Text('f', -1))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}

		return decimal.NewFromFloat(f), true
	default:
		return decimal.Decimal{}, false
	}
}

func toInt64(value any) (int64, bool) {
	if n, ok := value.(json.Number); ok {
		i, err := n.Int64()
		return i, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}

		return int64(u), true
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case decimal.Decimal:
		return v.InexactFloat64(), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	// named string types without a String method
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		return rv.String()
	}

	return fmt.Sprint(value)
}
