package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tabular-mapper/internal/materialize"
)

// Record builds an Arrow record from materialized rows. The caller owns the
// returned record and must Release it.
func Record(mem memory.Allocator, sc *arrow.Schema, rows []materialize.Row) (arrow.Record, error) {
	builder := array.NewRecordBuilder(mem, sc)
	defer builder.Release()

	for r, row := range rows {
		if len(row) != sc.NumFields() {
			return nil, fmt.Errorf("row %d has %d cells, schema has %d fields", r, len(row), sc.NumFields())
		}

		for i, cell := range row {
			if err := appendValue(builder.Field(i), cell); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", r, sc.Field(i).Name, err)
			}
		}
	}

	return builder.NewRecord(), nil
}

// appendValue appends one cell. Cells are expected in the representation produced by primitive.Coerce.
func appendValue(b array.Builder, value any) error {
	if value == nil {
		b.AppendNull()
		return nil
	}

	ok := true

	switch bb := b.(type) {
	case *array.Int8Builder:
		var v int8
		if v, ok = value.(int8); ok {
			bb.Append(v)
		}
	case *array.Int16Builder:
		var v int16
		if v, ok = value.(int16); ok {
			bb.Append(v)
		}
	case *array.Int32Builder:
		var v int32
		if v, ok = value.(int32); ok {
			bb.Append(v)
		}
	case *array.Int64Builder:
		var v int64
		if v, ok = value.(int64); ok {
			bb.Append(v)
		}
	case *array.Float32Builder:
		var v float32
		if v, ok = value.(float32); ok {
			bb.Append(v)
		}
	case *array.Float64Builder:
		var v float64
		if v, ok = value.(float64); ok {
			bb.Append(v)
		}
	case *array.StringBuilder:
		var v string
		if v, ok = value.(string); ok {
			bb.Append(v)
		}
	case *array.BooleanBuilder:
		var v bool
		if v, ok = value.(bool); ok {
			bb.Append(v)
		}
	case *array.Date64Builder:
		var v int64
		if v, ok = value.(int64); ok {
			bb.Append(arrow.Date64(v))
		}
	case *array.TimestampBuilder:
		var v int64
		if v, ok = value.(int64); ok {
			bb.Append(arrow.Timestamp(v))
		}
	case *array.Decimal128Builder:
		var v decimal128.Num
		if v, ok = value.(decimal128.Num); ok {
			bb.Append(v)
		}
	case *array.BinaryBuilder:
		var v []byte
		if v, ok = value.([]byte); ok {
			bb.Append(v)
		}
	case *array.StructBuilder:
		return appendStruct(bb, value)
	case *array.ListBuilder:
		return appendList(bb, value)
	default:
		return fmt.Errorf("unsupported arrow type %s", b.Type())
	}

	if !ok {
		return fmt.Errorf("cell %T does not match arrow type %s", value, b.Type())
	}

	return nil
}

func appendStruct(b *array.StructBuilder, value any) error {
	row, ok := value.(materialize.Row)
	if !ok || len(row) != b.NumField() {
		return fmt.Errorf("cell %T does not match arrow type %s", value, b.Type())
	}

	b.Append(true)

	for i, cell := range row {
		if err := appendValue(b.FieldBuilder(i), cell); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}

	return nil
}

func appendList(b *array.ListBuilder, value any) error {
	elems, ok := value.([]any)
	if !ok {
		return fmt.Errorf("cell %T does not match arrow type %s", value, b.Type())
	}

	b.Append(true)

	vb := b.ValueBuilder()
	for i, elem := range elems {
		if err := appendValue(vb, elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}
