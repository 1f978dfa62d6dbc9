package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"

	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/schema"
	"tabular-mapper/primitive"
)

// Schema creates the Arrow schema of a column list. Every field is nullable.
func Schema(columns []flatten.Column) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col.Name, Type: columnType(col), Nullable: true}
	}

	return arrow.NewSchema(fields, nil)
}

func columnType(col flatten.Column) arrow.DataType {
	if col.Type == flatten.ColumnScalar || col.Node == nil {
		return KindType(col.Kind)
	}

	return NodeType(col.Node)
}

// NodeType maps a schema node to an Arrow type: repeated nodes to lists,
// structs with fields to structs, scalars by kind, anything else to binary.
func NodeType(node *schema.Node) arrow.DataType {
	if node.Repeated {
		return arrow.ListOf(NodeType(node.Element()))
	}

	switch node.Shape {
	case schema.ShapeScalar:
		return KindType(node.Kind)

	case schema.ShapeStruct:
		if len(node.Children) == 0 {
			return arrow.BinaryTypes.Binary
		}

		fields := make([]arrow.Field, len(node.Children))
		for i, c := range node.Children {
			fields[i] = arrow.Field{Name: c.Name, Type: NodeType(c), Nullable: true}
		}

		return arrow.StructOf(fields...)

	default:
		return arrow.BinaryTypes.Binary
	}
}

// KindType maps a scalar kind to the Arrow type of its cells.
func KindType(kind primitive.KindEnum) arrow.DataType {
	switch kind {
	case primitive.KindByte:
		return arrow.PrimitiveTypes.Int8
	case primitive.KindShort:
		return arrow.PrimitiveTypes.Int16
	case primitive.KindInt32:
		return arrow.PrimitiveTypes.Int32
	case primitive.KindInt64:
		return arrow.PrimitiveTypes.Int64
	case primitive.KindFloat32:
		return arrow.PrimitiveTypes.Float32
	case primitive.KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case primitive.KindDecimal:
		return &arrow.Decimal128Type{Precision: primitive.DecimalPrecision, Scale: primitive.DecimalScale}
	case primitive.KindString, primitive.KindEnumString:
		return arrow.BinaryTypes.String
	case primitive.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case primitive.KindDate:
		return arrow.FixedWidthTypes.Date64
	case primitive.KindTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.Binary
	}
}
