package flatten

import (
	"tabular-mapper/internal/common"
	"tabular-mapper/internal/schema"
	"tabular-mapper/primitive"
)

// ColumnTypeEnum is the shape of a column's cells.
type ColumnTypeEnum int

const (
	ColumnScalar ColumnTypeEnum = iota // one scalar of Kind
	ColumnStruct                       // a nested row built from Node's children
	ColumnArray                        // one element per collection entry, described by Node.Element()

	// ColumnTypeTotal is a constant that represents the total number of column types defined
	ColumnTypeTotal = int(iota)
)

// String returns a human-readable representation of the ColumnTypeEnum.
func (c ColumnTypeEnum) String() string {
	switch c {
	case ColumnScalar:
		return "scalar"
	case ColumnStruct:
		return "struct"
	case ColumnArray:
		return "array"
	default:
		return common.UnknownStr
	}
}

// Column describes one column of the output table.
type Column struct {
	Name     string             // underscore-joined path, e.g. "line_0_amount"
	Type     ColumnTypeEnum     // scalar, struct or array cells
	Kind     primitive.KindEnum // scalar kind of scalar cells and of scalar array elements
	Node     *schema.Node       // schema of the resolved value
	Path     Path               // property steps from the record to the value
	Nullable bool               // always true: any property may be absent on a record
}

// IsPlaceholder reports whether nothing was ever observed for the column.
func (c Column) IsPlaceholder() bool {
	return c.Node == nil || c.Node.IsPlaceholder() || (c.Node.Repeated && c.Node.Shape == schema.ShapeNull)
}

// leafColumn builds the column of a node that has no fields to flatten into.
func leafColumn(name string, path Path, node *schema.Node) Column {
	col := Column{Name: name, Type: ColumnScalar, Kind: node.Kind, Node: node, Path: path, Nullable: true}

	if node.Shape != schema.ShapeScalar {
		// placeholders and empty structs
		col.Kind = primitive.KindBinary
	}

	return col
}

// nodeColumn builds the column of a node exposed as is: an array, a struct or a leaf.
func nodeColumn(name string, path Path, node *schema.Node) Column {
	switch {
	case node.Repeated:
		col := Column{Name: name, Type: ColumnArray, Node: node, Path: path, Nullable: true}
		if node.Shape == schema.ShapeScalar {
			col.Kind = node.Kind
		}

		return col

	case !node.IsLeaf():
		return Column{Name: name, Type: ColumnStruct, Node: node, Path: path, Nullable: true}

	default:
		return leafColumn(name, path, node)
	}
}
