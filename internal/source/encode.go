package source

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/goccy/go-json"

	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/materialize"
	"tabular-mapper/internal/schema"
	"tabular-mapper/primitive"
)

// EncodeRows writes one JSON object per row, keyed by column name.
// Struct cells become nested objects and decimals are written as strings.
func EncodeRows(w io.Writer, columns []flatten.Column, rows []materialize.Row) error {
	enc := json.NewEncoder(w)

	for i, row := range rows {
		obj := make(map[string]any, len(columns))
		for j, col := range columns {
			obj[col.Name] = cellJSON(row[j], col.Node)
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}

	return nil
}

func cellJSON(cell any, node *schema.Node) any {
	switch v := cell.(type) {
	case decimal128.Num:
		return json.Number(v.ToString(primitive.DecimalScale))

	case materialize.Row:
		obj := make(map[string]any, len(v))
		for i, c := range v {
			if node != nil && i < len(node.Children) {
				child := node.Children[i]
				obj[child.Name] = cellJSON(c, child)
			}
		}

		return obj

	case []any:
		var elem *schema.Node
		if node != nil {
			elem = node.Element()
		}

		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cellJSON(e, elem)
		}

		return out

	default:
		return cell
	}
}
