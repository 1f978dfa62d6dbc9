package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabular-mapper/store"
)

func TestResolvePath(t *testing.T) {
	root := inferAll(t,
		store.Invoice{
			CustomerRef: store.ReferenceType{Value: "42"},
			Lines:       []store.Line{{Detail: &store.SalesItemDetail{}}, {}},
			Tags:        []string{"a"},
		},
		map[string]any{"total_amount": 3},
	)

	tests := []struct {
		name string
		path string
		typ  ColumnTypeEnum
	}{
		{"customerRef_value", "CustomerRef.Value", ColumnScalar},
		{"customerRef", "CustomerRef", ColumnStruct},
		{"line", "Lines", ColumnArray},
		{"line_1", "Lines[1]", ColumnStruct},
		{"line_0_salesItemLineDetail_itemRef_value", "Lines[0].Detail.ItemRef.Value", ColumnScalar},
		{"tags_0", "Tags[0]", ColumnScalar},
		{"total_amount", "total_amount", ColumnScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := ResolvePath(root, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, col.Name)
			assert.Equal(t, tt.path, col.Path.String())
			assert.Equal(t, tt.typ, col.Type)
			assert.True(t, col.Nullable)
		})
	}
}

func TestResolvePath_Unknown(t *testing.T) {
	root := inferAll(t, store.Invoice{Tags: []string{"a"}})

	for _, name := range []string{"", "nope", "tags_1", "tags_x", "customerRef_value_extra", "docNumber_0"} {
		_, err := ResolvePath(root, name)
		assert.ErrorIs(t, err, ErrUnknownColumn, name)
	}
}

func TestResolvePath_MatchesFlattenedColumns(t *testing.T) {
	root := inferAll(t, store.Invoice{Lines: []store.Line{{Detail: &store.SalesItemDetail{}}}, Tags: []string{"a", "b"}})

	cols, flat, err := Flatten(root, true)
	require.NoError(t, err)

	for _, c := range cols {
		if c.IsPlaceholder() {
			continue
		}

		resolved, err := ResolvePath(flat, c.Name)
		require.NoError(t, err, c.Name)
		assert.Equal(t, c.Path, resolved.Path, c.Name)
		assert.Equal(t, c.Kind, resolved.Kind, c.Name)
	}
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "", Path{}.String())
	assert.Equal(t, "Lines[0][2].Amount", Path{Property("Lines"), Element(0), Element(2), Property("Amount")}.String())
	assert.False(t, Property("x").IsIndex())
	assert.True(t, Element(0).IsIndex())
}
