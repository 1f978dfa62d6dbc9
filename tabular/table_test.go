package tabular

import (
	"context"
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tabular-mapper/internal/diagnostic"
	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/introspect"
	"tabular-mapper/internal/materialize"
	"tabular-mapper/internal/schema"
	"tabular-mapper/options"
	"tabular-mapper/store"
)

func Example() {
	records := []any{
		map[string]any{"name": "Acme", "tags": []any{"x", "y"}},
		map[string]any{"name": "Beta", "tags": []any{"z"}},
	}

	table, err := Build(records, Config{Flags: options.FlagExpandArrays})
	if err != nil {
		panic(err)
	}

	for _, c := range table.Columns() {
		fmt.Println(c.Name, c.Kind.TypeName())
	}

	for _, r := range records {
		fmt.Println(table.Row(r)...)
	}

	// Output:
	// name string
	// tags_0 string
	// tags_1 string
	// Acme x y
	// Beta z <nil>
}

func columnNames(t *Table) []string {
	cols := t.Columns()

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	return names
}

func TestBuild_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		flags   options.FlagEnum
		records []any
		columns []string
		rows    []materialize.Row
	}{
		{
			name:  "struct flattened after null",
			flags: options.FlagExpandStructs,
			records: []any{
				map[string]any{"addr": map[string]any{"city": "NY"}},
				map[string]any{"addr": nil},
			},
			columns: []string{"addr_city"},
			rows:    []materialize.Row{{"NY"}, {nil}},
		},
		{
			name:    "never populated field",
			flags:   options.FlagExpandStructs,
			records: []any{map[string]any{"id": 5, "meta": nil}},
			columns: []string{"id", "meta"},
			rows:    []materialize.Row{{int64(5), nil}},
		},
		{
			name:  "nested columns",
			flags: options.FlagNone,
			records: []any{
				map[string]any{"addr": map[string]any{"city": "NY"}, "tags": []any{"a"}},
				map[string]any{"addr": nil},
			},
			columns: []string{"addr", "tags"},
			rows: []materialize.Row{
				{materialize.Row{"NY"}, []any{"a"}},
				{nil, nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(tt.records, Config{Flags: tt.flags})
			require.NoError(t, err)
			assert.Equal(t, tt.columns, columnNames(table))

			rows, err := table.Rows(context.Background(), tt.records)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestBuild_Conflict(t *testing.T) {
	records := []any{
		map[string]any{"x": int32(1)},
		map[string]any{"x": map[string]any{"y": 1}},
	}

	core, logs := observer.New(zap.ErrorLevel)

	config := DefaultConfig()
	config.Logger = zap.New(core)

	_, err := Build(records, config)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchemaConflict)
	assert.Contains(t, err.Error(), "failed to infer schema")

	entries := logs.FilterMessage("schema conflict").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "#1", entries[0].ContextMap()["record"])
}

func TestBuild_NotRecord(t *testing.T) {
	_, err := Build([]any{42}, DefaultConfig())
	assert.ErrorIs(t, err, introspect.ErrNotRecord)
}

func TestBuild_Empty(t *testing.T) {
	table, err := Build(nil, Config{Flags: options.FlagAll})
	require.NoError(t, err)
	assert.Empty(t, table.Columns())
	assert.Equal(t, materialize.Row{}, table.Row(map[string]any{"x": 1}))
}

func TestBuild_SampleSize(t *testing.T) {
	records := []any{
		map[string]any{"id": 1},
		map[string]any{"id": 2, "late": "only in the third sample"},
	}

	table, err := Build(records, Config{SampleSize: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, columnNames(table))
	assert.Equal(t, materialize.Row{int64(2)}, table.Row(records[1]))
}

func TestBuild_UnsampledShapeIsNull(t *testing.T) {
	records := []any{
		map[string]any{"x": "a"},
		map[string]any{"x": map[string]any{"y": 1}},
		map[string]any{"x": []any{"b"}},
	}

	table, err := Build(records, Config{Flags: options.FlagExpandStructs, SampleSize: 1})
	require.NoError(t, err)

	rows, err := table.Rows(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, []materialize.Row{{"a"}, {nil}, {nil}}, rows)
}

func TestBuild_Diagnostics(t *testing.T) {
	records := []any{
		map[string]any{"total": int32(1), "a": map[string]any{"b": 1}, "a_b": 2},
		map[string]any{"total": 2.5},
	}

	table, err := Build(records, Config{Flags: options.FlagExpandStructs})
	require.NoError(t, err)

	diags := table.Diagnostics()
	assert.Equal(t, 1, diags.Count(diagnostic.CodeKindWidened))
	assert.Equal(t, 1, diags.Count(diagnostic.CodeNameCollision))
	assert.Equal(t, []string{"a_b", "a_b1", "total"}, columnNames(table))
}

func TestTable_Project(t *testing.T) {
	invoice := store.Invoice{
		DocNumber:   "1001",
		CustomerRef: store.ReferenceType{Value: "42"},
		Lines:       []store.Line{{LineNum: 1, Amount: decimal.NewFromInt(3)}},
	}

	table, err := Build([]any{invoice}, DefaultConfig())
	require.NoError(t, err)

	projected, err := table.Project("docNumber", "customerRef_value", "line_0_lineNum", "line")
	require.NoError(t, err)

	cols := projected.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, flatten.ColumnScalar, cols[1].Type)
	assert.Equal(t, flatten.ColumnArray, cols[3].Type)

	row := projected.Row(invoice)
	assert.Equal(t, "1001", row[0])
	assert.Equal(t, "42", row[1])
	assert.Equal(t, int32(1), row[2])
	require.Len(t, row[3], 1)

	_, err = table.Project("nope")
	assert.ErrorIs(t, err, flatten.ErrUnknownColumn)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = table.Project("docNumbr")
	assert.ErrorIs(t, err, flatten.ErrUnknownColumn)
	assert.ErrorContains(t, err, `did you mean "docNumber"?`)

	assert.Len(t, table.Columns(), 10, "projection does not modify the table")
}

func TestTable_Record(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	records := []any{
		store.Customer{DisplayName: "Acme", Balance: decimal.RequireFromString("12.50")},
		store.Customer{DisplayName: "Beta", BillAddr: &store.PhysicalAddress{City: "Oslo"}},
	}

	table, err := Build(records, Config{Flags: options.FlagExpandStructs, Workers: 2})
	require.NoError(t, err)

	rows, err := table.Rows(context.Background(), records)
	require.NoError(t, err)

	rec, err := table.Record(mem, rows)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, len(table.Columns()), int(rec.NumCols()))
	assert.True(t, table.ArrowSchema().HasField("billAddr_city"))
}

func TestTable_DescribeYAML(t *testing.T) {
	records := []any{map[string]any{"name": "Acme", "tags": []any{"x", "y"}}}

	table, err := Build(records, Config{Flags: options.FlagAll})
	require.NoError(t, err)

	data, err := table.DescribeYAML()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "flags: expandArrays|expandStructs")
	assert.Contains(t, out, "name: tags_1")
	assert.Contains(t, out, "path: tags[1]")
	assert.Contains(t, out, "array_size: 2")

	d := table.Describe()
	require.Len(t, d.Columns, 3)
	assert.Equal(t, ColumnDescription{Name: "name", Type: "scalar", Kind: "string", Path: "name"}, d.Columns[0])
}
