package materialize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/introspect"
	"tabular-mapper/internal/schema"
	"tabular-mapper/primitive"
	"tabular-mapper/store"
)

func build(t *testing.T, expandArrays bool, records ...any) []flatten.Column {
	t.Helper()

	root, err := schema.NewGenerator(introspect.NewReflect(), nil).InferAll(records)
	require.NoError(t, err)

	cols, _, err := flatten.Flatten(root, expandArrays)
	require.NoError(t, err)

	return cols
}

func inferRoot(t *testing.T, records ...any) *schema.Node {
	t.Helper()

	root, err := schema.NewGenerator(introspect.NewReflect(), nil).InferAll(records)
	require.NoError(t, err)

	return root
}

func newMaterializer() *Materializer {
	return New(introspect.NewReflect(), nil)
}

// Scenario A
func TestMaterializer_ExpandedArrays(t *testing.T) {
	records := []any{
		map[string]any{"name": "Acme", "tags": []any{"x", "y"}},
		map[string]any{"name": "Beta", "tags": []any{"z"}},
	}
	cols := build(t, true, records...)
	m := newMaterializer()

	assert.Equal(t, Row{"Acme", "x", "y"}, m.Row(records[0], cols))
	assert.Equal(t, Row{"Beta", "z", nil}, m.Row(records[1], cols))
}

// Scenario B
func TestMaterializer_NullIntermediate(t *testing.T) {
	records := []any{
		map[string]any{"addr": map[string]any{"city": "NY"}},
		map[string]any{"addr": nil},
	}
	cols := build(t, false, records...)
	m := newMaterializer()

	assert.Equal(t, Row{"NY"}, m.Row(records[0], cols))
	assert.Equal(t, Row{nil}, m.Row(records[1], cols))
}

// Scenario C
func TestMaterializer_PlaceholderIsNull(t *testing.T) {
	record := map[string]any{"id": 5, "meta": nil}
	cols := build(t, true, record)

	assert.Equal(t, Row{int64(5), nil}, newMaterializer().Row(record, cols))
}

func TestMaterializer_Coercion(t *testing.T) {
	txnDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

	invoice := store.Invoice{
		Entity:      store.Entity{MetaData: &store.ModificationMetaData{CreateTime: created}},
		DocNumber:   "1001",
		TxnDate:     txnDate,
		Status:      store.StatusPaid,
		CustomerRef: store.ReferenceType{Value: "42"},
		TotalAmt:    decimal.RequireFromString("15.25"),
	}

	cols := build(t, true, invoice)
	row := newMaterializer().Row(invoice, cols)

	cells := make(map[string]any, len(cols))
	for i, c := range cols {
		cells[c.Name] = row[i]
	}

	assert.Equal(t, "1001", cells["docNumber"])
	assert.Equal(t, txnDate.UnixMilli(), cells["txnDate"])
	assert.Equal(t, created.UnixMilli(), cells["metaData_createTime"])
	assert.Nil(t, cells["metaData_lastUpdatedTime"])
	assert.Equal(t, "PAID", cells["status"])
	assert.Equal(t, "42", cells["customerRef_value"])
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", cells["id"])

	expected, ok := primitive.ToDecimal(decimal.RequireFromString("15.25"))
	require.True(t, ok)
	assert.Equal(t, expected, cells["totalAmt"])
	assert.IsType(t, decimal128.Num{}, cells["totalAmt"])
}

func TestMaterializer_NestedRows(t *testing.T) {
	invoice := store.Invoice{
		CustomerRef: store.ReferenceType{Value: "42", Name: "Acme"},
		Lines: []store.Line{
			{LineNum: 1, Amount: decimal.NewFromInt(10)},
			{LineNum: 2, Detail: &store.SalesItemDetail{Qty: 3}},
		},
		Tags: []string{"a", "b"},
	}

	root, err := schema.NewGenerator(introspect.NewReflect(), nil).Infer(invoice)
	require.NoError(t, err)

	cols := flatten.Columns(root)
	row := newMaterializer().Row(invoice, cols)

	cells := make(map[string]any, len(cols))
	for i, c := range cols {
		cells[c.Name] = row[i]
	}

	assert.Equal(t, Row{"42", "Acme"}, cells["customerRef"])
	assert.Equal(t, []any{"a", "b"}, cells["tags"])

	lines, ok := cells["line"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 2)

	first := lines[0].(Row)
	assert.Equal(t, int32(1), first[0])
	assert.Nil(t, first[3], "detail of the first line is nil")

	second := lines[1].(Row)
	detail := second[3].(Row)
	assert.Equal(t, 3.0, detail[1])
}

type brokenCustomer struct {
	name string
}

func (c brokenCustomer) Properties() []introspect.Property {
	return []introspect.Property{
		{Name: "displayName", Accessor: "DisplayName", Kind: primitive.KindString, Category: introspect.CategoryScalar},
		{Name: "balance", Accessor: "Balance", Kind: primitive.KindDecimal, Category: introspect.CategoryScalar, Ordinal: 1},
	}
}

func (c brokenCustomer) Property(accessor string) (any, error) {
	if accessor == "DisplayName" {
		return c.name, nil
	}

	return nil, &introspect.AccessError{Accessor: accessor, Type: "brokenCustomer", Err: errors.New("permission denied")}
}

func TestMaterializer_AccessorFailureIsNull(t *testing.T) {
	good := store.Customer{DisplayName: "Acme", Balance: decimal.NewFromInt(1)}
	cols := []flatten.Column{
		{Name: "displayName", Kind: primitive.KindString, Path: flatten.Path{flatten.Property("DisplayName")}, Nullable: true},
		{Name: "balance", Kind: primitive.KindDecimal, Path: flatten.Path{flatten.Property("Balance")}, Nullable: true},
	}
	cols[0].Node = schema.NewScalar("displayName", "DisplayName", primitive.KindString)
	cols[1].Node = schema.NewScalar("balance", "Balance", primitive.KindDecimal)

	m := newMaterializer()

	row := m.Row(brokenCustomer{name: "Beta"}, cols)
	assert.Equal(t, Row{"Beta", nil}, row)

	row = m.Row(good, cols)
	assert.Equal(t, "Acme", row[0])
	assert.NotNil(t, row[1])
}

func TestMaterializer_TypeMismatchIsNull(t *testing.T) {
	records := []any{
		map[string]any{"addr": map[string]any{"city": "NY"}, "qty": int32(1)},
	}
	cols := build(t, false, records...)

	// a later record with a scalar where a struct was inferred, and an out of range number
	row := newMaterializer().Row(map[string]any{"addr": "flat", "qty": int64(1) << 40}, cols)
	assert.Equal(t, Row{nil, nil}, row)

	// a record or a collection where a scalar was inferred
	row = newMaterializer().Row(map[string]any{
		"addr": map[string]any{"city": map[string]any{"name": "NY"}},
		"qty":  []any{int32(1)},
	}, cols)
	assert.Equal(t, Row{nil, nil}, row)

	// the same inside a nested struct cell
	nested := flatten.Columns(inferRoot(t, records...))
	require.Equal(t, flatten.ColumnStruct, nested[0].Type)

	row = newMaterializer().Row(map[string]any{"addr": map[string]any{"city": []any{"NY"}}}, nested)
	assert.Equal(t, Row{Row{nil}, nil}, row)

	row = newMaterializer().Row(map[string]any{"addr": "flat"}, nested)
	assert.Equal(t, Row{nil, nil}, row)
}

type contact struct {
	Name string   `json:"name"`
	Addr *address `json:"addr"`
}

type address struct {
	City string `json:"city"`
}

func TestMaterializer_StructAndMapRecords(t *testing.T) {
	records := []any{
		contact{Name: "Acme", Addr: &address{City: "NY"}},
		map[string]any{"name": "Beta", "addr": map[string]any{"city": "LA"}},
	}

	for _, order := range [][]any{records, {records[1], records[0]}} {
		cols := build(t, false, order...)

		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}

		require.Equal(t, []string{"addr_city", "name"}, names)

		m := newMaterializer()
		assert.Equal(t, Row{"NY", "Acme"}, m.Row(records[0], cols))
		assert.Equal(t, Row{"LA", "Beta"}, m.Row(records[1], cols))

		nested := flatten.Columns(inferRoot(t, order...))
		assert.Equal(t, Row{Row{"LA"}, "Beta"}, m.Row(records[1], nested))
	}
}

func TestMaterializer_EmptyStructElements(t *testing.T) {
	records := []any{
		map[string]any{"items": []any{map[string]any{}, map[string]any{}}},
	}
	cols := build(t, false, records...)
	require.Len(t, cols, 1)

	row := newMaterializer().Row(records[0], cols)
	assert.Equal(t, Row{[]any{nil, nil}}, row)
}

func TestMaterializer_CellEqualsDirectPath(t *testing.T) {
	records := []any{
		store.Invoice{
			DocNumber: "1",
			Lines:     []store.Line{{LineNum: 7, Amount: decimal.RequireFromString("1.5")}},
		},
		store.Invoice{
			DocNumber: "2",
			Lines: []store.Line{
				{LineNum: 8, Detail: &store.SalesItemDetail{ItemRef: store.ReferenceType{Value: "item-1"}, UnitPrice: 2.5}},
				{LineNum: 9},
			},
		},
	}
	cols := build(t, true, records...)
	m := newMaterializer()

	for _, record := range records {
		row := m.Row(record, cols)

		for i, c := range cols {
			if c.Path[0].Accessor != "Lines" {
				continue
			}

			direct, ok := followDirect(record, c.Path)
			if !ok {
				assert.Nil(t, row[i], c.Name)
				continue
			}

			assert.Equal(t, primitive.Coerce(c.Kind, direct), row[i], c.Name)
		}
	}
}

// followDirect walks a line path over store types without the introspector.
func followDirect(record any, path flatten.Path) (any, bool) {
	current := record

	for _, step := range path {
		switch v := current.(type) {
		case store.Invoice:
			if step.Accessor == "Lines" {
				current = v.Lines
			} else {
				return nil, false
			}
		case []store.Line:
			if step.Index >= len(v) {
				return nil, false
			}
			current = v[step.Index]
		case store.Line:
			switch step.Accessor {
			case "LineNum":
				current = v.LineNum
			case "Amount":
				current = v.Amount
			case "Description":
				current = v.Description
			case "Detail":
				if v.Detail == nil {
					return nil, false
				}
				current = *v.Detail
			}
		case store.SalesItemDetail:
			switch step.Accessor {
			case "ItemRef":
				current = v.ItemRef
			case "Qty":
				current = v.Qty
			case "UnitPrice":
				current = v.UnitPrice
			}
		case store.ReferenceType:
			switch step.Accessor {
			case "Value":
				current = v.Value
			case "Name":
				current = v.Name
			}
		default:
			return nil, false
		}
	}

	return current, true
}

func TestMaterializer_Rows(t *testing.T) {
	records := make([]any, 200)
	for i := range records {
		records[i] = map[string]any{"id": i, "name": fmt.Sprintf("customer-%d", i), "tags": []any{"t"}}
	}

	cols := build(t, true, records...)
	m := newMaterializer()

	rows, err := m.Rows(context.Background(), records, cols, 8)
	require.NoError(t, err)
	require.Len(t, rows, len(records))

	for i, row := range rows {
		assert.Equal(t, Row{int64(i), fmt.Sprintf("customer-%d", i), "t"}, row)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Rows(ctx, records, cols, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
