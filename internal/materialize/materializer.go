package materialize

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/introspect"
	"tabular-mapper/internal/schema"
	"tabular-mapper/primitive"
)

// Row holds one cell per column. Struct cells are nested Rows, array cells are []any.
type Row []any

// Materializer builds rows from records by following the recorded path of every column.
//
// It keeps no state between calls: Row may be called from any number of
// goroutines at once as long as the columns are not modified.
type Materializer struct {
	introspector introspect.Introspector
	logger       *zap.Logger
}

// New creates a new Materializer. A nil logger discards all output.
func New(in introspect.Introspector, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Materializer{introspector: in, logger: logger}
}

// Row materializes one record. Cells whose path does not resolve are nil.
func (m *Materializer) Row(record any, columns []flatten.Column) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		row[i] = m.Cell(record, col)
	}

	return row
}

// Cell materializes one column of a record.
func (m *Materializer) Cell(record any, col flatten.Column) any {
	if col.IsPlaceholder() {
		return nil
	}

	value, ok := m.resolve(record, col.Path)
	if !ok {
		return nil
	}

	switch col.Type {
	case flatten.ColumnScalar:
		if col.Node != nil && col.Node.Shape != schema.ShapeScalar {
			// empty struct
			return nil
		}

		return m.scalar(col.Kind, value)

	default:
		return m.value(value, col.Node)
	}
}

// Rows materializes records on up to workers goroutines, keeping the record order.
// A workers value of zero or less uses GOMAXPROCS.
func (m *Materializer) Rows(ctx context.Context, records []any, columns []flatten.Column, workers int) ([]Row, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([]Row, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rows[i] = m.Row(record, columns)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// cancelled before any worker saw it
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// resolve follows a path from a record. It reports false when a step meets
// null, an out of range index or an unreadable property.
func (m *Materializer) resolve(record any, path flatten.Path) (any, bool) {
	current := record

	for _, step := range path {
		if m.isNull(current) {
			return nil, false
		}

		if step.IsIndex() {
			elems, ok := m.introspector.Elements(current)
			if !ok || step.Index >= len(elems) {
				return nil, false
			}

			current = elems[step.Index]

			continue
		}

		value, err := m.invoke(current, step.Accessor, step.Name)
		if err != nil {
			m.logger.Debug("property read failed, using null",
				zap.Stringer("path", path),
				zap.String("accessor", step.Accessor),
				zap.Error(err))

			return nil, false
		}

		current = value
	}

	if m.isNull(current) {
		return nil, false
	}

	return current, true
}

// value converts a resolved value by the shape of its schema node.
func (m *Materializer) value(value any, node *schema.Node) any {
	if node == nil || m.isNull(value) {
		return nil
	}

	if node.Repeated {
		elems, ok := m.introspector.Elements(value)
		if !ok {
			return nil
		}

		elemNode := node.Element()

		out := make([]any, len(elems))
		for i, elem := range elems {
			out[i] = m.value(elem, elemNode)
		}

		return out
	}

	switch node.Shape {
	case schema.ShapeScalar:
		return m.scalar(node.Kind, value)

	case schema.ShapeStruct:
		if len(node.Children) == 0 || m.category(value) != introspect.CategoryRecord {
			return nil
		}

		row := make(Row, len(node.Children))

		for i, child := range node.Children {
			v, err := m.invoke(value, child.Accessor, child.Name)
			if err != nil {
				m.logger.Debug("property read failed, using null",
					zap.String("accessor", child.Accessor),
					zap.Error(err))

				continue
			}

			row[i] = m.value(v, child)
		}

		return row

	default:
		return nil
	}
}

// invoke reads a property by accessor. When the record has nothing under the
// accessor it is read by name, the key a map or a Record of another shape uses.
func (m *Materializer) invoke(record any, accessor, name string) (any, error) {
	value, err := m.introspector.Invoke(record, accessor)
	if (err == nil && value != nil) || name == "" || name == accessor {
		return value, err
	}

	if byName, nameErr := m.introspector.Invoke(record, name); nameErr == nil {
		return byName, nil
	}

	return value, err
}

// scalar coerces a value to kind. Records and collections met where a scalar
// was inferred yield nil.
func (m *Materializer) scalar(kind primitive.KindEnum, value any) any {
	switch m.category(value) {
	case introspect.CategoryRecord, introspect.CategoryCollection:
		return nil
	default:
		return primitive.Coerce(kind, value)
	}
}

func (m *Materializer) category(value any) introspect.CategoryEnum {
	category, _ := m.introspector.Classify(value)
	return category
}

func (m *Materializer) isNull(value any) bool {
	return m.category(value) == introspect.CategoryNull
}
