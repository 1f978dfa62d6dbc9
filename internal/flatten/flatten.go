package flatten

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tabular-mapper/internal/common"
	"tabular-mapper/internal/diagnostic"
	"tabular-mapper/internal/schema"
)

// ErrFlattenMode is returned when a schema flattened with array expansion is
// flattened again without it, or the other way around.
var ErrFlattenMode = errors.New("schema was flattened in the other array mode")

// Flattener turns a schema tree into an ordered column list.
// A Flattener is not safe for concurrent use.
type Flattener struct {
	logger      *zap.Logger
	diagnostics diagnostic.Diagnostics
}

// New creates a new Flattener. A nil logger discards all output.
func New(logger *zap.Logger) *Flattener {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Flattener{logger: logger}
}

// Diagnostics returns what was collected so far.
func (f *Flattener) Diagnostics() diagnostic.Diagnostics {
	return f.diagnostics
}

// Flatten flattens root without recording diagnostics.
func Flatten(root *schema.Node, expandArrays bool) ([]Column, *schema.Node, error) {
	return New(nil).Flatten(root, expandArrays)
}

// Flatten splices nested structs into parent_child columns. Repeated fields
// become parent_child_i columns for every index below their array size when
// expandArrays is set, and a single array column otherwise.
//
// It returns the columns and root with every spliced node marked flattened.
// Flattening the returned root again with the same expandArrays yields equal
// columns and an equal root.
func (f *Flattener) Flatten(root *schema.Node, expandArrays bool) ([]Column, *schema.Node, error) {
	w := walker{f: f, expand: expandArrays, taken: make(map[string]struct{})}

	children, err := w.flattenStruct(root, "", nil)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Debug("schema flattened",
		zap.Bool("expand_arrays", expandArrays),
		zap.Int("columns", len(w.columns)))

	return w.columns, root.WithFlattened(children), nil
}

// Columns exposes the children of root as columns without flattening them:
// nested structs become struct columns and repeated fields array columns.
func Columns(root *schema.Node) []Column {
	columns := make([]Column, 0, len(root.Children))
	for _, c := range root.Children {
		columns = append(columns, nodeColumn(c.Name, Path{Named(c.Name, c.Accessor)}, c))
	}

	return columns
}

type walker struct {
	f       *Flattener
	expand  bool
	taken   map[string]struct{}
	columns []Column
}

// flattenStruct emits the columns of the children of node and returns the children to keep.
func (w *walker) flattenStruct(node *schema.Node, prefix string, path Path) ([]*schema.Node, error) {
	children := make([]*schema.Node, 0, len(node.Children))

	for _, c := range node.Children {
		name := common.JoinName(prefix, c.Name)
		childPath := path.append(Named(c.Name, c.Accessor))

		if node.Flattened && c.Repeated && c.Flattened != w.expand {
			return nil, fmt.Errorf("%w at %q", ErrFlattenMode, name)
		}

		switch {
		case c.Repeated && w.expand:
			child, err := w.expandArray(c, name, childPath)
			if err != nil {
				return nil, err
			}

			children = append(children, child)

		case c.Repeated:
			w.emit(nodeColumn(name, childPath, c))
			children = append(children, c)

		case c.IsLeaf():
			w.emit(leafColumn(name, childPath, c))
			children = append(children, c)

		default:
			sub, err := w.flattenStruct(c, name, childPath)
			if err != nil {
				return nil, err
			}

			children = append(children, c.WithFlattened(sub))
		}
	}

	return children, nil
}

// expandArray emits one set of columns per index of a repeated node.
func (w *walker) expandArray(node *schema.Node, name string, path Path) (*schema.Node, error) {
	if node.ArraySize == 0 {
		// only empty collections observed
		w.emit(leafColumn(name, path, &schema.Node{Name: node.Name, Accessor: node.Accessor}))
		return node.WithFlattened(nil), nil
	}

	elem := node.Element()

	leaf := *elem
	leaf.Flattened = false

	var children []*schema.Node

	for i := range node.ArraySize {
		indexName := common.JoinIndex(name, i)
		indexPath := path.append(Element(i))

		if elem.IsLeaf() {
			w.emit(leafColumn(indexName, indexPath, &leaf))
			continue
		}

		sub, err := w.flattenStruct(elem, indexName, indexPath)
		if err != nil {
			return nil, err
		}

		children = sub
	}

	return node.WithFlattened(children), nil
}

// emit appends a column, renaming it when an earlier column took its name.
func (w *walker) emit(col Column) {
	name, ok := reserve(col.Name, w.taken)
	if !ok {
		w.f.logger.Info("column renamed",
			zap.String("column", col.Name),
			zap.String("name", name),
			zap.Stringer("path", col.Path))
		w.f.diagnostics.AddInfo(diagnostic.CodeNameCollision,
			fmt.Sprintf("column %s renamed to %s", col.Name, name), "", col.Path.String())

		col.Name = name
	}

	w.columns = append(w.columns, col)
}
