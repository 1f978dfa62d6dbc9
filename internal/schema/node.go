package schema

import (
	"cmp"
	"slices"

	"tabular-mapper/primitive"
)

//go:generate go tool stringer -type=Shape -trimprefix=Shape -output=shape_string.go

// Shape is the discriminant of a schema node.
type Shape int

const (
	ShapeNull   Shape = iota // placeholder: only nulls observed, shape unknown
	ShapeScalar              // Kind carries the scalar kind
	ShapeStruct              // Children carry the fields

	// ShapeTotal is a constant that represents the total number of shapes defined
	ShapeTotal = int(iota)
)

// Node describes the inferred shape of one property across the sampled records.
//
// Nodes are immutable once built: Merge and the flattener return new nodes
// and share untouched subtrees, so a tree may be read from any goroutine.
// A repeated node describes a collection property; Shape, Kind and Children
// then describe its elements.
type Node struct {
	Name      string             // column segment
	Accessor  string             // retrieval key passed to the introspector
	Shape     Shape              // Null, Scalar or Struct
	Kind      primitive.KindEnum // scalar kind, ShapeScalar only
	Children  []*Node            // ordered by (Ordinal, Name), ShapeStruct only
	Repeated  bool               // collection property
	ArraySize int                // maximum observed element count, repeated only
	Flattened bool               // spliced into a parent's flat column list
	Ordinal   int                // declaration position within the parent
}

// NewScalar creates a scalar leaf node.
func NewScalar(name, accessor string, kind primitive.KindEnum) *Node {
	return &Node{Name: name, Accessor: accessor, Shape: ShapeScalar, Kind: kind}
}

// NewStruct creates a struct node. Children are ordered by (Ordinal, Name).
func NewStruct(name, accessor string, children ...*Node) *Node {
	return &Node{Name: name, Accessor: accessor, Shape: ShapeStruct, Children: sortChildren(children)}
}

// NewNull creates a placeholder node for a property observed only as null.
func NewNull(name, accessor string) *Node {
	return &Node{Name: name, Accessor: accessor, Shape: ShapeNull}
}

// IsPlaceholder reports whether nothing is known about the node's shape.
func (n *Node) IsPlaceholder() bool {
	return n.Shape == ShapeNull && !n.Repeated
}

// IsLeaf reports whether the node has no fields to flatten into.
func (n *Node) IsLeaf() bool {
	return n.Shape != ShapeStruct || len(n.Children) == 0
}

// Child returns the child with the name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Element returns the node that describes one element of a repeated node.
func (n *Node) Element() *Node {
	if !n.Repeated {
		return n
	}

	elem := *n
	elem.Repeated = false
	elem.ArraySize = 0

	return &elem
}

// WithFlattened returns a copy of the node with the flattened mark and children replaced.
func (n *Node) WithFlattened(children []*Node) *Node {
	out := *n
	out.Flattened = true

	if n.Shape == ShapeStruct {
		out.Children = children
	}

	return &out
}

// Walk visits the node and its descendants depth-first.
// The path holds the names from the root's children down to the node.
func (n *Node) Walk(fn func(path []string, node *Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) bool) {
	if !fn(path, n) {
		return
	}

	for _, c := range n.Children {
		c.walk(append(slices.Clip(path), c.Name), fn)
	}
}

func sortChildren(children []*Node) []*Node {
	if len(children) == 0 {
		return nil
	}

	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, compareNodes)

	return sorted
}

func compareNodes(a, b *Node) int {
	return cmp.Or(cmp.Compare(a.Ordinal, b.Ordinal), cmp.Compare(a.Name, b.Name))
}
