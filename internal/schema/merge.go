package schema

import (
	"fmt"

	"go.uber.org/zap"

	"tabular-mapper/internal/common"
	"tabular-mapper/internal/diagnostic"
	"tabular-mapper/primitive"
)

// Merge unifies two schema trees of the same field without recording diagnostics.
func Merge(a, b *Node) (*Node, error) {
	return NewGenerator(nil, nil).Merge(a, b)
}

// merge unifies a and b. It never drops information present in either operand
// and is commutative: children are kept in (Ordinal, Name) order, the smaller
// ordinal and accessor win, and scalar kinds are unified symmetrically.
func (g *Generator) merge(label, path string, a, b *Node) (*Node, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}

	if a.Flattened != b.Flattened {
		return nil, fmt.Errorf("%w at %q", ErrFlattenMismatch, path)
	}

	out := *a
	out.Ordinal = min(a.Ordinal, b.Ordinal)
	out.Accessor = minAccessor(a.Accessor, b.Accessor)

	// a null observation says nothing about the shape
	switch {
	case a.IsPlaceholder():
		return b.withIdentity(out.Accessor, out.Ordinal), nil
	case b.IsPlaceholder():
		return a.withIdentity(out.Accessor, out.Ordinal), nil
	}

	if a.Repeated != b.Repeated {
		return nil, &ConflictError{Path: path, Left: describe(a), Right: describe(b)}
	}

	out.ArraySize = max(a.ArraySize, b.ArraySize)

	switch {
	case a.Shape == ShapeNull:
		// empty collection on the left, element shape from the right
		out.Shape, out.Kind, out.Children = b.Shape, b.Kind, b.Children
		return &out, nil
	case b.Shape == ShapeNull:
		return &out, nil
	case a.Shape != b.Shape:
		return nil, &ConflictError{Path: path, Left: describe(a), Right: describe(b)}
	}

	switch a.Shape {
	case ShapeScalar:
		out.Kind = g.unifyKinds(label, path, a.Kind, b.Kind)

	case ShapeStruct:
		children, err := g.mergeChildren(label, path, a.Children, b.Children)
		if err != nil {
			return nil, err
		}

		out.Children = children
	}

	return &out, nil
}

func (g *Generator) mergeChildren(label, path string, a, b []*Node) ([]*Node, error) {
	merged := make([]*Node, 0, len(a)+len(b))
	seen := make(map[string]int, len(a))

	for _, c := range a {
		seen[c.Name] = len(merged)
		merged = append(merged, c)
	}

	for _, c := range b {
		i, ok := seen[c.Name]
		if !ok {
			merged = append(merged, c)
			continue
		}

		node, err := g.merge(label, common.JoinName(path, c.Name), merged[i], c)
		if err != nil {
			return nil, err
		}

		merged[i] = node
	}

	return sortChildren(merged), nil
}

func (g *Generator) unifyKinds(label, path string, a, b primitive.KindEnum) primitive.KindEnum {
	kind := primitive.Unify(a, b)
	if a == b {
		return kind
	}

	g.logger.Debug("scalar kinds widened",
		zap.String("path", path),
		zap.Stringer("left", a),
		zap.Stringer("right", b),
		zap.Stringer("kind", kind))
	g.diagnostics.AddWarning(diagnostic.CodeKindWidened,
		fmt.Sprintf("%s and %s widened to %s", a.TypeName(), b.TypeName(), kind.TypeName()), label, path)

	return kind
}

// withIdentity returns the node with the accessor and ordinal replaced, copying only when they change.
func (n *Node) withIdentity(accessor string, ordinal int) *Node {
	if n.Accessor == accessor && n.Ordinal == ordinal {
		return n
	}

	out := *n
	out.Accessor, out.Ordinal = accessor, ordinal

	return &out
}

func minAccessor(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return min(a, b)
	}
}
