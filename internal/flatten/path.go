package flatten

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tabular-mapper/internal/common"
	"tabular-mapper/internal/schema"
)

// ErrUnknownColumn is returned when a column name does not resolve against a schema.
var ErrUnknownColumn = errors.New("unknown column")

// Step is one step of a property path: a property read or an element index.
type Step struct {
	// Accessor is the property to read, empty for index steps.
	Accessor string

	// Name is the property name, read instead when a record has no Accessor.
	// Records of different types may expose the same property under different accessors.
	Name string

	// Index selects a collection element, -1 for property steps.
	Index int
}

// Property returns the step that reads a property named after its accessor.
func Property(accessor string) Step {
	return Named(accessor, accessor)
}

// Named returns the step that reads a property by accessor, falling back to its name.
func Named(name, accessor string) Step {
	return Step{Accessor: accessor, Name: name, Index: -1}
}

// Element returns the step that selects a collection element.
func Element(index int) Step {
	return Step{Index: index}
}

// IsIndex reports whether the step selects a collection element.
func (s Step) IsIndex() bool {
	return s.Index >= 0
}

// Path is the sequence of steps from a record to a column value, e.g. "Lines[0].Amount".
type Path []Step

// String returns the path as a string.
func (p Path) String() string {
	var sb strings.Builder

	for i, step := range p {
		if step.IsIndex() {
			sb.WriteString("[" + strconv.Itoa(step.Index) + "]")
			continue
		}

		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(step.Accessor)
	}

	return sb.String()
}

// append returns a new path with the step added, never sharing storage with p.
func (p Path) append(step Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)

	return append(out, step)
}

// ResolvePath derives the column for a name by splitting it on the delimiter
// and matching the segments against the schema tree. A segment that follows a
// repeated node must be a numeric index. Child names may themselves contain
// the delimiter, the longest matching child name wins.
func ResolvePath(root *schema.Node, name string) (Column, error) {
	tokens := common.SplitName(name)
	if len(tokens) == 0 {
		return Column{}, fmt.Errorf("%w: empty name", ErrUnknownColumn)
	}

	var path Path

	node := root
	indexed := false

	for i := 0; i < len(tokens); {
		if node.Repeated && !indexed {
			index, err := strconv.Atoi(tokens[i])
			if err != nil || index < 0 || index >= node.ArraySize {
				return Column{}, fmt.Errorf("%w: %q: %q is not an index of %s", ErrUnknownColumn, name, tokens[i], node.Name)
			}

			path = path.append(Element(index))
			node = node.Element()
			indexed = true
			i++

			continue
		}

		child, used := matchChild(node, tokens[i:])
		if child == nil {
			return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}

		path = path.append(Named(child.Name, child.Accessor))
		node = child
		indexed = false
		i += used
	}

	return nodeColumn(name, path, node), nil
}

// matchChild finds the child named by the longest prefix of tokens.
func matchChild(node *schema.Node, tokens []string) (*schema.Node, int) {
	if node.Shape != schema.ShapeStruct {
		return nil, 0
	}

	for n := len(tokens); n > 0; n-- {
		if child := node.Child(strings.Join(tokens[:n], common.Delimiter)); child != nil {
			return child, n
		}
	}

	return nil, 0
}
