package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"tabular-mapper/internal/common"
	"tabular-mapper/internal/diagnostic"
	"tabular-mapper/internal/introspect"
	"tabular-mapper/primitive"
)

// Generator infers schema trees from records and merges them.
// A Generator is not safe for concurrent use.
type Generator struct {
	introspector introspect.Introspector
	logger       *zap.Logger
	diagnostics  diagnostic.Diagnostics
}

// NewGenerator creates a new Generator. A nil logger discards all output.
func NewGenerator(in introspect.Introspector, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{introspector: in, logger: logger}
}

// Diagnostics returns what was collected so far.
func (g *Generator) Diagnostics() diagnostic.Diagnostics {
	return g.diagnostics
}

// Infer builds the schema tree of one record. The root is an unnamed struct node.
func (g *Generator) Infer(record any) (*Node, error) {
	return g.inferRoot("", record)
}

// InferAll folds Infer and Merge over the records from left to right.
// The result does not depend on the order of the records.
func (g *Generator) InferAll(records []any) (*Node, error) {
	root := NewStruct("", "")

	for i, record := range records {
		label := "#" + strconv.Itoa(i)

		node, err := g.inferRoot(label, record)
		if err != nil {
			return nil, g.attach(label, err)
		}

		root, err = g.merge(label, "", root, node)
		if err != nil {
			return nil, g.attach(label, fmt.Errorf("record %s: %w", label, err))
		}
	}

	if ce := g.logger.Check(zap.DebugLevel, "schema inferred"); ce != nil {
		ce.Write(zap.Int("records", len(records)), zap.String("schema", spew.Sdump(root)))
	}

	return root, nil
}

// attach records a conflict as an error diagnostic and hands the collected
// diagnostics to the *ConflictError, since the generator is dropped on failure.
func (g *Generator) attach(label string, err error) error {
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		return err
	}

	g.diagnostics.AddError(diagnostic.CodeSchemaConflict, conflict.Error(), label, conflict.Path)
	conflict.Record = label
	conflict.Diagnostics = g.Diagnostics()

	return err
}

// Merge unifies two schema trees of the same field.
func (g *Generator) Merge(a, b *Node) (*Node, error) {
	return g.merge("", "", a, b)
}

func (g *Generator) inferRoot(label string, record any) (*Node, error) {
	children, err := g.inferFields(label, "", record)
	if err != nil {
		if label == "" {
			return nil, fmt.Errorf("infer record: %w", err)
		}

		return nil, fmt.Errorf("infer record %s: %w", label, err)
	}

	return NewStruct("", "", children...), nil
}

func (g *Generator) inferFields(label, path string, record any) ([]*Node, error) {
	props, err := g.introspector.Properties(record)
	if err != nil {
		return nil, err
	}

	children := make([]*Node, 0, len(props))

	for _, prop := range props {
		fieldPath := common.JoinName(path, prop.Name)

		var child *Node

		value, err := g.introspector.Invoke(record, prop.Accessor)
		if err != nil {
			g.accessorFailure(label, fieldPath, prop.Accessor, err)
			child = declared(prop)
		} else {
			child, err = g.inferValue(label, fieldPath, prop, value)
			if err != nil {
				return nil, err
			}
		}

		child.Name, child.Accessor, child.Ordinal = prop.Name, prop.Accessor, prop.Ordinal
		children = append(children, child)
	}

	return children, nil
}

// inferValue builds the node of one property value. Name, accessor and ordinal are set by the caller.
func (g *Generator) inferValue(label, path string, prop introspect.Property, value any) (*Node, error) {
	category, kind := g.introspector.Classify(value)

	switch category {
	case introspect.CategoryNull:
		return declared(prop), nil

	case introspect.CategoryScalar:
		if prop.Kind == primitive.KindDate && kind == primitive.KindTimestamp {
			kind = primitive.KindDate
		}

		return &Node{Shape: ShapeScalar, Kind: kind}, nil

	case introspect.CategoryRecord:
		children, err := g.inferFields(label, path, value)
		if err != nil {
			if !errors.Is(err, introspect.ErrNotRecord) {
				return nil, err
			}

			g.unsupported(label, path, err.Error())

			return &Node{Shape: ShapeNull}, nil
		}

		return NewStruct("", "", children...), nil

	case introspect.CategoryCollection:
		return g.inferCollection(label, path, prop, value)

	default:
		g.unsupported(label, path, fmt.Sprintf("cannot classify %T", value))
		return &Node{Shape: ShapeNull}, nil
	}
}

// inferCollection folds the element schemas of a collection into one repeated node.
func (g *Generator) inferCollection(label, path string, prop introspect.Property, value any) (*Node, error) {
	elems, _ := g.introspector.Elements(value)
	elemProp := introspect.Property{Name: prop.Name, Accessor: prop.Accessor}

	elem := &Node{Shape: ShapeNull}

	for _, v := range elems {
		if category, _ := g.introspector.Classify(v); category == introspect.CategoryCollection {
			g.unsupported(label, path, "nested collections are not supported")
			continue
		}

		node, err := g.inferValue(label, path, elemProp, v)
		if err != nil {
			return nil, err
		}

		elem, err = g.merge(label, path, elem, node)
		if err != nil {
			return nil, err
		}
	}

	out := *elem
	out.Repeated = true
	out.ArraySize = len(elems)

	return &out, nil
}

func (g *Generator) accessorFailure(label, path, accessor string, err error) {
	g.logger.Warn("property read failed, using null",
		zap.String("record", label),
		zap.String("path", path),
		zap.String("accessor", accessor),
		zap.Error(err))
	g.diagnostics.AddWarning(diagnostic.CodeAccessorFailure, err.Error(), label, path)
}

func (g *Generator) unsupported(label, path, message string) {
	g.logger.Warn("unsupported value, using placeholder",
		zap.String("record", label),
		zap.String("path", path),
		zap.String("reason", message))
	g.diagnostics.AddWarning(diagnostic.CodeUnsupportedValue, message, label, path)
}

// declared returns the node for a property whose value is unknown:
// a scalar of the declared kind, or a placeholder.
func declared(prop introspect.Property) *Node {
	if prop.Kind != 0 {
		return &Node{Shape: ShapeScalar, Kind: prop.Kind}
	}

	return &Node{Shape: ShapeNull}
}
