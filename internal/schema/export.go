package schema

import (
	"gopkg.in/yaml.v3"
)

// FieldDescription is the exported form of a schema node.
type FieldDescription struct {
	Name      string             `yaml:"name"`
	Accessor  string             `yaml:"accessor,omitempty"`
	Type      string             `yaml:"type"`
	Repeated  bool               `yaml:"repeated,omitempty"`
	ArraySize int                `yaml:"array_size,omitempty"`
	Fields    []FieldDescription `yaml:"fields,omitempty"`
}

// Describe converts the children of a schema root into their exported form.
func Describe(root *Node) []FieldDescription {
	fields := make([]FieldDescription, 0, len(root.Children))
	for _, c := range root.Children {
		fields = append(fields, describeNode(c))
	}

	return fields
}

// DescribeYAML serializes the exported form of a schema root.
func DescribeYAML(root *Node) ([]byte, error) {
	return yaml.Marshal(Describe(root))
}

func describeNode(n *Node) FieldDescription {
	fd := FieldDescription{
		Name:      n.Name,
		Accessor:  n.Accessor,
		Repeated:  n.Repeated,
		ArraySize: n.ArraySize,
	}

	if n.Accessor == n.Name {
		fd.Accessor = ""
	}

	switch n.Shape {
	case ShapeScalar:
		fd.Type = n.Kind.TypeName()
	case ShapeStruct:
		fd.Type = "struct"
		for _, c := range n.Children {
			fd.Fields = append(fd.Fields, describeNode(c))
		}
	default:
		fd.Type = "null"
	}

	return fd
}
