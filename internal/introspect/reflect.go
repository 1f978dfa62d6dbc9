package introspect

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"tabular-mapper/primitive"
)

// Reflect introspects Go values with reflection:
//   - structs and pointers to structs: exported fields, embedded struct fields promoted
//   - maps with string keys: one property per key, ordered by key
//   - values implementing Record: their own property list
//
// Property names come from the `tabular` tag, then the `json` tag, then the
// field name. `tabular:"-"` skips a field, `tabular:",date"` declares a
// time.Time field as a date.
type Reflect struct {
	cache sync.Map // reflect.Type -> *structInfo
}

// NewReflect creates a new Reflect introspector.
func NewReflect() *Reflect {
	return &Reflect{}
}

type structInfo struct {
	props   []Property
	indexes map[string][]int // accessor -> field index path
	names   map[string][]int // property name -> field index path
}

// Properties enumerates the properties of a record.
func (r *Reflect) Properties(record any) ([]Property, error) {
	if rec, ok := record.(Record); ok {
		return rec.Properties(), nil
	}

	rv, ok := indirect(reflect.ValueOf(record))
	if !ok {
		return nil, fmt.Errorf("%w: nil", ErrNotRecord)
	}

	switch {
	case rv.Kind() == reflect.Struct:
		return r.structInfo(rv.Type()).props, nil

	case isStringMap(rv.Type()):
		return mapProperties(rv), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotRecord, rv.Type())
	}
}

// Invoke reads one property of a record. A struct field is found by accessor or
// by property name. Reading a key a map does not hold yields nil.
func (r *Reflect) Invoke(record any, accessor string) (any, error) {
	if rec, ok := record.(Record); ok {
		return rec.Property(accessor)
	}

	rv, ok := indirect(reflect.ValueOf(record))
	if !ok {
		return nil, &AccessError{Accessor: accessor, Type: "nil", Err: ErrNotRecord}
	}

	switch {
	case rv.Kind() == reflect.Struct:
		info := r.structInfo(rv.Type())

		index, ok := info.indexes[accessor]
		if !ok {
			index, ok = info.names[accessor]
		}

		if !ok {
			return nil, &AccessError{Accessor: accessor, Type: rv.Type().String(), Err: ErrNoAccessor}
		}

		field, err := rv.FieldByIndexErr(index)
		if err != nil {
			return nil, &AccessError{Accessor: accessor, Type: rv.Type().String(), Err: err}
		}

		if !field.CanInterface() {
			return nil, &AccessError{
				Accessor: accessor,
				Type:     rv.Type().String(),
				Err:      fmt.Errorf("field is promoted through an unexported embedded type"),
			}
		}

		return field.Interface(), nil

	case isStringMap(rv.Type()):
		value := rv.MapIndex(reflect.ValueOf(accessor).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, nil
		}

		return value.Interface(), nil

	default:
		return nil, &AccessError{Accessor: accessor, Type: rv.Type().String(), Err: ErrNotRecord}
	}
}

// Elements returns the elements of a slice or array value.
func (r *Reflect) Elements(value any) ([]any, bool) {
	rv, ok := indirect(reflect.ValueOf(value))
	if !ok {
		return nil, false
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	if primitive.FromReflectType(rv.Type()) != 0 {
		// []byte and uuid.UUID are scalars
		return nil, false
	}

	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}

	return elems, true
}

// Classify resolves the category and scalar kind of a runtime value.
func (r *Reflect) Classify(value any) (CategoryEnum, primitive.KindEnum) {
	if _, ok := value.(Record); ok {
		return CategoryRecord, 0
	}

	rv, ok := indirect(reflect.ValueOf(value))
	if !ok {
		return CategoryNull, 0
	}

	if kind := primitive.FromValue(rv.Interface()); kind != 0 {
		return CategoryScalar, kind
	}

	switch {
	case rv.Kind() == reflect.Struct, isStringMap(rv.Type()):
		if rv.Kind() == reflect.Map && rv.IsNil() {
			return CategoryNull, 0
		}

		return CategoryRecord, 0

	case rv.Kind() == reflect.Slice:
		if rv.IsNil() {
			return CategoryNull, 0
		}

		return CategoryCollection, 0

	case rv.Kind() == reflect.Array:
		return CategoryCollection, 0

	default:
		return CategoryUnknown, 0
	}
}

func (r *Reflect) structInfo(t reflect.Type) *structInfo {
	if cached, ok := r.cache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := analyzeStruct(t)
	actual, _ := r.cache.LoadOrStore(t, info)

	return actual.(*structInfo)
}

// analyzeStruct extracts the properties of a struct type.
func analyzeStruct(t reflect.Type) *structInfo {
	info := &structInfo{indexes: make(map[string][]int), names: make(map[string][]int)}

	var namedEmbeds [][]int

	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() || promotedFrom(field.Index, namedEmbeds) {
			continue
		}

		name, opts := tagName(field)
		if name == "-" {
			continue
		}

		// embedded structs without an explicit name are represented by their promoted fields
		if field.Anonymous && isStructType(field.Type) {
			if !hasExplicitName(field) {
				continue
			}

			namedEmbeds = append(namedEmbeds, field.Index)
		}

		if _, taken := info.names[name]; taken {
			continue
		}

		if _, taken := info.indexes[field.Name]; taken {
			continue
		}

		kind := primitive.FromReflectType(field.Type)
		if kind == primitive.KindTimestamp && slices.Contains(opts, "date") {
			kind = primitive.KindDate
		}

		info.names[name] = field.Index
		info.indexes[field.Name] = field.Index
		info.props = append(info.props, Property{
			Name:     name,
			Accessor: field.Name,
			Kind:     kind,
			Category: categoryOf(field.Type, kind),
			Ordinal:  len(info.props),
		})
	}

	return info
}

func mapProperties(rv reflect.Value) []Property {
	elemKind := primitive.FromReflectType(rv.Type().Elem())
	category := categoryOf(rv.Type().Elem(), elemKind)

	props := make([]Property, 0, rv.Len())
	for _, key := range rv.MapKeys() {
		name := key.String()
		props = append(props, Property{
			Name:     name,
			Accessor: name,
			Kind:     elemKind,
			Category: category,
		})
	}

	slices.SortFunc(props, func(a, b Property) int {
		return strings.Compare(a.Name, b.Name)
	})

	return props
}

// categoryOf returns the declared category of a type.
func categoryOf(t reflect.Type, kind primitive.KindEnum) CategoryEnum {
	if kind != 0 {
		return CategoryScalar
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch {
	case t.Kind() == reflect.Struct, isStringMap(t):
		return CategoryRecord
	case t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
		return CategoryCollection
	default:
		return CategoryUnknown
	}
}

// tagName returns the property name of a field and its `tabular` tag options.
func tagName(field reflect.StructField) (string, []string) {
	var (
		name string
		opts []string
	)

	if tag, ok := field.Tag.Lookup("tabular"); ok {
		if tag == "-" {
			return "-", nil
		}

		parts := strings.Split(tag, ",")
		name, opts = parts[0], parts[1:]
	}

	if name == "" {
		if tag, ok := field.Tag.Lookup("json"); ok {
			if tag == "-" {
				return "-", nil
			}

			name, _, _ = strings.Cut(tag, ",")
		}
	}

	if name == "" {
		name = field.Name
	}

	return name, opts
}

func hasExplicitName(field reflect.StructField) bool {
	name, _ := tagName(field)
	return name != field.Name
}

// promotedFrom reports whether a field index path lies inside one of the embedded fields.
func promotedFrom(index []int, embeds [][]int) bool {
	for _, prefix := range embeds {
		if len(index) > len(prefix) && slices.Equal(index[:len(prefix)], prefix) {
			return true
		}
	}

	return false
}

func isStructType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct && primitive.FromReflectType(t) == 0
}

func isStringMap(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// indirect strips pointers and interfaces. It reports false for nil.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}

		rv = rv.Elem()
	}

	return rv, rv.IsValid()
}
