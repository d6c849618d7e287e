package domain

import (
	"reflect"
	"strings"
)

// SchemaID is a handle to a [Schema] node in the mapper arena.
type SchemaID int

// NoSchema is the [SchemaID] of fields that do not embed a mapped type.
const NoSchema SchemaID = -1

// EncodingKind tells which strategy encodes a field value.
type EncodingKind uint8

const (
	// GenericEncoding encodes values through the [LeafCodec].
	GenericEncoding EncodingKind = iota
	// CustomEncoding encodes values through a [FieldHandler].
	CustomEncoding
)

// Encoding is selected once, when the schema is built, and stored on the
// field so that encoding never inspects types again.
type Encoding struct {
	Kind    EncodingKind
	Handler FieldHandler
}

// FieldMetadata describes one mapped field. It is immutable after the schema
// is built.
type FieldMetadata struct {
	// Name is the Go field name.
	Name string
	// WireName is the key used in wire documents.
	WireName string
	// Type is the declared field type.
	Type reflect.Type
	// Index is the field index path, usable with [reflect.Value.FieldByIndex].
	Index []int
	// Collection is set for slices and arrays, excluding []byte.
	Collection bool
	// Map is set for map fields.
	Map bool
	// Reference is set for fields storing the id of another entity.
	Reference bool
	// ID is set for the field mapped to "_id".
	ID bool
	// RefType is the referenced entity type of reference fields.
	RefType reflect.Type
	// Embedded is the schema of the embedded type, or [NoSchema].
	Embedded SchemaID
	// Encoding is the strategy used to encode values of this field.
	Encoding Encoding
}

// ElemType returns the element type of collections and maps, or the declared
// type otherwise.
func (f *FieldMetadata) ElemType() reflect.Type {
	t := Deref(f.Type)
	if f.Collection || f.Map {
		return t.Elem()
	}
	return t
}

// Schema is one node of the schema arena.
type Schema struct {
	ID         SchemaID
	Name       string
	Type       reflect.Type
	Collection string
	Entity     bool
	Fields     []*FieldMetadata
	IDField    *FieldMetadata
	byWire     map[string]*FieldMetadata
	byName     map[string]*FieldMetadata
}

// NewSchema returns an empty schema for the given type.
func NewSchema(id SchemaID, t reflect.Type) *Schema {
	return &Schema{
		ID:     id,
		Name:   t.String(),
		Type:   t,
		byWire: make(map[string]*FieldMetadata),
		byName: make(map[string]*FieldMetadata),
	}
}

// AddField appends a field to the schema. Wire names must be unique.
func (s *Schema) AddField(f *FieldMetadata) error {
	if _, ok := s.byWire[f.WireName]; ok {
		return ErrDuplicateField{Class: s.Name, WireName: f.WireName}
	}
	s.Fields = append(s.Fields, f)
	s.byWire[f.WireName] = f
	if _, ok := s.byName[f.Name]; !ok {
		s.byName[f.Name] = f
	}
	if f.ID {
		s.IDField = f
	}
	return nil
}

// Field finds a field by wire name, then by Go field name.
func (s *Schema) Field(segment string) (*FieldMetadata, bool) {
	if f, ok := s.byWire[segment]; ok {
		return f, true
	}
	f, ok := s.byName[segment]
	return f, ok
}

// SegmentKind classifies a path segment.
type SegmentKind uint8

const (
	// FieldSegment is a segment resolved to a mapped field.
	FieldSegment SegmentKind = iota
	// IndexSegment is an all-digits array index.
	IndexSegment
	// PositionalSegment is one of the positional update markers: $, $[]
	// or $[identifier].
	PositionalSegment
	// MapKeySegment is a key inside a map field.
	MapKeySegment
	// RawSegment is a segment carried without validation.
	RawSegment
)

// Segment is one element of a [ResolvedPath].
type Segment struct {
	Kind SegmentKind
	// Name is the segment as written by the caller.
	Name string
	// Wire is the translated segment.
	Wire string
	// Field is set for [FieldSegment].
	Field *FieldMetadata
}

// ResolvedPath is the result of resolving a dotted path. It is created per
// call and never mutated.
type ResolvedPath struct {
	Root     SchemaID
	Original string
	Segments []Segment
	// Field is the metadata of the last field segment. Nil when the path
	// ends on a raw key.
	Field    *FieldMetadata
	WirePath string
}

// String implements [fmt.Stringer].
func (p ResolvedPath) String() string {
	return p.WirePath
}

// ValueType returns the type a value written at the path should have, or nil
// if unknown.
func (p ResolvedPath) ValueType() reflect.Type {
	if p.Field == nil {
		return nil
	}
	last := -1
	for n, s := range p.Segments {
		if s.Kind == FieldSegment {
			last = n
		}
	}
	t := p.Field.Type
	for _, s := range p.Segments[last+1:] {
		t = Deref(t)
		switch s.Kind {
		case IndexSegment, PositionalSegment:
			if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
				return nil
			}
			t = t.Elem()
		case MapKeySegment:
			if t.Kind() != reflect.Map {
				return nil
			}
			t = t.Elem()
		default:
			return nil
		}
	}
	return t
}

// JoinWire joins wire segments back into a dotted path.
func JoinWire(segments []Segment) string {
	parts := make([]string, len(segments))
	for n, s := range segments {
		parts[n] = s.Wire
	}
	return strings.Join(parts, ".")
}

// Key identifies a stored entity without embedding its data.
type Key struct {
	// Type is the referenced entity type.
	Type       reflect.Type
	Collection string
	ID         any
}

// KeyType is the [reflect.Type] of [Key].
var KeyType = reflect.TypeFor[Key]()

// ValidationFailure is a diagnostic produced by a [Validator].
type ValidationFailure struct {
	// Operator is the operator that was rejected.
	Operator Operator
	Message  string
}

// String implements [fmt.Stringer].
func (v ValidationFailure) String() string {
	return v.Message
}

// UpdateIntent is one accumulated update operation, consumed once at compile
// time.
type UpdateIntent struct {
	Operator Operator
	Path     ResolvedPath
	// Value is already encoded. When Each is set, it is a list of items.
	Value any
	Each  bool
	Push  PushOptions
}

// Deref strips pointer indirections from a type.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
