// Package mapper contains the default [domain.Mapper] implementation.
package mapper

import (
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/adapter/codec"
	"github.com/vinicius-lino-figueiredo/godm/adapter/handler"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/tags"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type collectionNamer interface {
	CollectionName() string
}

var (
	collectionNamerType = reflect.TypeFor[collectionNamer]()
	marshalerType       = reflect.TypeFor[bson.Marshaler]()
	valueMarshalerType  = reflect.TypeFor[bsoncodec.ValueMarshaler]()
)

// leafTypes are stored as single values and never mapped as embedded
// schemas, even when they are structs.
var leafTypes = map[reflect.Type]bool{
	reflect.TypeFor[time.Time]():               true,
	reflect.TypeFor[regexp.Regexp]():           true,
	reflect.TypeFor[uuid.UUID]():               true,
	reflect.TypeFor[bson.D]():                  true,
	reflect.TypeFor[bson.M]():                  true,
	reflect.TypeFor[bson.A]():                  true,
	reflect.TypeFor[bson.Raw]():                true,
	reflect.TypeFor[primitive.ObjectID]():      true,
	reflect.TypeFor[primitive.DateTime]():      true,
	reflect.TypeFor[primitive.Decimal128]():    true,
	reflect.TypeFor[primitive.Binary]():        true,
	reflect.TypeFor[primitive.Regex]():         true,
	reflect.TypeFor[primitive.Timestamp]():     true,
	reflect.TypeFor[primitive.JavaScript]():    true,
	reflect.TypeFor[primitive.CodeWithScope](): true,
	reflect.TypeFor[primitive.DBPointer]():     true,
	reflect.TypeFor[primitive.MinKey]():        true,
	reflect.TypeFor[primitive.MaxKey]():        true,
	domain.KeyType:                             true,
}

// pendingRef is a reference field whose target id field is checked once the
// whole type graph is built.
type pendingRef struct {
	class  string
	field  string
	target domain.SchemaID
}

// Mapper implements [domain.Mapper]. Schemas are kept in an arena and
// referenced by [domain.SchemaID], so recursive types are plain cycles of
// ids.
type Mapper struct {
	mu         sync.RWMutex
	schemas    []*domain.Schema
	byType     map[reflect.Type]domain.SchemaID
	generation uint64
	handlers   map[reflect.Type]domain.FieldHandler
	codec      domain.LeafCodec
	reference  domain.FieldHandler
	log        *zap.Logger
	// promoted holds the embedded schemas turned into entities by the
	// running Map call.
	promoted []*domain.Schema
}

// NewMapper returns a new implementation of [domain.Mapper].
func NewMapper(options ...Option) domain.Mapper {
	m := &Mapper{
		byType:   make(map[reflect.Type]domain.SchemaID),
		handlers: make(map[reflect.Type]domain.FieldHandler),
	}
	for _, option := range options {
		option(m)
	}
	if m.codec == nil {
		m.codec = codec.NewCodec()
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.reference = handler.NewReference(m, m.codec)
	return m
}

// Map implements [domain.Mapper]. Either every entity is registered or none
// is.
func (m *Mapper) Map(entities ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mark := len(m.schemas)
	var pending []pendingRef
	m.promoted = m.promoted[:0]

	rollback := func() {
		for _, sc := range m.schemas[mark:] {
			delete(m.byType, sc.Type)
		}
		m.schemas = m.schemas[:mark]
		for _, sc := range m.promoted {
			sc.Entity, sc.Collection = false, ""
		}
	}

	for _, entity := range entities {
		t := typeOf(entity)
		if t == nil || t.Kind() != reflect.Struct {
			rollback()
			return domain.ErrNotStruct{Type: t}
		}
		if _, err := m.build(t, true, &pending); err != nil {
			rollback()
			return err
		}
	}

	for _, p := range pending {
		if m.schemas[p.target].IDField == nil {
			rollback()
			return domain.ErrNoIDField{Class: p.class, Field: p.field}
		}
	}

	if len(m.schemas) > mark || len(m.promoted) > 0 {
		m.generation++
	}
	return nil
}

func (m *Mapper) build(t reflect.Type, entity bool, pending *[]pendingRef) (domain.SchemaID, error) {
	if id, ok := m.byType[t]; ok {
		if sc := m.schemas[id]; entity && !sc.Entity {
			sc.Entity = true
			sc.Collection = collectionName(t)
			m.promoted = append(m.promoted, sc)
		}
		return id, nil
	}

	id := domain.SchemaID(len(m.schemas))
	sc := domain.NewSchema(id, t)
	if entity {
		sc.Entity = true
		sc.Collection = collectionName(t)
	}
	m.schemas = append(m.schemas, sc)
	m.byType[t] = id

	if err := m.addFields(sc, t, nil, pending); err != nil {
		return domain.NoSchema, err
	}

	m.log.Debug("mapped type",
		zap.String("type", sc.Name),
		zap.Bool("entity", sc.Entity),
		zap.Int("fields", len(sc.Fields)),
	)
	return id, nil
}

func (m *Mapper) addFields(sc *domain.Schema, t reflect.Type, prefix []int, pending *[]pendingRef) error {
	for n := range t.NumField() {
		sf := t.Field(n)
		if !sf.IsExported() {
			continue
		}
		tag := tags.Parse(sf)
		if tag.Skip {
			continue
		}
		index := append(append([]int(nil), prefix...), n)

		if tag.Inline && sf.Type.Kind() == reflect.Struct {
			if err := m.addFields(sc, sf.Type, index, pending); err != nil {
				return err
			}
			continue
		}

		f, err := m.field(sc, sf, tag, index, pending)
		if err != nil {
			return err
		}
		if err := sc.AddField(f); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapper) field(sc *domain.Schema, sf reflect.StructField, tag tags.Field, index []int, pending *[]pendingRef) (*domain.FieldMetadata, error) {
	t := domain.Deref(sf.Type)
	f := &domain.FieldMetadata{
		Name:       sf.Name,
		WireName:   tag.Name,
		Type:       sf.Type,
		Index:      index,
		Collection: isCollection(t),
		Map:        t.Kind() == reflect.Map,
		Reference:  tag.Reference,
		ID:         tag.Name == tags.IDName,
		Embedded:   domain.NoSchema,
	}

	elem := domain.Deref(f.ElemType())

	if f.Reference {
		f.Encoding = domain.Encoding{Kind: domain.CustomEncoding, Handler: m.reference}
		if elem == domain.KeyType {
			return f, nil
		}
		if elem.Kind() != reflect.Struct || m.isLeaf(elem) {
			return f, nil
		}
		f.RefType = elem
		target, err := m.build(elem, true, pending)
		if err != nil {
			return nil, err
		}
		*pending = append(*pending, pendingRef{class: sc.Name, field: sf.Name, target: target})
		return f, nil
	}

	if h, ok := m.handlers[sf.Type]; ok {
		f.Encoding = domain.Encoding{Kind: domain.CustomEncoding, Handler: h}
		return f, nil
	}

	if elem.Kind() == reflect.Struct && !m.isLeaf(elem) {
		id, err := m.build(elem, false, pending)
		if err != nil {
			return nil, err
		}
		f.Embedded = id
	}
	return f, nil
}

func (m *Mapper) isLeaf(t reflect.Type) bool {
	if leafTypes[t] {
		return true
	}
	if _, ok := m.handlers[t]; ok {
		return true
	}
	p := reflect.PointerTo(t)
	return t.Implements(marshalerType) || p.Implements(marshalerType) ||
		t.Implements(valueMarshalerType) || p.Implements(valueMarshalerType)
}

// SchemaOf implements [domain.SchemaLookup].
func (m *Mapper) SchemaOf(entity any) (domain.SchemaID, error) {
	t := typeOf(entity)
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byType[t]
	if !ok {
		return domain.NoSchema, domain.ErrUnknownEntity{Type: t}
	}
	return id, nil
}

// Schema implements [domain.SchemaLookup].
func (m *Mapper) Schema(id domain.SchemaID) *domain.Schema {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.schemas) {
		return nil
	}
	return m.schemas[id]
}

// ResolveField implements [domain.SchemaLookup].
func (m *Mapper) ResolveField(id domain.SchemaID, segment string) (*domain.FieldMetadata, bool) {
	sc := m.Schema(id)
	if sc == nil {
		return nil, false
	}
	return sc.Field(segment)
}

// EmbeddedSchema implements [domain.SchemaLookup].
func (m *Mapper) EmbeddedSchema(f *domain.FieldMetadata) (domain.SchemaID, bool) {
	if f == nil || f.Embedded == domain.NoSchema {
		return domain.NoSchema, false
	}
	return f.Embedded, true
}

// IsEntity implements [domain.SchemaLookup].
func (m *Mapper) IsEntity(t reflect.Type) bool {
	t = domain.Deref(t)
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byType[t]
	return ok && m.schemas[id].Entity
}

// Generation implements [domain.SchemaLookup].
func (m *Mapper) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

func typeOf(entity any) reflect.Type {
	t, ok := entity.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(entity)
	}
	return domain.Deref(t)
}

func isCollection(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func collectionName(t reflect.Type) string {
	if t.Implements(collectionNamerType) {
		return reflect.Zero(t).Interface().(collectionNamer).CollectionName()
	}
	if p := reflect.PointerTo(t); p.Implements(collectionNamerType) {
		return reflect.New(t).Interface().(collectionNamer).CollectionName()
	}
	return t.Name()
}
