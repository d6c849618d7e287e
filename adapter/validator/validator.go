// Package validator contains the default [domain.Validator] implementation,
// which checks operators against the declared type of mapped fields.
package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var geoShapes = []string{"$box", "$center", "$centerSphere", "$polygon", "$geometry"}

// check is one call to [Validator.IsCompatible].
type check struct {
	field    *domain.FieldMetadata
	declared reflect.Type
	op       domain.Operator
	value    any
}

type rule func(c check) []string

type family struct {
	ops  []domain.Operator
	rule rule
}

// Validator implements [domain.Validator].
type Validator struct {
	lookup   domain.SchemaLookup
	families []family
}

// NewValidator returns a new implementation of [domain.Validator].
func NewValidator(options ...Option) domain.Validator {
	v := &Validator{}
	for _, option := range options {
		option(v)
	}
	v.families = []family{
		{ops: []domain.Operator{domain.OpIn, domain.OpNin, domain.OpAll}, rule: v.in},
		{ops: []domain.Operator{domain.OpExists}, rule: v.exists},
		{ops: []domain.Operator{domain.OpMod}, rule: v.mod},
		{ops: []domain.Operator{domain.OpSize}, rule: v.size},
		{ops: []domain.Operator{domain.OpGeoWithin}, rule: v.geoWithin},
		{ops: []domain.Operator{
			domain.OpPush, domain.OpAddToSet, domain.OpPull,
			domain.OpPullAll, domain.OpPop,
		}, rule: v.arrayUpdate},
		{ops: []domain.Operator{domain.OpInc, domain.OpMul}, rule: v.arithmetic},
		{ops: []domain.Operator{
			domain.OpImplicit, domain.OpEq, domain.OpNe,
			domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte,
			domain.OpSet, domain.OpSetOnInsert, domain.OpMax, domain.OpMin,
		}, rule: v.equality},
	}
	return v
}

// IsCompatible implements [domain.Validator]. Operators that no rule claims
// are compatible.
func (v *Validator) IsCompatible(field *domain.FieldMetadata, declared reflect.Type, op domain.Operator, value any, failures *[]domain.ValidationFailure) bool {
	if failures == nil {
		panic("validator: nil failures")
	}
	c := check{field: field, declared: declared, op: op, value: value}
	for _, fam := range v.families {
		if !slices.Contains(fam.ops, op) {
			continue
		}
		msgs := fam.rule(c)
		for _, msg := range msgs {
			*failures = append(*failures, domain.ValidationFailure{Operator: op, Message: msg})
		}
		return len(msgs) == 0
	}
	return true
}

func (v *Validator) in(c check) []string {
	if c.value == nil {
		return fail("%s requires a list or a map, got nil", c.op)
	}
	rv := reflect.ValueOf(c.value)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		// encoded as null
		return fail("%s requires a list or a map, got nil %T", c.op, c.value)
	}
	if structure.IsSequence(c.value) || rv.Kind() == reflect.Map {
		return nil
	}
	return fail("%s requires a list or a map, got %T", c.op, c.value)
}

func (v *Validator) exists(c check) []string {
	if _, ok := c.value.(bool); !ok {
		return fail("%s requires a bool, got %T", c.op, c.value)
	}
	return nil
}

func (v *Validator) mod(c check) []string {
	if !structure.IsSequence(c.value) {
		return fail("%s requires a list of two integers, got %T", c.op, c.value)
	}
	items, err := structure.Slice(c.value)
	if err != nil || len(items) != 2 {
		return fail("%s requires a list of two integers, got %d items", c.op, len(items))
	}
	for _, item := range items {
		if !structure.NumberKindOf(item).Integer() {
			return fail("%s requires a list of two integers, got an item of type %T", c.op, item)
		}
	}
	return nil
}

func (v *Validator) size(c check) []string {
	var msgs []string
	t := c.declared
	if c.field != nil {
		t = c.field.Type
	}
	if !isArrayType(domain.Deref(t)) {
		msgs = append(msgs, fmt.Sprintf("%s requires a list field, got %v", c.op, t))
	}
	if !structure.NumberKindOf(c.value).Integer() {
		msgs = append(msgs, fmt.Sprintf("%s requires an integer, got %T", c.op, c.value))
	}
	return msgs
}

func (v *Validator) geoWithin(c check) []string {
	keys, ok := structure.DocumentKeys(c.value)
	if !ok {
		return fail("%s requires a document, got %T", c.op, c.value)
	}
	isShape := func(k string) bool { return slices.Contains(geoShapes, k) }
	if !slices.ContainsFunc(keys, isShape) {
		return fail("%s requires one of %v, got %v", c.op, geoShapes, keys)
	}
	return nil
}

func (v *Validator) arrayUpdate(c check) []string {
	t := domain.Deref(c.declared)
	if t == nil || t.Kind() == reflect.Interface {
		return nil
	}
	if !isArrayType(t) {
		return fail("%s requires a list field, got %v", c.op, c.declared)
	}

	switch c.op {
	case domain.OpPop:
		return nil
	case domain.OpPull:
		if _, ok := structure.DocumentKeys(c.value); ok {
			// a condition on the items
			return nil
		}
	case domain.OpPullAll:
		if !structure.IsSequence(c.value) {
			return fail("%s requires a list, got %T", c.op, c.value)
		}
	}

	elem := check{field: c.field, declared: t.Elem(), op: domain.OpEq, value: c.value}
	if !structure.IsSequence(c.value) {
		return v.equality(elem)
	}
	items, err := structure.Slice(c.value)
	if err != nil {
		return fail("%s cannot read %T: %v", c.op, c.value, err)
	}
	var msgs []string
	for _, item := range items {
		elem.value = item
		msgs = append(msgs, v.equality(elem)...)
	}
	return msgs
}

func (v *Validator) arithmetic(c check) []string {
	t := domain.Deref(c.declared)
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64, reflect.Interface:
		return nil
	}
	return fail("%s requires a numeric field, got %v", c.op, c.declared)
}

// equality runs the type checks shared by comparisons and value updates.
// Nil values and unknown types are always compatible.
func (v *Validator) equality(c check) []string {
	if c.value == nil || c.declared == nil {
		return nil
	}
	declared := domain.Deref(c.declared)

	if key, ok := keyOf(c.value); ok {
		return v.keyValue(c, declared, key)
	}

	if dk := declaredNumberKind(declared); dk != structure.NotNumber {
		if widens(structure.NumberKindOf(c.value), dk) {
			return nil
		}
		return fail("value of type %T is not compatible with %v field for %s", c.value, c.declared, c.op)
	}

	if isRegex(c.value) {
		if declared.Kind() == reflect.String {
			return nil
		}
		return fail("regular expression is not compatible with %v field for %s", c.declared, c.op)
	}

	if declared == domain.KeyType {
		if v.lookup != nil && v.lookup.IsEntity(reflect.TypeOf(c.value)) {
			return nil
		}
		return fail("value of type %T is not a mapped entity for %v field for %s", c.value, c.declared, c.op)
	}

	if structure.IsSequence(c.value) {
		return nil
	}

	if assignable(reflect.TypeOf(c.value), c.declared) {
		return nil
	}

	// raw documents can replace embedded values
	if declared.Kind() == reflect.Struct || declared.Kind() == reflect.Map {
		if _, ok := structure.DocumentKeys(c.value); ok {
			return nil
		}
	}
	return fail("value of type %T is not compatible with %v field for %s", c.value, c.declared, c.op)
}

func (v *Validator) keyValue(c check, declared reflect.Type, key domain.Key) []string {
	if declared == domain.KeyType {
		if c.field != nil && c.field.RefType != nil && key.Type != nil && key.Type != c.field.RefType {
			return fail("key of %v is not compatible with references to %v for %s", key.Type, c.field.RefType, c.op)
		}
		return nil
	}
	if key.Type != nil && domain.Deref(key.Type) == declared {
		return nil
	}
	return fail("key of %v is not compatible with %v field for %s", key.Type, c.declared, c.op)
}

func keyOf(v any) (domain.Key, bool) {
	switch t := v.(type) {
	case domain.Key:
		return t, true
	case *domain.Key:
		if t != nil {
			return *t, true
		}
	}
	return domain.Key{}, false
}

func isRegex(v any) bool {
	switch v.(type) {
	case *regexp.Regexp, regexp.Regexp, primitive.Regex:
		return true
	}
	return false
}

// declaredNumberKind returns the number kind of fields that only accept
// numbers. Fields declared int are stored as 64-bit integers.
func declaredNumberKind(t reflect.Type) structure.NumberKind {
	switch t.Kind() {
	case reflect.Int32:
		return structure.Int32
	case reflect.Int64, reflect.Int:
		return structure.Int64
	case reflect.Float64:
		return structure.Float64
	}
	return structure.NotNumber
}

// widens reports whether a value of kind from can be stored in a field of
// kind to without loss.
func widens(from, to structure.NumberKind) bool {
	switch {
	case from == to:
		return true
	case from == structure.Int32:
		return to == structure.Int64 || to == structure.Float64
	case from == structure.Int64:
		return to == structure.Float64
	}
	return false
}

func assignable(value, declared reflect.Type) bool {
	if value.AssignableTo(declared) {
		return true
	}
	dv, dd := domain.Deref(value), domain.Deref(declared)
	if dv.AssignableTo(dd) {
		return true
	}
	switch dd.Kind() {
	case reflect.String, reflect.Bool:
		// named strings and bools share the wire form of their kind
		return dv.Kind() == dd.Kind()
	case reflect.Interface:
		return value.Implements(dd)
	}
	return false
}

func isArrayType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func fail(format string, args ...any) []string {
	return []string{fmt.Sprintf(format, args...)}
}
