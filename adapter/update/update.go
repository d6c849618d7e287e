// Package update contains the update operation compiler. It turns typed,
// dotted field paths and Go values into a MongoDB update document.
package update

import (
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"go.mongodb.org/mongo-driver/bson"
)

// Update accumulates update operations against one mapped type. The first
// failing call records its error and every later call is a no-op. An Update
// must not be shared between goroutines.
type Update struct {
	resolver  domain.PathResolver
	validator domain.Validator
	encoder   domain.ValueEncoder
	root      domain.SchemaID
	validate  bool
	intents   []domain.UpdateIntent
	err       error
}

// New returns an empty update for the schema root.
func New(resolver domain.PathResolver, validator domain.Validator, encoder domain.ValueEncoder, root domain.SchemaID) *Update {
	return &Update{
		resolver:  resolver,
		validator: validator,
		encoder:   encoder,
		root:      root,
		validate:  true,
	}
}

// DisableValidation turns off path and type validation for the calls that
// follow.
func (u *Update) DisableValidation() *Update {
	u.validate = false
	return u
}

// EnableValidation turns validation back on for the calls that follow.
func (u *Update) EnableValidation() *Update {
	u.validate = true
	return u
}

// Err returns the first error recorded by this update.
func (u *Update) Err() error {
	return u.err
}

// Root returns the schema the update is built against.
func (u *Update) Root() domain.SchemaID {
	return u.root
}

// Intents returns a copy of the accumulated operations.
func (u *Update) Intents() []domain.UpdateIntent {
	return slices.Clone(u.intents)
}

// Set sets the value of a field.
func (u *Update) Set(path string, value any) *Update {
	return u.single(domain.OpSet, path, value)
}

// SetOnInsert sets the value of a field only when an upsert inserts a new
// document.
func (u *Update) SetOnInsert(path string, value any) *Update {
	return u.single(domain.OpSetOnInsert, path, value)
}

// Unset removes a field.
func (u *Update) Unset(path string) *Update {
	if u.err != nil {
		return u
	}
	rp, ok := u.resolve(path)
	if !ok {
		return u
	}
	u.store(domain.UpdateIntent{Operator: domain.OpUnset, Path: rp, Value: ""})
	return u
}

// Max replaces a numeric field if the given value is greater.
func (u *Update) Max(path string, value any) *Update {
	return u.numeric(domain.OpMax, path, value, false)
}

// Min replaces a numeric field if the given value is lower.
func (u *Update) Min(path string, value any) *Update {
	return u.numeric(domain.OpMin, path, value, false)
}

// Inc increments a numeric field. The delta defaults to 1, and passing more
// than one delta is an illegal operand.
func (u *Update) Inc(path string, delta ...any) *Update {
	return u.delta(path, delta, false)
}

// Dec decrements a numeric field. The delta defaults to 1 and is stored as a
// negated $inc. Passing more than one delta is an illegal operand.
func (u *Update) Dec(path string, delta ...any) *Update {
	return u.delta(path, delta, true)
}

// Mul multiplies a numeric field.
func (u *Update) Mul(path string, factor any) *Update {
	return u.numeric(domain.OpMul, path, factor, false)
}

// Push appends a value to an array field. Lists are pushed item by item.
func (u *Update) Push(path string, value any, options ...domain.PushOption) *Update {
	if u.err != nil {
		return u
	}
	var po domain.PushOptions
	for _, option := range options {
		option(&po)
	}
	if po.HasPosition && po.Position < 0 {
		u.err = domain.ErrIllegalOperand{Operator: domain.OpPush, Value: po.Position, Reason: "position must not be negative"}
		return u
	}
	if po.Sort != nil && !validSort(po.Sort) {
		u.err = domain.ErrIllegalOperand{Operator: domain.OpPush, Value: po.Sort, Reason: "sort must be 1, -1 or a document"}
		return u
	}
	return u.array(domain.OpPush, path, value, po)
}

// AddToSet adds a value to an array field unless it is already present.
// Lists are added item by item.
func (u *Update) AddToSet(path string, value any) *Update {
	return u.array(domain.OpAddToSet, path, value, domain.PushOptions{})
}

// Pull removes every array item equal to value, or matching it when value is
// a condition document.
func (u *Update) Pull(path string, value any) *Update {
	return u.single(domain.OpPull, path, value)
}

// PullAll removes every array item equal to one of values.
func (u *Update) PullAll(path string, values any) *Update {
	if u.err != nil {
		return u
	}
	if !structure.IsSequence(values) {
		u.err = domain.ErrIllegalOperand{Operator: domain.OpPullAll, Value: values, Reason: "values must be a list"}
		return u
	}
	rp, ok := u.check(domain.OpPullAll, path, values)
	if !ok {
		return u
	}
	items, ok := u.encodeItems(rp.Field, values)
	if !ok {
		return u
	}
	u.store(domain.UpdateIntent{Operator: domain.OpPullAll, Path: rp, Value: items})
	return u
}

// RemoveFirst removes the first item of an array field.
func (u *Update) RemoveFirst(path string) *Update {
	return u.single(domain.OpPop, path, int32(-1))
}

// RemoveLast removes the last item of an array field.
func (u *Update) RemoveLast(path string) *Update {
	return u.single(domain.OpPop, path, int32(1))
}

// Rename renames a field. Both paths are resolved against the schema.
func (u *Update) Rename(path string, newPath string) *Update {
	if u.err != nil {
		return u
	}
	rp, ok := u.resolve(path)
	if !ok {
		return u
	}
	target, ok := u.resolve(newPath)
	if !ok {
		return u
	}
	u.store(domain.UpdateIntent{Operator: domain.OpRename, Path: rp, Value: target.WirePath})
	return u
}

// CurrentDate sets a field to the current date on the server.
func (u *Update) CurrentDate(path string) *Update {
	if u.err != nil {
		return u
	}
	rp, ok := u.resolve(path)
	if !ok {
		return u
	}
	u.store(domain.UpdateIntent{Operator: domain.OpCurrentDate, Path: rp, Value: true})
	return u
}

// Compile builds the update document. Operators keep the order of their
// first use, and so do paths inside each operator. Every call returns a new
// document.
func (u *Update) Compile() (bson.D, error) {
	if u.err != nil {
		return nil, u.err
	}
	doc := bson.D{}
	groups := make(map[domain.Operator]int)
	for _, intent := range u.intents {
		n, ok := groups[intent.Operator]
		if !ok {
			n = len(doc)
			groups[intent.Operator] = n
			doc = append(doc, bson.E{Key: string(intent.Operator), Value: bson.D{}})
		}
		group := doc[n].Value.(bson.D)
		doc[n].Value = append(group, bson.E{Key: intent.Path.WirePath, Value: compileValue(intent)})
	}
	return doc, nil
}

func compileValue(intent domain.UpdateIntent) any {
	value := structure.Copy(intent.Value)
	if !intent.Each {
		return value
	}
	res := bson.D{{Key: domain.ModEach, Value: value}}
	po := intent.Push
	if po.HasPosition {
		res = append(res, bson.E{Key: domain.ModPosition, Value: po.Position})
	}
	if po.HasSlice {
		res = append(res, bson.E{Key: domain.ModSlice, Value: po.Slice})
	}
	if po.Sort != nil {
		res = append(res, bson.E{Key: domain.ModSort, Value: structure.Copy(po.Sort)})
	}
	return res
}

func (u *Update) single(op domain.Operator, path string, value any) *Update {
	if u.err != nil {
		return u
	}
	rp, ok := u.check(op, path, value)
	if !ok {
		return u
	}
	encoded, ok := u.encode(rp.Field, value)
	if !ok {
		return u
	}
	u.store(domain.UpdateIntent{Operator: op, Path: rp, Value: encoded})
	return u
}

func (u *Update) numeric(op domain.Operator, path string, value any, negate bool) *Update {
	if u.err != nil {
		return u
	}
	if structure.NumberKindOf(value) == structure.NotNumber {
		u.err = domain.ErrIllegalOperand{Operator: op, Value: value}
		return u
	}
	rp, ok := u.check(op, path, value)
	if !ok {
		return u
	}
	encoded, ok := u.encode(nil, value)
	if !ok {
		return u
	}
	if negate {
		if encoded, ok = structure.Negate(encoded); !ok {
			u.err = domain.ErrIllegalOperand{Operator: op, Value: value, Reason: "value cannot be negated"}
			return u
		}
	}
	u.store(domain.UpdateIntent{Operator: op, Path: rp, Value: encoded})
	return u
}

func (u *Update) array(op domain.Operator, path string, value any, po domain.PushOptions) *Update {
	if u.err != nil {
		return u
	}
	rp, ok := u.check(op, path, value)
	if !ok {
		return u
	}
	intent := domain.UpdateIntent{Operator: op, Path: rp, Push: po}
	if structure.IsSequence(value) {
		if intent.Value, ok = u.encodeItems(rp.Field, value); !ok {
			return u
		}
		intent.Each = true
	} else {
		encoded, ok := u.encode(rp.Field, value)
		if !ok {
			return u
		}
		intent.Value = encoded
		if po.Modified() {
			intent.Value, intent.Each = bson.A{encoded}, true
		}
	}
	u.store(intent)
	return u
}

// check resolves the path and asks the validator whether op accepts value.
func (u *Update) check(op domain.Operator, path string, value any) (domain.ResolvedPath, bool) {
	rp, ok := u.resolve(path)
	if !ok {
		return rp, false
	}
	if !u.validate {
		return rp, true
	}
	var failures []domain.ValidationFailure
	if !u.validator.IsCompatible(rp.Field, rp.ValueType(), op, value, &failures) {
		u.err = domain.ErrValidation{Failures: failures}
		return rp, false
	}
	return rp, true
}

func (u *Update) resolve(path string) (domain.ResolvedPath, bool) {
	rp, err := u.resolver.Resolve(u.root, path, domain.WithResolveValidation(u.validate))
	if err != nil {
		u.err = err
		return rp, false
	}
	return rp, true
}

func (u *Update) encode(field *domain.FieldMetadata, value any) (any, bool) {
	encoded, err := u.encoder.Encode(field, value)
	if err != nil {
		u.err = err
		return nil, false
	}
	return encoded, true
}

func (u *Update) encodeItems(field *domain.FieldMetadata, values any) (bson.A, bool) {
	items, err := structure.Slice(values)
	if err != nil {
		u.err = err
		return nil, false
	}
	res := make(bson.A, len(items))
	for n, item := range items {
		if res[n], err = u.encoder.Encode(field, item); err != nil {
			u.err = err
			return nil, false
		}
	}
	return res, true
}

// store keeps the last value given for an operator and path, at the position
// of the first one.
func (u *Update) store(intent domain.UpdateIntent) {
	for n, prev := range u.intents {
		if prev.Operator == intent.Operator && prev.Path.WirePath == intent.Path.WirePath {
			u.intents[n] = intent
			return
		}
	}
	u.intents = append(u.intents, intent)
}

func (u *Update) delta(path string, delta []any, negate bool) *Update {
	if u.err != nil {
		return u
	}
	switch len(delta) {
	case 0:
		return u.numeric(domain.OpInc, path, 1, negate)
	case 1:
		return u.numeric(domain.OpInc, path, delta[0], negate)
	}
	u.err = domain.ErrIllegalOperand{
		Operator: domain.OpInc,
		Value:    delta,
		Reason:   fmt.Sprintf("expected at most one delta, got %d", len(delta)),
	}
	return u
}

func validSort(v any) bool {
	if _, ok := structure.DocumentKeys(v); ok {
		return true
	}
	switch t := v.(type) {
	case int:
		return t == 1 || t == -1
	case int32:
		return t == 1 || t == -1
	case int64:
		return t == 1 || t == -1
	}
	return false
}
