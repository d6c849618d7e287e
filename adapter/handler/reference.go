// Package handler contains custom [domain.FieldHandler] implementations.
package handler

import (
	"fmt"
	"reflect"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"go.mongodb.org/mongo-driver/bson"
)

// Reference encodes the values of reference fields. Entities are replaced by
// their id, [domain.Key] values by the id they carry and lists by a list of
// ids. Any other value is encoded through the codec as it is. The update and
// filter builders only pass such values when validation is disabled, since the
// validator rejects raw ids for entity fields.
type Reference struct {
	lookup domain.SchemaLookup
	codec  domain.LeafCodec
}

// NewReference returns a new [domain.FieldHandler] for reference fields.
func NewReference(lookup domain.SchemaLookup, codec domain.LeafCodec) domain.FieldHandler {
	return &Reference{lookup: lookup, codec: codec}
}

// Encode implements [domain.FieldHandler].
func (r *Reference) Encode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case domain.Key:
		return r.codec.Encode(t.ID)
	case *domain.Key:
		if t == nil {
			return nil, nil
		}
		return r.codec.Encode(t.ID)
	}

	if structure.IsSequence(v) {
		items, err := structure.Slice(v)
		if err != nil {
			return nil, err
		}
		res := make(bson.A, len(items))
		for n, item := range items {
			if res[n], err = r.Encode(item); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	if !r.lookup.IsEntity(val.Type()) {
		return r.codec.Encode(v)
	}

	id, err := r.lookup.SchemaOf(val.Type())
	if err != nil {
		return nil, err
	}
	sc := r.lookup.Schema(id)
	if sc.IDField == nil {
		return nil, fmt.Errorf("%w: %s has no id field", domain.ErrEncode{Value: v}, sc.Name)
	}
	return r.codec.Encode(val.FieldByIndex(sc.IDField.Index).Interface())
}
