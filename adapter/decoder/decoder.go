// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"
	"strings"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/tags"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	dReflectType = reflect.TypeOf(bson.D{})
	aReflectType = reflect.TypeOf(bson.A{})
)

// Decoder implements domain.Decoder.
type Decoder struct {
	hook mapstructure.DecodeHookFunc
}

// NewDecoder returns a new implementation of domain.Decoder.
func NewDecoder() domain.Decoder {
	return &Decoder{
		hook: mapstructure.ComposeDecodeHookFunc(
			dateTimeHook,
			uuidHook,
			objectIDHook,
		),
	}
}

// Decode implements domain.Decoder. Ordered documents and arrays read from
// the wire are turned into maps and slices before decoding, unless the target
// is itself an ordered document or array.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}

	if elem := value.Type().Elem(); elem != dReflectType && elem != aReflectType {
		source = d.adjustDoc(source)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: d.hook,
		TagName:    tags.Key,
		MatchName:  matchName,
		Squash:     true,
		Result:     target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

// matchName accepts the wire name of untagged fields, so that "_id" fills a
// field named ID.
func matchName(mapKey, fieldName string) bool {
	return mapKey == tags.DefaultName(fieldName) || strings.EqualFold(mapKey, fieldName)
}

func (d *Decoder) adjustDoc(value any) any {
	switch t := value.(type) {
	case bson.D:
		doc := make(map[string]any, len(t))
		for _, e := range t {
			doc[e.Key] = d.adjustDoc(e.Value)
		}
		return doc
	case bson.M:
		doc := make(map[string]any, len(t))
		for k, v := range t {
			doc[k] = d.adjustDoc(v)
		}
		return doc
	case bson.A:
		lst := make([]any, len(t))
		for n, v := range t {
			lst[n] = d.adjustDoc(v)
		}
		return lst
	case []any:
		lst := make([]any, len(t))
		for n, v := range t {
			lst[n] = d.adjustDoc(v)
		}
		return lst
	default:
		return value
	}
}
