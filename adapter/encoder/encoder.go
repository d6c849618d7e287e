// Package encoder contains the default [domain.ValueEncoder] implementation.
package encoder

import (
	"github.com/vinicius-lino-figueiredo/godm/adapter/codec"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Encoder implements [domain.ValueEncoder].
type Encoder struct {
	codec domain.LeafCodec
}

// NewEncoder returns a new implementation of [domain.ValueEncoder].
func NewEncoder(options ...Option) domain.ValueEncoder {
	e := &Encoder{}
	for _, option := range options {
		option(e)
	}
	if e.codec == nil {
		e.codec = codec.NewCodec()
	}
	return e
}

// Encode implements [domain.ValueEncoder]. Fields with a custom encoding use
// their handler output as is. Everything else goes through the codec.
func (e *Encoder) Encode(field *domain.FieldMetadata, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if field != nil && field.Encoding.Kind == domain.CustomEncoding && field.Encoding.Handler != nil {
		return field.Encoding.Handler.Encode(value)
	}
	return e.codec.Encode(value)
}
