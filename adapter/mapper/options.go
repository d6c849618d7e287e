package mapper

import (
	"reflect"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.uber.org/zap"
)

// Option configures a [Mapper].
type Option func(*Mapper)

// WithFieldHandler attaches a custom handler to every field declared with
// the given type. Handler output skips the codec.
func WithFieldHandler(t reflect.Type, h domain.FieldHandler) Option {
	return func(m *Mapper) {
		m.handlers[t] = h
	}
}

// WithCodec sets the codec used by reference handlers to encode ids.
func WithCodec(c domain.LeafCodec) Option {
	return func(m *Mapper) {
		m.codec = c
	}
}

// WithLogger sets the logger used to report mapped types.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mapper) {
		m.log = l
	}
}
