package encoder

import "github.com/vinicius-lino-figueiredo/godm/domain"

// WithCodec sets the codec used for fields with generic encoding.
func WithCodec(c domain.LeafCodec) Option {
	return func(e *Encoder) {
		e.codec = c
	}
}

// Option configures encoder behavior through the functional options pattern.
type Option func(*Encoder)
