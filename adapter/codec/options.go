package codec

import (
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// Option configures a [Codec].
type Option func(*Codec)

// WithRegistry sets the BSON registry used to encode values.
func WithRegistry(r *bsoncodec.Registry) Option {
	return func(c *Codec) {
		c.registry = r
	}
}

// WithDecoder sets the decoder used to fill targets from wire values.
func WithDecoder(d domain.Decoder) Option {
	return func(c *Codec) {
		c.decoder = d
	}
}
