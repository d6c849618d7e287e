// Package codec contains the default [domain.LeafCodec] implementation, backed
// by the BSON codec of the MongoDB driver.
package codec

import (
	"fmt"

	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

const wrapKey = "v"

// Codec implements [domain.LeafCodec].
type Codec struct {
	registry *bsoncodec.Registry
	decoder  domain.Decoder
}

// NewCodec returns a new implementation of [domain.LeafCodec].
func NewCodec(options ...Option) domain.LeafCodec {
	c := &Codec{}
	for _, option := range options {
		option(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.decoder == nil {
		c.decoder = decoder.NewDecoder()
	}
	return c
}

// Encode implements [domain.LeafCodec]. The value is written and read back
// through the registry, so the result holds the types a generic reader would
// get: int32, int64, float64, string, [bson.D], [bson.A] and the primitive
// types.
func (c *Codec) Encode(v any) (any, error) {
	raw, err := bson.MarshalWithRegistry(c.registry, bson.D{{Key: wrapKey, Value: v}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncode{Value: v}, err)
	}
	var out bson.D
	if err := bson.UnmarshalWithRegistry(c.registry, raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncode{Value: v}, err)
	}
	if len(out) != 1 {
		return nil, domain.ErrEncode{Value: v}
	}
	return out[0].Value, nil
}

// Decode implements [domain.LeafCodec].
func (c *Codec) Decode(wire any, target any) error {
	return c.decoder.Decode(wire, target)
}

// Registry returns the registry used to encode values.
func (c *Codec) Registry() *bsoncodec.Registry {
	return c.registry
}
