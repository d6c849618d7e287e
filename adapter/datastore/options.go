package datastore

import (
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.uber.org/zap"
)

// WithMapper sets the mapper holding the schemas of mapped types.
func WithMapper(m domain.Mapper) Option {
	return func(d *Datastore) {
		d.mapper = m
	}
}

// WithCodec sets the codec used to encode values and decode replies.
func WithCodec(c domain.LeafCodec) Option {
	return func(d *Datastore) {
		d.codec = c
	}
}

// WithResolver sets the path resolver. The default one caches resolved
// paths.
func WithResolver(r domain.PathResolver) Option {
	return func(d *Datastore) {
		d.resolver = r
	}
}

// WithValidator sets the operator compatibility validator.
func WithValidator(v domain.Validator) Option {
	return func(d *Datastore) {
		d.validator = v
	}
}

// WithEncoder sets the encoder used for values attached to paths.
func WithEncoder(e domain.ValueEncoder) Option {
	return func(d *Datastore) {
		d.encoder = e
	}
}

// WithSink sets where commands are sent. Commands are discarded by default.
func WithSink(s domain.CommandSink) Option {
	return func(d *Datastore) {
		d.sink = s
	}
}

// WithMetrics sets the receiver of command and validation counters.
func WithMetrics(m domain.Metrics) Option {
	return func(d *Datastore) {
		d.metrics = m
	}
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l *zap.Logger) Option {
	return func(d *Datastore) {
		d.log = l
	}
}

// Option configures datastore behavior through the functional options
// pattern.
type Option func(*Datastore)
