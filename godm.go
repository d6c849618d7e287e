// Package godm provides an object-document mapping layer for MongoDB.
//
// Go struct types are mapped into schemas, and typed dotted field paths are
// validated against them and rewritten into wire paths. Filters and updates
// built through those paths compile into MongoDB documents, with every value
// encoded the way its field is stored.
//
// The basic usage starts with creating a new [Datastore], which can be done
// by calling [New].
package godm

import (
	"io"

	"github.com/vinicius-lino-figueiredo/godm/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/godm/adapter/filter"
	"github.com/vinicius-lino-figueiredo/godm/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/godm/adapter/sink"
	"github.com/vinicius-lino-figueiredo/godm/adapter/update"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	// ErrTargetNil is returned when user provides a nil value as a target
	// to decode data, for example, calling [Datastore.FindOne].
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when a decode target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrNotFound is returned by [Datastore.FindOne] when no document
	// matches the filter.
	ErrNotFound = domain.ErrNotFound
)

// ErrPathResolution is returned when a path segment does not match the
// mapped schema, or when a path goes past a reference field.
type ErrPathResolution = domain.ErrPathResolution

// ErrIllegalOperand is returned when an update verb receives a value it
// cannot use, such as a non-numeric increment.
type ErrIllegalOperand = domain.ErrIllegalOperand

// ErrValidation carries every operator compatibility failure found while
// building a filter or an update.
type ErrValidation = domain.ErrValidation

// ErrNotStruct is returned when mapping a type that is not a struct.
type ErrNotStruct = domain.ErrNotStruct

// ErrUnknownEntity is returned when looking up a type that was never mapped.
type ErrUnknownEntity = domain.ErrUnknownEntity

// ErrNoIDField is returned when a reference field points to a type without
// an id field.
type ErrNoIDField = domain.ErrNoIDField

// ErrDuplicateField is returned when two fields of a type share a wire name.
type ErrDuplicateField = domain.ErrDuplicateField

// ErrEncode is returned when a value cannot be converted to its wire form.
type ErrEncode = domain.ErrEncode

// ErrDecode is returned by [Decoder.Decode] to easily wrap third party decoding
// errors.
type ErrDecode = domain.ErrDecode

// ErrCommand is returned when a command cannot be built, sent or is rejected.
type ErrCommand = domain.ErrCommand

// Datastore builds and issues commands for mapped types.
type Datastore = datastore.Datastore

// Filter accumulates the criteria of a query.
type Filter = filter.Filter

// Update accumulates the operations of an update.
type Update = update.Update

// UpdateResult is the outcome of [Datastore.ExecUpdate].
type UpdateResult = datastore.UpdateResult

// Key identifies a stored entity without embedding its data. It can be
// stored in reference fields.
type Key = domain.Key

// ResolvedPath is a dotted path translated to its wire form.
type ResolvedPath = domain.ResolvedPath

// Mapper builds and holds the schemas of mapped types.
type Mapper = domain.Mapper

// LeafCodec encodes and decodes generic values.
type LeafCodec = domain.LeafCodec

// Decoder converts wire values into Go targets.
type Decoder = domain.Decoder

// FieldHandler is a custom encoding strategy for a field type.
type FieldHandler = domain.FieldHandler

// PathResolver translates dotted field paths into wire paths.
type PathResolver = domain.PathResolver

// Validator checks operators against declared field types.
type Validator = domain.Validator

// ValueEncoder produces the value attached to a resolved path.
type ValueEncoder = domain.ValueEncoder

// CommandSink dispatches commands to the database.
type CommandSink = domain.CommandSink

// Metrics receives counters from the datastore.
type Metrics = domain.Metrics

// Runner runs database commands. [*mongo.Database] implements it.
type Runner = sink.Runner

// New creates a new [Datastore] with the provided configuration options:
//
// - [WithMapper]: sets the mapper holding the schemas of mapped types.
//
// - [WithCodec]: sets the codec used to encode values and decode replies.
//
// - [WithResolver]: sets the path resolver.
//
// - [WithValidator]: sets the operator compatibility validator.
//
// - [WithEncoder]: sets the encoder used for values attached to paths.
//
// - [WithSink]: sets where commands are sent.
//
// - [WithMetrics]: sets the receiver of command and validation counters.
//
// - [WithLogger]: sets the logger.
func New(options ...datastore.Option) *Datastore {
	return datastore.NewDatastore(options...)
}

// WithMapper sets the mapper holding the schemas of mapped types.
func WithMapper(m Mapper) datastore.Option {
	return datastore.WithMapper(m)
}

// WithCodec sets the codec used to encode values and decode replies.
func WithCodec(c LeafCodec) datastore.Option {
	return datastore.WithCodec(c)
}

// WithResolver sets the path resolver.
func WithResolver(r PathResolver) datastore.Option {
	return datastore.WithResolver(r)
}

// WithValidator sets the operator compatibility validator.
func WithValidator(v Validator) datastore.Option {
	return datastore.WithValidator(v)
}

// WithEncoder sets the encoder used for values attached to paths.
func WithEncoder(e ValueEncoder) datastore.Option {
	return datastore.WithEncoder(e)
}

// WithSink sets where commands are sent. See [NewMongoSink] and
// [NewWriterSink].
func WithSink(s CommandSink) datastore.Option {
	return datastore.WithSink(s)
}

// WithMetrics sets the receiver of command and validation counters. See
// [NewMetrics].
func WithMetrics(m Metrics) datastore.Option {
	return datastore.WithMetrics(m)
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) datastore.Option {
	return datastore.WithLogger(l)
}

// NewMongoSink returns a sink running commands on a database connection.
func NewMongoSink(r Runner) CommandSink {
	return sink.NewMongoSink(r)
}

// NewWriterSink returns a sink writing every command to w as a line of
// extended JSON.
func NewWriterSink(w io.Writer) CommandSink {
	return sink.NewWriterSink(w)
}

// NewMetrics returns Prometheus backed metrics. The result can be registered
// as a collector.
func NewMetrics() *metrics.Metrics {
	return metrics.NewMetrics()
}

// ResolveOption configures path resolution.
type ResolveOption = domain.ResolveOption

// WithResolveValidation enables or disables path validation.
func WithResolveValidation(v bool) ResolveOption {
	return domain.WithResolveValidation(v)
}

// PushOption configures a $push operation.
type PushOption = domain.PushOption

// WithPushPosition inserts pushed items at the given index.
func WithPushPosition(p int) PushOption {
	return domain.WithPushPosition(p)
}

// WithPushSlice limits the array size after the push.
func WithPushSlice(s int) PushOption {
	return domain.WithPushSlice(s)
}

// WithPushSort sorts the array after the push, by 1, -1 or a sort document.
func WithPushSort(s any) PushOption {
	return domain.WithPushSort(s)
}

// WithPushEach wraps a single pushed value in $each.
func WithPushEach(e bool) PushOption {
	return domain.WithPushEach(e)
}

// UpdateOption configures update commands.
type UpdateOption = domain.UpdateOption

// WithUpdateMulti enables updating multiple documents that match the query.
func WithUpdateMulti(m bool) UpdateOption {
	return domain.WithUpdateMulti(m)
}

// WithUpsert enables inserting a document if no matches are found.
func WithUpsert(u bool) UpdateOption {
	return domain.WithUpsert(u)
}

// FindOption configures find commands.
type FindOption = domain.FindOption

// WithSkip sets the number of documents to skip in query results.
func WithSkip(s int64) FindOption {
	return domain.WithFindSkip(s)
}

// WithLimit sets the maximum number of documents to return.
func WithLimit(l int64) FindOption {
	return domain.WithFindLimit(l)
}

// WithSort specifies the sort order for query results, using wire names.
func WithSort(s bson.D) FindOption {
	return domain.WithFindSort(s)
}
