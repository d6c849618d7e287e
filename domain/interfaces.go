// Package domain contains domain-specific interfaces, data model and option
// types for GODM.
//
// This package defines the core interfaces that must be implemented by
// adapters, as well as functional options for configuring path resolution,
// updates, pushes and commands.
package domain

import (
	"context"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// SchemaLookup is the read path into the mapping subsystem. Implementations
// must be safe for concurrent reads once registration is done.
type SchemaLookup interface {
	// SchemaOf returns the schema registered for the given entity. The
	// entity can be a value, a pointer or a [reflect.Type].
	SchemaOf(entity any) (SchemaID, error)
	// Schema returns the schema node for the id, or nil if unknown.
	Schema(SchemaID) *Schema
	// ResolveField looks up a single path segment in the given schema,
	// either by wire name or by Go field name.
	ResolveField(SchemaID, string) (*FieldMetadata, bool)
	// EmbeddedSchema returns the schema of an embedded field type, if any.
	EmbeddedSchema(*FieldMetadata) (SchemaID, bool)
	// IsEntity reports whether the type was registered as an entity.
	IsEntity(reflect.Type) bool
	// Generation increases every time the schema graph changes.
	Generation() uint64
}

// Mapper builds the schema graph from Go types.
type Mapper interface {
	SchemaLookup
	// Map registers the given entities, and any type embedded in them.
	Map(entities ...any) error
}

// LeafCodec encodes and decodes generic values to and from their wire form.
type LeafCodec interface {
	// Encode converts a Go value to the value a generic reader would get
	// when reading it back from the wire.
	Encode(any) (any, error)
	// Decode fills target with the given wire value.
	Decode(any, any) error
}

// Decoder converts wire values into Go targets.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// FieldHandler is a custom encoding strategy attached to a field when its
// schema is built. Its output is final.
type FieldHandler interface {
	// Encode converts a field value into its wire form.
	Encode(any) (any, error)
}

// PathResolver translates dotted field paths into wire paths.
type PathResolver interface {
	// Resolve walks path against the schema of root.
	Resolve(root SchemaID, path string, options ...ResolveOption) (ResolvedPath, error)
	// Lookup returns the schema lookup used by the resolver.
	Lookup() SchemaLookup
}

// Validator decides whether an operator can be applied to a field with a
// given value.
type Validator interface {
	// IsCompatible appends any failure found to failures and reports
	// whether none was found.
	IsCompatible(field *FieldMetadata, declared reflect.Type, op Operator, value any, failures *[]ValidationFailure) bool
}

// ValueEncoder produces the wire value attached to a resolved path.
type ValueEncoder interface {
	// Encode encodes value for the given field. Field may be nil.
	Encode(field *FieldMetadata, value any) (any, error)
}

// CommandSink dispatches assembled commands to the database.
type CommandSink interface {
	// Issue sends the command and returns the raw reply.
	Issue(ctx context.Context, cmd bson.D) (bson.Raw, error)
}

// Metrics receives counters from the datastore.
type Metrics interface {
	// CommandIssued records a command dispatch and its outcome.
	CommandIssued(name string, err error)
	// ValidationFailed records a rejected operator.
	ValidationFailed(op Operator, count int)
}
