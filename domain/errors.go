package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrTargetNil is returned when the passed target, which should be a
	// pointer, is passed as a nil value.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when a decode target is not a pointer.
	ErrNonPointer = errors.New("target must be a pointer")
	// ErrNotFound is returned when a find command returns no document.
	ErrNotFound = errors.New("document not found")
)

// ErrPathResolution is returned when a path segment cannot be matched against
// the schema, or when a path goes past a reference field. Path and Class are
// kept verbatim.
type ErrPathResolution struct {
	Path   string
	Class  string
	Reason string
}

// Error implements [error].
func (e ErrPathResolution) Error() string {
	msg := fmt.Sprintf("could not resolve path '%s' against '%s'", e.Path, e.Class)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ErrIllegalOperand is returned when an update verb receives a value it
// cannot accept, such as a non-numeric value for $inc.
type ErrIllegalOperand struct {
	Operator Operator
	Value    any
	Reason   string
}

// Error implements [error].
func (e ErrIllegalOperand) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("illegal operand for %s: %s", e.Operator, e.Reason)
	}
	return fmt.Sprintf("illegal operand for %s: %T is not a supported number kind", e.Operator, e.Value)
}

// ErrValidation aggregates the failures reported by a [Validator]. The first
// failure is the primary cause.
type ErrValidation struct {
	Failures []ValidationFailure
}

// Error implements [error].
func (e ErrValidation) Error() string {
	switch len(e.Failures) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Failures[0].Message
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", e.Failures[0].Message, len(e.Failures)-1)
}

// Messages returns every failure message in order.
func (e ErrValidation) Messages() []string {
	res := make([]string, len(e.Failures))
	for n, f := range e.Failures {
		res[n] = f.Message
	}
	return res
}

// ErrNotStruct is returned by [Mapper.Map] when the entity is not a struct.
type ErrNotStruct struct {
	Type reflect.Type
}

// Error implements [error].
func (e ErrNotStruct) Error() string {
	return fmt.Sprintf("cannot map %v: not a struct", e.Type)
}

// ErrUnknownEntity is returned when looking up the schema of a type that was
// never mapped.
type ErrUnknownEntity struct {
	Type reflect.Type
}

// Error implements [error].
func (e ErrUnknownEntity) Error() string {
	return fmt.Sprintf("type %v is not mapped", e.Type)
}

// ErrNoIDField is returned when a reference field points to a type without an
// id field.
type ErrNoIDField struct {
	Class string
	Field string
}

// Error implements [error].
func (e ErrNoIDField) Error() string {
	return fmt.Sprintf("reference field %s.%s points to a type without an id field", e.Class, e.Field)
}

// ErrDuplicateField is returned when two fields of a type share a wire name.
type ErrDuplicateField struct {
	Class    string
	WireName string
}

// Error implements [error].
func (e ErrDuplicateField) Error() string {
	return fmt.Sprintf("duplicate wire name %q in %s", e.WireName, e.Class)
}

// ErrEncode is returned when a value cannot be converted to its wire form.
type ErrEncode struct {
	Value any
}

// Error implements [error].
func (e ErrEncode) Error() string {
	return fmt.Sprintf("cannot encode value of type %T", e.Value)
}

// ErrDecode is returned by [Decoder.Decode] to wrap third party decoding
// errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrCommand is returned when a command could not be issued or was rejected
// by the server.
type ErrCommand struct {
	Name string
}

// Error implements [error].
func (e ErrCommand) Error() string {
	return fmt.Sprintf("command %s failed", e.Name)
}

// JoinFailures renders failures as a single line, mostly for logs.
func JoinFailures(failures []ValidationFailure) string {
	msgs := make([]string, len(failures))
	for n, f := range failures {
		msgs[n] = f.Message
	}
	return strings.Join(msgs, "; ")
}
