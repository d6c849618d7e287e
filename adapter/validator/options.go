package validator

import "github.com/vinicius-lino-figueiredo/godm/domain"

// WithSchemaLookup sets the lookup used to tell mapped entities apart from
// other values.
func WithSchemaLookup(l domain.SchemaLookup) Option {
	return func(v *Validator) {
		v.lookup = l
	}
}

// Option configures validator behavior through the functional options
// pattern.
type Option func(*Validator)
