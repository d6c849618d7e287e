package resolver

import "sync"

// Option configures a [Resolver].
type Option func(*Resolver)

// WithCache enables caching of resolved paths. Entries are dropped once the
// schema lookup reports a new generation.
func WithCache() Option {
	return func(r *Resolver) {
		r.cache = &sync.Map{}
	}
}
