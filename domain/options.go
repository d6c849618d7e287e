package domain

import "go.mongodb.org/mongo-driver/bson"

// WithResolveValidation enables or disables schema validation of path
// segments. When disabled, unknown segments and segments past a reference are
// carried through as raw keys.
func WithResolveValidation(v bool) ResolveOption {
	return func(ro *ResolveOptions) {
		ro.Validate = v
	}
}

// ResolveOption configures path resolution through the functional options
// pattern.
type ResolveOption func(*ResolveOptions)

// ResolveOptions contains parameters for customizing path resolution.
type ResolveOptions struct {
	// Validate makes resolution fail on unknown segments. Defaults to
	// true.
	Validate bool
}

// WithPushPosition sets the zero-based index where pushed items are inserted.
func WithPushPosition(p int) PushOption {
	return func(po *PushOptions) {
		po.Position = p
		po.HasPosition = true
	}
}

// WithPushSlice limits the array size after the push.
func WithPushSlice(s int) PushOption {
	return func(po *PushOptions) {
		po.Slice = s
		po.HasSlice = true
	}
}

// WithPushSort sorts the array after the push. The value is either 1, -1 or a
// sort document.
func WithPushSort(s any) PushOption {
	return func(po *PushOptions) {
		po.Sort = s
	}
}

// WithPushEach forces the value to be wrapped in $each even without other
// modifiers.
func WithPushEach(e bool) PushOption {
	return func(po *PushOptions) {
		po.Each = e
	}
}

// PushOption configures $push behavior through the functional options
// pattern.
type PushOption func(*PushOptions)

// PushOptions contains the modifiers of a $push operation.
type PushOptions struct {
	// Position is the insertion index, used if HasPosition is set.
	Position    int
	HasPosition bool
	// Slice is the maximum array size, used if HasSlice is set.
	Slice    int
	HasSlice bool
	// Sort is the sort order or document, used if not nil.
	Sort any
	// Each wraps a single value in $each.
	Each bool
}

// Modified reports whether any option requires the $each form.
func (p PushOptions) Modified() bool {
	return p.HasPosition || p.HasSlice || p.Sort != nil || p.Each
}

// WithUpdateMulti enables updating multiple documents that match the query.
func WithUpdateMulti(m bool) UpdateOption {
	return func(uo *UpdateOptions) {
		uo.Multi = m
	}
}

// WithUpsert enables inserting a document if no matches are found.
func WithUpsert(u bool) UpdateOption {
	return func(uo *UpdateOptions) {
		uo.Upsert = u
	}
}

// UpdateOption configures update behavior through the functional options
// pattern.
type UpdateOption func(*UpdateOptions)

// UpdateOptions contains parameters for customizing update commands.
type UpdateOptions struct {
	// Multi enables updating multiple documents that match the query.
	Multi bool
	// Upsert enables inserting a document if no matches are found.
	Upsert bool
}

// WithFindSkip sets the number of documents to skip in query results.
func WithFindSkip(s int64) FindOption {
	return func(fo *FindOptions) {
		fo.Skip = s
	}
}

// WithFindLimit sets the maximum number of documents to return.
func WithFindLimit(l int64) FindOption {
	return func(fo *FindOptions) {
		fo.Limit = l
	}
}

// WithFindSort specifies the sort order for query results, using wire field
// names.
func WithFindSort(s bson.D) FindOption {
	return func(fo *FindOptions) {
		fo.Sort = s
	}
}

// FindOption configures find commands through the functional options pattern.
type FindOption func(*FindOptions)

// FindOptions contains parameters for customizing find commands.
type FindOptions struct {
	// Skip specifies the number of documents to skip.
	Skip int64
	// Limit specifies the maximum number of documents to return.
	Limit int64
	// Sort specifies the sort order for results.
	Sort bson.D
}
