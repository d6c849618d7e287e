// Package resolver contains the default [domain.PathResolver]
// implementation.
package resolver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vinicius-lino-figueiredo/godm/domain"
)

type cacheKey struct {
	root     domain.SchemaID
	path     string
	validate bool
}

type cacheEntry struct {
	generation uint64
	path       domain.ResolvedPath
}

// Resolver implements [domain.PathResolver].
type Resolver struct {
	lookup domain.SchemaLookup
	cache  *sync.Map
}

// NewResolver returns a new implementation of [domain.PathResolver].
func NewResolver(lookup domain.SchemaLookup, options ...Option) domain.PathResolver {
	r := &Resolver{lookup: lookup}
	for _, option := range options {
		option(r)
	}
	return r
}

// Lookup implements [domain.PathResolver].
func (r *Resolver) Lookup() domain.SchemaLookup {
	return r.lookup
}

// Resolve implements [domain.PathResolver]. Each dotted segment is matched
// against the schema reached so far. Positional markers and array indexes are
// kept as written, and the segment after a map field is read as a map key.
func (r *Resolver) Resolve(root domain.SchemaID, path string, options ...domain.ResolveOption) (domain.ResolvedPath, error) {
	ro := domain.ResolveOptions{Validate: true}
	for _, option := range options {
		option(&ro)
	}

	if r.cache == nil {
		return r.resolve(root, path, ro.Validate)
	}

	key := cacheKey{root: root, path: path, validate: ro.Validate}
	gen := r.lookup.Generation()
	if e, ok := r.cache.Load(key); ok {
		if entry := e.(cacheEntry); entry.generation == gen {
			return entry.path, nil
		}
	}

	res, err := r.resolve(root, path, ro.Validate)
	if err != nil {
		return domain.ResolvedPath{}, err
	}
	r.cache.Store(key, cacheEntry{generation: gen, path: res})
	return res, nil
}

func (r *Resolver) resolve(root domain.SchemaID, path string, validate bool) (domain.ResolvedPath, error) {
	sc := r.lookup.Schema(root)
	if sc == nil {
		return domain.ResolvedPath{}, domain.ErrPathResolution{
			Path:   path,
			Reason: fmt.Sprintf("unknown schema %d", root),
		}
	}
	if path == "" {
		return domain.ResolvedPath{}, domain.ErrPathResolution{Path: path, Class: sc.Name, Reason: "empty path"}
	}

	parts := strings.Split(path, ".")
	segments := make([]domain.Segment, 0, len(parts))

	var (
		current    = root
		last       *domain.FieldMetadata
		raw        bool
		expectsKey bool
	)

	for _, part := range parts {
		if part == "" {
			return domain.ResolvedPath{}, domain.ErrPathResolution{Path: path, Class: sc.Name, Reason: "empty segment"}
		}

		switch {
		case raw:
			segments = append(segments, domain.Segment{Kind: domain.RawSegment, Name: part, Wire: part})
			continue
		case expectsKey:
			expectsKey = false
			segments = append(segments, domain.Segment{Kind: domain.MapKeySegment, Name: part, Wire: part})
			continue
		case last != nil && last.Reference:
			// nothing is stored past a reference, not even list items
			if validate {
				return domain.ResolvedPath{}, domain.ErrPathResolution{
					Path:   path,
					Class:  sc.Name,
					Reason: fmt.Sprintf("cannot go past reference field %s", last.Name),
				}
			}
			raw, last = true, nil
			segments = append(segments, domain.Segment{Kind: domain.RawSegment, Name: part, Wire: part})
			continue
		case isPositional(part):
			segments = append(segments, domain.Segment{Kind: domain.PositionalSegment, Name: part, Wire: part})
			continue
		case isIndex(part):
			segments = append(segments, domain.Segment{Kind: domain.IndexSegment, Name: part, Wire: part})
			continue
		}

		f, found := r.lookup.ResolveField(current, part)
		if !found {
			if validate {
				return domain.ResolvedPath{}, domain.ErrPathResolution{Path: path, Class: sc.Name}
			}
			raw, last = true, nil
			segments = append(segments, domain.Segment{Kind: domain.RawSegment, Name: part, Wire: part})
			continue
		}

		segments = append(segments, domain.Segment{
			Kind:  domain.FieldSegment,
			Name:  part,
			Wire:  f.WireName,
			Field: f,
		})
		last = f
		expectsKey = f.Map
		if id, ok := r.lookup.EmbeddedSchema(f); ok {
			current = id
		} else {
			current = domain.NoSchema
		}
	}

	return domain.ResolvedPath{
		Root:     root,
		Original: path,
		Segments: segments,
		Field:    last,
		WirePath: domain.JoinWire(segments),
	}, nil
}

// isPositional matches $, $[] and $[identifier].
func isPositional(part string) bool {
	if part == "$" {
		return true
	}
	return len(part) >= 3 && strings.HasPrefix(part, "$[") && strings.HasSuffix(part, "]")
}

func isIndex(part string) bool {
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return part != ""
}
