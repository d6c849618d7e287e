// Package filter contains the query filter builder. Criteria are resolved and
// checked as they are added, and compiled into a MongoDB filter document.
package filter

import (
	"reflect"
	"regexp"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"go.mongodb.org/mongo-driver/bson"
)

type criterion struct {
	op    domain.Operator
	value any
}

// clause holds every criterion given for one wire path.
type clause struct {
	path     domain.ResolvedPath
	criteria []criterion
}

// Filter accumulates query criteria against one mapped type. Path errors are
// recorded once and stop every later call. Compatibility failures are
// collected and reported together by [Filter.Compile]. A Filter must not be
// shared between goroutines.
type Filter struct {
	resolver  domain.PathResolver
	validator domain.Validator
	encoder   domain.ValueEncoder
	root      domain.SchemaID
	validate  bool
	clauses   []clause
	failures  []domain.ValidationFailure
	err       error
}

// New returns an empty filter for the schema root.
func New(resolver domain.PathResolver, validator domain.Validator, encoder domain.ValueEncoder, root domain.SchemaID) *Filter {
	return &Filter{
		resolver:  resolver,
		validator: validator,
		encoder:   encoder,
		root:      root,
		validate:  true,
	}
}

// DisableValidation turns off path and type validation for the calls that
// follow.
func (f *Filter) DisableValidation() *Filter {
	f.validate = false
	return f
}

// EnableValidation turns validation back on for the calls that follow.
func (f *Filter) EnableValidation() *Filter {
	f.validate = true
	return f
}

// Err returns the path error recorded by this filter, if any.
func (f *Filter) Err() error {
	return f.err
}

// Failures returns a copy of the compatibility failures found so far.
func (f *Filter) Failures() []domain.ValidationFailure {
	return slices.Clone(f.failures)
}

// Root returns the schema the filter is built against.
func (f *Filter) Root() domain.SchemaID {
	return f.root
}

// Eq matches documents where the field equals value.
func (f *Filter) Eq(path string, value any) *Filter {
	return f.Where(path, domain.OpImplicit, value)
}

// Ne matches documents where the field is not equal to value.
func (f *Filter) Ne(path string, value any) *Filter {
	return f.Where(path, domain.OpNe, value)
}

// Gt matches documents where the field is greater than value.
func (f *Filter) Gt(path string, value any) *Filter {
	return f.Where(path, domain.OpGt, value)
}

// Gte matches documents where the field is greater than or equal to value.
func (f *Filter) Gte(path string, value any) *Filter {
	return f.Where(path, domain.OpGte, value)
}

// Lt matches documents where the field is lower than value.
func (f *Filter) Lt(path string, value any) *Filter {
	return f.Where(path, domain.OpLt, value)
}

// Lte matches documents where the field is lower than or equal to value.
func (f *Filter) Lte(path string, value any) *Filter {
	return f.Where(path, domain.OpLte, value)
}

// In matches documents where the field equals one of values.
func (f *Filter) In(path string, values any) *Filter {
	return f.Where(path, domain.OpIn, values)
}

// Nin matches documents where the field equals none of values.
func (f *Filter) Nin(path string, values any) *Filter {
	return f.Where(path, domain.OpNin, values)
}

// All matches documents where the array field contains every one of values.
func (f *Filter) All(path string, values any) *Filter {
	return f.Where(path, domain.OpAll, values)
}

// Exists matches documents that have, or lack, the field.
func (f *Filter) Exists(path string, exists bool) *Filter {
	return f.Where(path, domain.OpExists, exists)
}

// Size matches documents where the array field has n items.
func (f *Filter) Size(path string, n int) *Filter {
	return f.Where(path, domain.OpSize, n)
}

// Mod matches documents where the field divided by divisor has the given
// remainder.
func (f *Filter) Mod(path string, divisor, remainder int64) *Filter {
	return f.Where(path, domain.OpMod, []int64{divisor, remainder})
}

// GeoWithin matches documents where the field lies within shape, which must
// be a document such as {$box: ...}.
func (f *Filter) GeoWithin(path string, shape any) *Filter {
	return f.Where(path, domain.OpGeoWithin, shape)
}

// Regex matches documents where the string field matches re.
func (f *Filter) Regex(path string, re *regexp.Regexp) *Filter {
	if f.err != nil {
		return f
	}
	rp, ok := f.check(path, domain.OpImplicit, re)
	if !ok {
		return f
	}
	return f.add(rp, domain.OpRegex, re)
}

// Where adds a criterion with any operator. Operators unknown to the
// validator are accepted as they are.
func (f *Filter) Where(path string, op domain.Operator, value any) *Filter {
	if f.err != nil {
		return f
	}
	rp, ok := f.check(path, op, value)
	if !ok {
		return f
	}
	return f.add(rp, op, value)
}

// Compile builds the filter document. Paths keep the order of their first
// use. A path with only an equality compiles to the bare value; any other
// combination becomes an operator document. Every call returns a new
// document.
func (f *Filter) Compile() (bson.D, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.failures) > 0 {
		return nil, domain.ErrValidation{Failures: slices.Clone(f.failures)}
	}
	doc := make(bson.D, 0, len(f.clauses))
	for _, c := range f.clauses {
		doc = append(doc, bson.E{Key: c.path.WirePath, Value: compileClause(c)})
	}
	return doc, nil
}

func compileClause(c clause) any {
	if len(c.criteria) == 1 && c.criteria[0].op == domain.OpImplicit {
		return structure.Copy(c.criteria[0].value)
	}
	ops := make(bson.D, len(c.criteria))
	for n, cr := range c.criteria {
		op := cr.op
		if op == domain.OpImplicit {
			op = domain.OpEq
		}
		ops[n] = bson.E{Key: string(op), Value: structure.Copy(cr.value)}
	}
	return ops
}

// check resolves the path and records any compatibility failure. It only
// fails for path errors.
func (f *Filter) check(path string, op domain.Operator, value any) (domain.ResolvedPath, bool) {
	rp, err := f.resolver.Resolve(f.root, path, domain.WithResolveValidation(f.validate))
	if err != nil {
		f.err = err
		return rp, false
	}
	if f.validate {
		f.validator.IsCompatible(rp.Field, declaredType(rp, value), op, value, &f.failures)
	}
	return rp, true
}

func (f *Filter) add(rp domain.ResolvedPath, op domain.Operator, value any) *Filter {
	encoded, err := f.encoder.Encode(rp.Field, value)
	if err != nil {
		f.err = err
		return f
	}
	cr := criterion{op: op, value: encoded}

	for n, c := range f.clauses {
		if c.path.WirePath != rp.WirePath {
			continue
		}
		if i := slices.IndexFunc(c.criteria, func(prev criterion) bool { return prev.op == op }); i >= 0 {
			f.clauses[n].criteria[i] = cr
		} else {
			f.clauses[n].criteria = append(f.clauses[n].criteria, cr)
		}
		return f
	}
	f.clauses = append(f.clauses, clause{path: rp, criteria: []criterion{cr}})
	return f
}

// declaredType is the type a query value is checked against. A single value
// compared with a list field is checked against the item type.
func declaredType(rp domain.ResolvedPath, value any) reflect.Type {
	t := rp.ValueType()
	if t == nil || structure.IsSequence(value) {
		return t
	}
	switch d := domain.Deref(t); d.Kind() {
	case reflect.Slice:
		if d.Elem().Kind() == reflect.Uint8 {
			return t
		}
		return d.Elem()
	case reflect.Array:
		return d.Elem()
	}
	return t
}
