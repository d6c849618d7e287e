// Package structure contains value-related operations, such as iterating over
// a value of type any and classifying numbers.
package structure

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"regexp"
	"slices"
	"time"

	"github.com/goccy/go-reflect"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNilObj may be returned by [Seq] when a nil value is passed as
	// argument.
	ErrNilObj = errors.New("nil object")
)

// ErrorNonList is returned by [Seq] when a value that is neither a slice nor
// an array is passed as argument.
type ErrorNonList struct {
	Type reflect.Type
}

// Error implements [error].
func (e ErrorNonList) Error() string {
	return fmt.Sprintf("%v is not a list", e.Type)
}

// NumberKind is the wire number kind of a value.
type NumberKind uint8

const (
	// NotNumber is returned for values outside the supported number kinds.
	NotNumber NumberKind = iota
	// Int32 is the 32-bit integer kind.
	Int32
	// Int64 is the 64-bit integer kind.
	Int64
	// Float32 is the single precision kind.
	Float32
	// Float64 is the double precision kind.
	Float64
)

// Integer reports whether k is an integer kind.
func (k NumberKind) Integer() bool {
	return k == Int32 || k == Int64
}

// String implements [fmt.Stringer].
func (k NumberKind) String() string {
	switch k {
	case Int32:
		return "int"
	case Int64:
		return "long"
	case Float32:
		return "float"
	case Float64:
		return "double"
	}
	return "not a number"
}

// NumberKindOf classifies v. Values of type int are [Int32] when they fit in
// 32 bits and [Int64] otherwise, the same way the BSON codec writes them.
// Unsigned integers are not numbers on the wire.
func NumberKindOf(v any) NumberKind {
	switch t := v.(type) {
	case nil:
		return NotNumber
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	case float64:
		return Float64
	case int:
		if FitsInt32(int64(t)) {
			return Int32
		}
		return Int64
	}

	rv := reflect.ValueNoEscapeOf(v)
	switch rv.Kind() {
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Int:
		if FitsInt32(rv.Int()) {
			return Int32
		}
		return Int64
	}
	return NotNumber
}

// FitsInt32 reports whether i can be stored as a 32-bit integer.
func FitsInt32(i int64) bool {
	return i >= math.MinInt32 && i <= math.MaxInt32
}

// Negate returns -v for built-in number types. It fails for the minimum value
// of integer types, which has no positive counterpart.
func Negate(v any) (any, bool) {
	switch t := v.(type) {
	case int:
		if t == math.MinInt {
			return nil, false
		}
		return -t, true
	case int32:
		if t == math.MinInt32 {
			return nil, false
		}
		return -t, true
	case int64:
		if t == math.MinInt64 {
			return nil, false
		}
		return -t, true
	case float32:
		return -t, true
	case float64:
		return -t, true
	}
	return nil, false
}

// IsSequence reports whether v is a list value. Byte slices, byte arrays such
// as object ids and ordered documents are lists in Go but not on the wire.
func IsSequence(v any) bool {
	switch v.(type) {
	case nil, []byte, bson.D, bson.Raw, string, primitive.ObjectID:
		return false
	case bson.A, []any:
		return true
	}
	rv := reflect.ValueNoEscapeOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

// DocumentKeys returns the keys of a document value. Ordered documents keep
// their order and the keys of maps are sorted.
func DocumentKeys(v any) ([]string, bool) {
	switch t := v.(type) {
	case bson.D:
		keys := make([]string, len(t))
		for n, e := range t {
			keys[n] = e.Key
		}
		return keys, true
	case bson.M:
		return slices.Sorted(maps.Keys(t)), true
	case map[string]any:
		return slices.Sorted(maps.Keys(t)), true
	case map[string]bson.A:
		return slices.Sorted(maps.Keys(t)), true
	case map[string][]any:
		return slices.Sorted(maps.Keys(t)), true
	}
	return nil, false
}

// Seq returns an iterator over a slice or array of any type.
func Seq(obj any) (iter.Seq[any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if i, length, err := fastPathList(obj); err != nil || i != nil {
		return i, length, err
	}
	return iterReflect(obj)
}

// Slice collects the items of a slice or array into a new []any.
func Slice(obj any) ([]any, error) {
	i, l, err := Seq(obj)
	if err != nil {
		return nil, err
	}
	res := make([]any, 0, l)
	for v := range i {
		res = append(res, v)
	}
	return res, nil
}

func fastPathList(obj any) (iter.Seq[any], int, error) {
	if err := checkPrimitive(obj); err != nil {
		return nil, 0, err
	}
	return checkLists(obj)
}

func checkPrimitive(obj any) error {
	switch obj.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time, *regexp.Regexp, []byte, bson.D, bson.M, bson.Raw:
		return ErrorNonList{Type: reflect.TypeOf(obj)}
	default:
		return nil
	}
}

func checkLists(obj any) (iter.Seq[any], int, error) {
	switch t := obj.(type) {
	case bson.A:
		return iterSlice(t), len(t), nil
	case []any:
		return iterSlice(t), len(t), nil
	case []string:
		return iterSlice(t), len(t), nil
	case []bool:
		return iterSlice(t), len(t), nil
	case []int:
		return iterSlice(t), len(t), nil
	case []int32:
		return iterSlice(t), len(t), nil
	case []int64:
		return iterSlice(t), len(t), nil
	case []float32:
		return iterSlice(t), len(t), nil
	case []float64:
		return iterSlice(t), len(t), nil
	case []time.Time:
		return iterSlice(t), len(t), nil
	case []primitive.ObjectID:
		return iterSlice(t), len(t), nil
	case []bson.D:
		return iterSlice(t), len(t), nil
	}
	return nil, 0, nil
}

func iterReflect(obj any) (iter.Seq[any], int, error) {
	v := reflect.ValueNoEscapeOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, 0, ErrNilObj
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, 0, ErrorNonList{Type: v.Type()}
	}

	length := v.Len()
	return func(yield func(any) bool) {
		for n := range length {
			if !yield(v.Index(n).Interface()) {
				return
			}
		}
	}, length, nil
}

func iterSlice[T any](m []T) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range m {
			if !yield(v) {
				return
			}
		}
	}
}

// Copy returns a deep copy of wire values. Documents, arrays and binary data
// are duplicated; every other value is returned as is.
func Copy(v any) any {
	switch t := v.(type) {
	case bson.D:
		res := make(bson.D, len(t))
		for n, e := range t {
			res[n] = bson.E{Key: e.Key, Value: Copy(e.Value)}
		}
		return res
	case bson.M:
		res := make(bson.M, len(t))
		for k, v := range t {
			res[k] = Copy(v)
		}
		return res
	case bson.A:
		res := make(bson.A, len(t))
		for n, itm := range t {
			res[n] = Copy(itm)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, itm := range t {
			res[n] = Copy(itm)
		}
		return res
	case primitive.Binary:
		return primitive.Binary{Subtype: t.Subtype, Data: slices.Clone(t.Data)}
	default:
		return v
	}
}
