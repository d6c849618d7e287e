// Package tags parses the odm struct tag shared by the mapper and the codec.
package tags

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is the struct tag key read by this package.
const Key = "odm"

// IDName is the wire name of the id field.
const IDName = "_id"

// Field is the parsed content of an odm tag. The tag format is
// "name,flag,flag", where flags are reference, omitempty and inline. A tag
// equal to "-" skips the field.
type Field struct {
	Name      string
	Reference bool
	OmitEmpty bool
	Inline    bool
	Skip      bool
}

// Parse reads the odm tag of a struct field. Untagged fields get the Go name
// with its first letter lowercased, except for a field named ID, which is
// mapped to "_id".
func Parse(sf reflect.StructField) Field {
	tag, ok := sf.Tag.Lookup(Key)
	if !ok {
		return Field{Name: DefaultName(sf.Name)}
	}
	if tag == "-" {
		return Field{Skip: true}
	}

	name, flags, _ := strings.Cut(tag, ",")
	var f Field
	for flag := range strings.SplitSeq(flags, ",") {
		switch flag {
		case "reference":
			f.Reference = true
		case "omitempty":
			f.OmitEmpty = true
		case "inline":
			f.Inline = true
		}
	}
	if name == "" {
		name = DefaultName(sf.Name)
	}
	f.Name = name
	return f
}

// DefaultName returns the wire name of an untagged field.
func DefaultName(goName string) string {
	if goName == "ID" {
		return IDName
	}
	r, size := utf8.DecodeRuneInString(goName)
	if r == utf8.RuneError {
		return goName
	}
	return string(unicode.ToLower(r)) + goName[size:]
}
