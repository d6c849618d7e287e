package tags

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"
)

type tagged struct {
	ID      string
	Name    string
	Renamed int    `odm:"other"`
	Owner   string `odm:",reference"`
	Meta    string `odm:"m,omitempty,inline"`
	Skipped string `odm:"-"`
	Key     string `odm:"_id"`
	Ünicode string
	Empty   string `odm:""`
	Unknown string `odm:"u,whatever"`
}

type TagsTestSuite struct {
	suite.Suite
}

func (s *TagsTestSuite) field(name string) reflect.StructField {
	sf, ok := reflect.TypeFor[tagged]().FieldByName(name)
	s.Require().True(ok)
	return sf
}

func (s *TagsTestSuite) TestParse() {
	testCases := map[string]Field{
		"ID":      {Name: "_id"},
		"Name":    {Name: "name"},
		"Renamed": {Name: "other"},
		"Owner":   {Name: "owner", Reference: true},
		"Meta":    {Name: "m", OmitEmpty: true, Inline: true},
		"Skipped": {Skip: true},
		"Key":     {Name: "_id"},
		"Ünicode": {Name: "ünicode"},
		"Empty":   {Name: "empty"},
		"Unknown": {Name: "u"},
	}
	for name, expected := range testCases {
		s.Equal(expected, Parse(s.field(name)), name)
	}
}

func (s *TagsTestSuite) TestDefaultName() {
	s.Equal("_id", DefaultName("ID"))
	s.Equal("iD2", DefaultName("ID2"))
	s.Equal("a", DefaultName("A"))
	s.Equal("", DefaultName(""))
}

func TestTagsTestSuite(t *testing.T) {
	suite.Run(t, new(TagsTestSuite))
}
