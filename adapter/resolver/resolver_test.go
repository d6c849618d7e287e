package resolver

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/adapter/mapper"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/internal/fixture"
)

type extra struct {
	ID  string
	Val int
}

type ResolverTestSuite struct {
	suite.Suite
	mapper   domain.Mapper
	resolver *Resolver
	root     domain.SchemaID
}

func (s *ResolverTestSuite) SetupTest() {
	s.mapper = mapper.NewMapper()
	s.Require().NoError(s.mapper.Map(fixture.Post{}))
	s.resolver = NewResolver(s.mapper, WithCache()).(*Resolver)

	var err error
	s.root, err = s.mapper.SchemaOf(fixture.Post{})
	s.Require().NoError(err)
}

func (s *ResolverTestSuite) TestTranslatesNames() {
	testCases := map[string]string{
		"ID":                 "_id",
		"_id":                "_id",
		"Title":              "title",
		"Address.Zip":        "addr.postal",
		"addr.postal":        "addr.postal",
		"Labels.Weight":      "labels.weight",
		"History.0.Street":   "history.0.street",
		"labels.$.name":      "labels.$.name",
		"labels.$[].name":    "labels.$[].name",
		"labels.$[el].name":  "labels.$[el].name",
		"Places.home.Zip":    "places.home.postal",
		"meta.anything":      "meta.anything",
		"Created":            "created",
		"parent.parent.Tags": "parent.parent.tags",
		"author":             "author",
		"editors":            "editors",
	}
	for path, wire := range testCases {
		res, err := s.resolver.Resolve(s.root, path)
		if s.NoError(err, path) {
			s.Equal(wire, res.WirePath, path)
			s.Equal(wire, res.String(), path)
			s.Equal(path, res.Original)
			s.Equal(s.root, res.Root)
		}
	}
}

func (s *ResolverTestSuite) TestSegments() {
	res, err := s.resolver.Resolve(s.root, "places.home.postal")
	s.Require().NoError(err)
	s.Len(res.Segments, 3)
	s.Equal(domain.FieldSegment, res.Segments[0].Kind)
	s.Equal(domain.MapKeySegment, res.Segments[1].Kind)
	s.Equal(domain.FieldSegment, res.Segments[2].Kind)
	s.Equal("Zip", res.Field.Name)
	s.Equal(reflect.TypeFor[string](), res.ValueType())

	res, err = s.resolver.Resolve(s.root, "tags.$")
	s.Require().NoError(err)
	s.Equal(domain.PositionalSegment, res.Segments[1].Kind)
	s.Equal("Tags", res.Field.Name)
	s.Equal(reflect.TypeFor[string](), res.ValueType())

	res, err = s.resolver.Resolve(s.root, "ranks.3")
	s.Require().NoError(err)
	s.Equal(domain.IndexSegment, res.Segments[1].Kind)
	s.Equal(reflect.TypeFor[int32](), res.ValueType())

	res, err = s.resolver.Resolve(s.root, "places.7")
	s.Require().NoError(err)
	s.Equal(domain.MapKeySegment, res.Segments[1].Kind)
}

func (s *ResolverTestSuite) TestUnknownSegment() {
	_, err := s.resolver.Resolve(s.root, "addr.country")
	s.ErrorIs(err, domain.ErrPathResolution{Path: "addr.country", Class: "fixture.Post"})
	s.EqualError(err, "could not resolve path 'addr.country' against 'fixture.Post'")

	_, err = s.resolver.Resolve(s.root, "title.first")
	s.ErrorIs(err, domain.ErrPathResolution{Path: "title.first", Class: "fixture.Post"})

	_, err = s.resolver.Resolve(s.root, "nope")
	s.ErrorAs(err, &domain.ErrPathResolution{})
}

func (s *ResolverTestSuite) TestReferenceTraversal() {
	_, err := s.resolver.Resolve(s.root, "author.name")
	s.ErrorIs(err, domain.ErrPathResolution{
		Path:   "author.name",
		Class:  "fixture.Post",
		Reason: "cannot go past reference field Author",
	})

	testCases := map[string]string{
		"editors.0.name": "Editors",
		"editors.0":      "Editors",
		"editors.$":      "Editors",
		"editors.$[]":    "Editors",
		"author.0":       "Author",
	}
	for path, field := range testCases {
		_, err = s.resolver.Resolve(s.root, path)
		s.ErrorIs(err, domain.ErrPathResolution{
			Path:   path,
			Class:  "fixture.Post",
			Reason: "cannot go past reference field " + field,
		}, path)
	}

	res, err := s.resolver.Resolve(s.root, "editors.0", domain.WithResolveValidation(false))
	s.Require().NoError(err)
	s.Equal("editors.0", res.WirePath)
	s.Equal(domain.RawSegment, res.Segments[1].Kind)
	s.Nil(res.Field)
}

func (s *ResolverTestSuite) TestWithoutValidation() {
	noValidation := domain.WithResolveValidation(false)

	res, err := s.resolver.Resolve(s.root, "addr.country.code", noValidation)
	s.Require().NoError(err)
	s.Equal("addr.country.code", res.WirePath)
	s.Nil(res.Field)
	s.Equal(domain.FieldSegment, res.Segments[0].Kind)
	s.Equal(domain.RawSegment, res.Segments[1].Kind)
	s.Equal(domain.RawSegment, res.Segments[2].Kind)
	s.Nil(res.ValueType())

	res, err = s.resolver.Resolve(s.root, "author.Name", noValidation)
	s.Require().NoError(err)
	s.Equal("author.Name", res.WirePath)
	s.Nil(res.Field)

	// known segments are still translated
	res, err = s.resolver.Resolve(s.root, "Address.Zip", noValidation)
	s.Require().NoError(err)
	s.Equal("addr.postal", res.WirePath)
	s.NotNil(res.Field)
}

func (s *ResolverTestSuite) TestEmptyPaths() {
	_, err := s.resolver.Resolve(s.root, "")
	s.ErrorIs(err, domain.ErrPathResolution{Path: "", Class: "fixture.Post", Reason: "empty path"})

	_, err = s.resolver.Resolve(s.root, "addr..city", domain.WithResolveValidation(false))
	s.ErrorIs(err, domain.ErrPathResolution{Path: "addr..city", Class: "fixture.Post", Reason: "empty segment"})
}

func (s *ResolverTestSuite) TestUnknownRoot() {
	_, err := s.resolver.Resolve(99, "a")
	s.ErrorAs(err, &domain.ErrPathResolution{})
}

func (s *ResolverTestSuite) TestCache() {
	first, err := s.resolver.Resolve(s.root, "addr.city")
	s.Require().NoError(err)
	second, err := s.resolver.Resolve(s.root, "addr.city")
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Same(first.Field, second.Field)

	_, ok := s.resolver.cache.Load(cacheKey{root: s.root, path: "addr.city", validate: true})
	s.True(ok)
	_, ok = s.resolver.cache.Load(cacheKey{root: s.root, path: "addr.city", validate: false})
	s.False(ok)

	// failures are not cached
	_, err = s.resolver.Resolve(s.root, "nope")
	s.Error(err)
	_, ok = s.resolver.cache.Load(cacheKey{root: s.root, path: "nope", validate: true})
	s.False(ok)
}

func (s *ResolverTestSuite) TestCacheInvalidation() {
	_, err := s.resolver.Resolve(s.root, "addr.city")
	s.Require().NoError(err)
	gen := s.mapper.Generation()

	s.Require().NoError(s.mapper.Map(extra{}))
	s.Greater(s.mapper.Generation(), gen)

	_, err = s.resolver.Resolve(s.root, "addr.city")
	s.Require().NoError(err)
	e, ok := s.resolver.cache.Load(cacheKey{root: s.root, path: "addr.city", validate: true})
	s.Require().True(ok)
	s.Equal(s.mapper.Generation(), e.(cacheEntry).generation)
}

func (s *ResolverTestSuite) TestNoCache() {
	r := NewResolver(s.mapper).(*Resolver)
	s.Nil(r.cache)
	s.Same(s.mapper, r.Lookup())

	res, err := r.Resolve(s.root, "Title")
	s.NoError(err)
	s.Equal("title", res.WirePath)
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
