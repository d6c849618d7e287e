package codec

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type address struct {
	Street string
	Zip    string `odm:"postal,omitempty"`
	Secret string `odm:"-"`
}

type audit struct {
	By string
}

type profile struct {
	Audit   audit `odm:",inline"`
	Address address
}

type CodecTestSuite struct {
	suite.Suite
	codec *Codec
}

func (s *CodecTestSuite) SetupTest() {
	s.codec = NewCodec().(*Codec)
}

func (s *CodecTestSuite) TestEncodeScalars() {
	now := time.UnixMilli(1700000000000)
	id := primitive.NewObjectID()

	testCases := []struct {
		value    any
		expected any
	}{
		{nil, nil},
		{"a", "a"},
		{true, true},
		{1, int32(1)},
		{math.MaxInt32 + 1, int64(math.MaxInt32 + 1)},
		{int64(2), int64(2)},
		{float32(1.5), 1.5},
		{2.5, 2.5},
		{now, primitive.NewDateTimeFromTime(now)},
		{id, id},
	}
	for _, tc := range testCases {
		res, err := s.codec.Encode(tc.value)
		if s.NoError(err) {
			s.Equal(tc.expected, res, "%T", tc.value)
		}
	}
}

func (s *CodecTestSuite) TestEncodeCollections() {
	res, err := s.codec.Encode([]int{1, 2})
	s.NoError(err)
	s.Equal(bson.A{int32(1), int32(2)}, res)

	res, err = s.codec.Encode(map[string]string{"a": "b"})
	s.NoError(err)
	s.Equal(bson.D{{Key: "a", Value: "b"}}, res)
}

func (s *CodecTestSuite) TestEncodeStructUsesTags() {
	p := profile{
		Audit:   audit{By: "ann"},
		Address: address{Street: "Main", Secret: "x"},
	}
	res, err := s.codec.Encode(p)
	s.NoError(err)
	s.Equal(bson.D{
		{Key: "by", Value: "ann"},
		{Key: "address", Value: bson.D{{Key: "street", Value: "Main"}}},
	}, res)
}

func (s *CodecTestSuite) TestEncodeRegexp() {
	res, err := s.codec.Encode(regexp.MustCompile(`^a.*`))
	s.NoError(err)
	s.Equal(primitive.Regex{Pattern: `^a.*`}, res)

	var nilRe *regexp.Regexp
	res, err = s.codec.Encode(nilRe)
	s.NoError(err)
	s.Nil(res)
}

func (s *CodecTestSuite) TestEncodeUUID() {
	u := uuid.New()
	res, err := s.codec.Encode(u)
	s.NoError(err)
	s.Equal(primitive.Binary{Subtype: 4, Data: u[:]}, res)
}

func (s *CodecTestSuite) TestEncodeFailure() {
	_, err := s.codec.Encode(make(chan int))
	s.ErrorAs(err, &domain.ErrEncode{})
}

func (s *CodecTestSuite) TestDecode() {
	u := uuid.New()
	wire, err := s.codec.Encode(struct {
		Name  string
		Token uuid.UUID
	}{Name: "a", Token: u})
	s.Require().NoError(err)

	var target struct {
		Name  string
		Token uuid.UUID
	}
	s.NoError(s.codec.Decode(wire, &target))
	s.Equal("a", target.Name)
	s.Equal(u, target.Token)
}

func (s *CodecTestSuite) TestOptions() {
	reg := NewRegistry()
	c := NewCodec(WithRegistry(reg)).(*Codec)
	s.Same(reg, c.Registry())
}

func TestCodecTestSuite(t *testing.T) {
	suite.Run(t, new(CodecTestSuite))
}
