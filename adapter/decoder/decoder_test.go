package decoder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type address struct {
	City string
}

type person struct {
	ID      primitive.ObjectID
	Name    string
	Age     int     `odm:"years"`
	Tags    []string
	Home    address
	Created time.Time
	Token   uuid.UUID
}

type DecoderTestSuite struct {
	suite.Suite
	dec *Decoder
}

func (s *DecoderTestSuite) SetupTest() {
	s.dec = NewDecoder().(*Decoder)
}

func (s *DecoderTestSuite) TestDecodeDocument() {
	id := primitive.NewObjectID()
	tok := uuid.New()
	now := time.UnixMilli(time.Now().UnixMilli())

	src := bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ann"},
		{Key: "years", Value: int32(30)},
		{Key: "tags", Value: bson.A{"a", "b"}},
		{Key: "home", Value: bson.D{{Key: "city", Value: "Lisbon"}}},
		{Key: "created", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "token", Value: primitive.Binary{Subtype: 4, Data: tok[:]}},
	}

	var p person
	s.NoError(s.dec.Decode(src, &p))
	s.Equal(person{
		ID:      id,
		Name:    "Ann",
		Age:     30,
		Tags:    []string{"a", "b"},
		Home:    address{City: "Lisbon"},
		Created: now,
		Token:   tok,
	}, p)
}

func (s *DecoderTestSuite) TestDecodeHooksFromStrings() {
	id := primitive.NewObjectID()
	tok := uuid.New()

	var p person
	err := s.dec.Decode(map[string]any{"_id": id.Hex(), "token": tok.String()}, &p)
	s.NoError(err)
	s.Equal(id, p.ID)
	s.Equal(tok, p.Token)
}

func (s *DecoderTestSuite) TestDecodeIntoOrderedDocument() {
	src := bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}}
	var d bson.D
	s.NoError(s.dec.Decode(src, &d))
	s.Equal(src, d)
}

func (s *DecoderTestSuite) TestDecodeIntoMap() {
	src := bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: bson.A{int32(1)}}}}}
	var m map[string]any
	s.NoError(s.dec.Decode(src, &m))
	s.Equal(map[string]any{"a": map[string]any{"b": []any{int32(1)}}}, m)
}

func (s *DecoderTestSuite) TestDecodeErrors() {
	s.ErrorIs(s.dec.Decode(bson.D{}, nil), domain.ErrTargetNil)

	var p person
	s.ErrorIs(s.dec.Decode(bson.D{}, p), domain.ErrNonPointer)

	err := s.dec.Decode(bson.D{{Key: "name", Value: bson.A{1}}}, &p)
	s.ErrorAs(err, &domain.ErrDecode{})

	err = s.dec.Decode(map[string]any{"token": "not a uuid"}, &p)
	s.ErrorAs(err, &domain.ErrDecode{})
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}
