package datastore

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/internal/fixture"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
)

type sinkMock struct {
	mock.Mock
}

func (s *sinkMock) Issue(ctx context.Context, cmd bson.D) (bson.Raw, error) {
	call := s.Called(ctx, cmd)
	raw, _ := call.Get(0).(bson.Raw)
	return raw, call.Error(1)
}

type DatastoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	sink    *sinkMock
	metrics *metrics.Metrics
	ds      *Datastore
}

func (s *DatastoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.sink = new(sinkMock)
	s.metrics = metrics.NewMetrics()
	s.ds = NewDatastore(
		WithSink(s.sink),
		WithMetrics(s.metrics),
		WithLogger(zaptest.NewLogger(s.T())),
	)
	s.Require().NoError(s.ds.Map(fixture.Post{}))
}

func (s *DatastoreTestSuite) reply(doc bson.D) bson.Raw {
	b, err := bson.Marshal(doc)
	s.Require().NoError(err)
	return b
}

func (s *DatastoreTestSuite) TestResolve() {
	rp, err := s.ds.Resolve(fixture.Post{}, "Address.Zip")
	s.NoError(err)
	s.Equal("addr.postal", rp.WirePath)

	rp, err = s.ds.Resolve(&fixture.Post{}, "addr.unknown", domain.WithResolveValidation(false))
	s.NoError(err)
	s.Equal("addr.unknown", rp.WirePath)
}

func (s *DatastoreTestSuite) TestMapsOnDemand() {
	_, err := s.ds.Resolve(fixture.Orphan{}, "owner")
	s.ErrorAs(err, &domain.ErrNoIDField{})

	f, err := s.ds.Filter(fixture.Author{})
	s.Require().NoError(err)
	cmd, err := s.ds.FindCommand(f.Eq("name", "ann"))
	s.NoError(err)
	s.Equal(bson.D{
		{Key: "find", Value: "authors"},
		{Key: "filter", Value: bson.D{{Key: "name", Value: "ann"}}},
	}, cmd)

	_, err = s.ds.Update(1)
	s.ErrorAs(err, &domain.ErrNotStruct{})
}

func (s *DatastoreTestSuite) TestUpdateCommand() {
	f, err := s.ds.Filter(fixture.Post{})
	s.Require().NoError(err)
	u, err := s.ds.Update(fixture.Post{})
	s.Require().NoError(err)

	cmd, err := s.ds.UpdateCommand(
		f.Eq("title", "a"),
		u.Inc("views").Push("tags", "b"),
		domain.WithUpsert(true),
	)
	s.NoError(err)
	s.Equal(bson.D{
		{Key: "update", Value: "Post"},
		{Key: "updates", Value: bson.A{bson.D{
			{Key: "q", Value: bson.D{{Key: "title", Value: "a"}}},
			{Key: "u", Value: bson.D{
				{Key: "$inc", Value: bson.D{{Key: "views", Value: int32(1)}}},
				{Key: "$push", Value: bson.D{{Key: "tags", Value: "b"}}},
			}},
			{Key: "upsert", Value: true},
			{Key: "multi", Value: false},
		}}},
	}, cmd)
}

func (s *DatastoreTestSuite) TestUpdateCommandMismatch() {
	f, err := s.ds.Filter(fixture.Author{})
	s.Require().NoError(err)
	u, err := s.ds.Update(fixture.Post{})
	s.Require().NoError(err)

	_, err = s.ds.UpdateCommand(f, u.Set("title", "a"))
	s.ErrorIs(err, domain.ErrCommand{Name: "update"})
}

func (s *DatastoreTestSuite) TestValidationMetrics() {
	f, err := s.ds.Filter(fixture.Post{})
	s.Require().NoError(err)
	u, err := s.ds.Update(fixture.Post{})
	s.Require().NoError(err)

	_, err = s.ds.UpdateCommand(f.Eq("likes", "x").Where("title", domain.OpExists, 1), u.Set("title", "a"))
	s.ErrorAs(err, &domain.ErrValidation{})
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Validations.WithLabelValues("equality")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Validations.WithLabelValues("$exists")))
	s.sink.AssertNotCalled(s.T(), "Issue", mock.Anything, mock.Anything)
}

func (s *DatastoreTestSuite) TestExecUpdate() {
	f, _ := s.ds.Filter(fixture.Post{})
	u, _ := s.ds.Update(fixture.Post{})
	f.Eq("title", "a")
	u.Set("active", true)

	cmd, err := s.ds.UpdateCommand(f, u, domain.WithUpdateMulti(true))
	s.Require().NoError(err)
	reply := s.reply(bson.D{
		{Key: "n", Value: int32(3)},
		{Key: "nModified", Value: int32(2)},
		{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}}}},
		{Key: "ok", Value: 1.0},
	})
	s.sink.On("Issue", s.ctx, cmd).Return(reply, nil).Once()

	res, err := s.ds.ExecUpdate(s.ctx, f, u, domain.WithUpdateMulti(true))
	s.NoError(err)
	s.Equal(UpdateResult{Matched: 2, Modified: 2, Upserted: 1}, res)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Commands.WithLabelValues("update", "ok")))
	s.sink.AssertExpectations(s.T())
}

func (s *DatastoreTestSuite) TestExecUpdateWriteError() {
	f, _ := s.ds.Filter(fixture.Post{})
	u, _ := s.ds.Update(fixture.Post{})
	reply := s.reply(bson.D{
		{Key: "n", Value: int32(0)},
		{Key: "writeErrors", Value: bson.A{bson.D{
			{Key: "index", Value: int32(0)},
			{Key: "errmsg", Value: "Cannot apply $inc to a value of non-numeric type"},
		}}},
		{Key: "ok", Value: 1.0},
	})
	s.sink.On("Issue", s.ctx, mock.Anything).Return(reply, nil).Once()

	_, err := s.ds.ExecUpdate(s.ctx, f, u.Inc("views"))
	s.ErrorIs(err, domain.ErrCommand{Name: "update"})
	s.ErrorContains(err, "non-numeric")
}

func (s *DatastoreTestSuite) TestIssueFailure() {
	errSink := errors.New("connection reset")
	s.sink.On("Issue", s.ctx, mock.Anything).Return(nil, errSink).Once()

	_, err := s.ds.Issue(s.ctx, bson.D{{Key: "ping", Value: 1}})
	s.ErrorIs(err, errSink)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Commands.WithLabelValues("ping", "failed")))
}

func (s *DatastoreTestSuite) TestFindCommand() {
	f, _ := s.ds.Filter(fixture.Post{})
	cmd, err := s.ds.FindCommand(
		f.Gt("views", int64(10)),
		domain.WithFindSort(bson.D{{Key: "views", Value: -1}}),
		domain.WithFindSkip(5),
		domain.WithFindLimit(10),
	)
	s.NoError(err)
	s.Equal(bson.D{
		{Key: "find", Value: "Post"},
		{Key: "filter", Value: bson.D{{Key: "views", Value: bson.D{{Key: "$gt", Value: int64(10)}}}}},
		{Key: "sort", Value: bson.D{{Key: "views", Value: -1}}},
		{Key: "skip", Value: int64(5)},
		{Key: "limit", Value: int64(10)},
	}, cmd)
}

func (s *DatastoreTestSuite) TestFindOne() {
	id := primitive.NewObjectID()
	f, _ := s.ds.Filter(fixture.Author{})
	f.Eq("_id", id)

	expectedCmd := bson.D{
		{Key: "find", Value: "authors"},
		{Key: "filter", Value: bson.D{{Key: "_id", Value: id}}},
		{Key: "limit", Value: int64(1)},
		{Key: "singleBatch", Value: true},
	}
	reply := s.reply(bson.D{
		{Key: "cursor", Value: bson.D{
			{Key: "firstBatch", Value: bson.A{bson.D{{Key: "_id", Value: id}, {Key: "name", Value: "ann"}}}},
			{Key: "id", Value: int64(0)},
		}},
		{Key: "ok", Value: 1.0},
	})
	s.sink.On("Issue", s.ctx, expectedCmd).Return(reply, nil).Once()

	var author fixture.Author
	s.NoError(s.ds.FindOne(s.ctx, f, &author))
	s.Equal(fixture.Author{ID: id, Name: "ann"}, author)
	s.sink.AssertExpectations(s.T())
}

func (s *DatastoreTestSuite) TestFindOneNotFound() {
	f, _ := s.ds.Filter(fixture.Author{})
	reply := s.reply(bson.D{
		{Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: bson.A{}}}},
		{Key: "ok", Value: 1.0},
	})
	s.sink.On("Issue", s.ctx, mock.Anything).Return(reply, nil).Once()

	var author fixture.Author
	s.ErrorIs(s.ds.FindOne(s.ctx, f, &author), domain.ErrNotFound)
}

func (s *DatastoreTestSuite) TestDefaults() {
	ds := NewDatastore()
	f, err := ds.Filter(fixture.Post{})
	s.Require().NoError(err)
	u, err := ds.Update(fixture.Post{})
	s.Require().NoError(err)

	res, err := ds.ExecUpdate(s.ctx, f.Eq("title", "a"), u.Unset("title"))
	s.NoError(err)
	s.Equal(UpdateResult{}, res)

	var post fixture.Post
	s.ErrorIs(ds.FindOne(s.ctx, f, &post), domain.ErrNotFound)
	s.NotNil(ds.Mapper())
}

func TestDatastoreTestSuite(t *testing.T) {
	suite.Run(t, new(DatastoreTestSuite))
}
