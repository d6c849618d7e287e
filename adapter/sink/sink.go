// Package sink contains [domain.CommandSink] implementations.
package sink

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/ctxsync"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runner runs database commands. [*mongo.Database] implements it.
type Runner interface {
	RunCommand(ctx context.Context, runCommand any, opts ...*options.RunCmdOptions) *mongo.SingleResult
}

// MongoSink implements [domain.CommandSink] on a database connection.
type MongoSink struct {
	runner Runner
}

// NewMongoSink returns a sink that runs every command through runner.
func NewMongoSink(runner Runner) domain.CommandSink {
	return &MongoSink{runner: runner}
}

// Issue implements [domain.CommandSink].
func (s *MongoSink) Issue(ctx context.Context, cmd bson.D) (bson.Raw, error) {
	raw, err := s.runner.RunCommand(ctx, cmd).Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommand{Name: commandName(cmd)}, err)
	}
	return raw, nil
}

// WriterSink implements [domain.CommandSink] by writing commands to an
// [io.Writer], one canonical extended JSON document per line. Every command
// is acknowledged with {ok: 1}.
type WriterSink struct {
	mu *ctxsync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink that writes commands to w. Writes are
// serialized, and a command waiting for its turn is dropped once its context
// is done.
func NewWriterSink(w io.Writer) domain.CommandSink {
	return &WriterSink{mu: ctxsync.NewMutex(), w: w}
}

var okReply = mustMarshal(bson.D{{Key: "ok", Value: 1.0}})

func mustMarshal(doc bson.D) bson.Raw {
	b, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return b
}

// Issue implements [domain.CommandSink].
func (s *WriterSink) Issue(ctx context.Context, cmd bson.D) (bson.Raw, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	b, err := bson.MarshalExtJSON(cmd, true, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommand{Name: commandName(cmd)}, err)
	}

	if err := s.mu.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	wr := contextio.NewWriter(ctx, s.w)
	if _, err = wr.Write(append(b, '\n')); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommand{Name: commandName(cmd)}, err)
	}
	return slices.Clone(okReply), nil
}

func commandName(cmd bson.D) string {
	if len(cmd) == 0 {
		return ""
	}
	return cmd[0].Key
}
