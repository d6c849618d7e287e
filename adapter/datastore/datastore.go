// Package datastore contains the facade that wires mapping, path resolution,
// validation and encoding together, and turns compiled filters and updates
// into database commands.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/vinicius-lino-figueiredo/godm/adapter/codec"
	"github.com/vinicius-lino-figueiredo/godm/adapter/encoder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/filter"
	"github.com/vinicius-lino-figueiredo/godm/adapter/mapper"
	"github.com/vinicius-lino-figueiredo/godm/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/godm/adapter/resolver"
	"github.com/vinicius-lino-figueiredo/godm/adapter/sink"
	"github.com/vinicius-lino-figueiredo/godm/adapter/update"
	"github.com/vinicius-lino-figueiredo/godm/adapter/validator"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// UpdateResult is the outcome of an update command.
type UpdateResult struct {
	Matched  int64
	Modified int64
	Upserted int64
}

// Datastore builds and issues commands for mapped types.
type Datastore struct {
	mapper    domain.Mapper
	codec     domain.LeafCodec
	resolver  domain.PathResolver
	validator domain.Validator
	encoder   domain.ValueEncoder
	sink      domain.CommandSink
	metrics   domain.Metrics
	log       *zap.Logger
}

// NewDatastore returns a new [Datastore]. Components that are not given
// through options get their default implementation.
func NewDatastore(options ...Option) *Datastore {
	d := &Datastore{}
	for _, option := range options {
		option(d)
	}

	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.codec == nil {
		d.codec = codec.NewCodec()
	}
	if d.mapper == nil {
		d.mapper = mapper.NewMapper(mapper.WithCodec(d.codec), mapper.WithLogger(d.log))
	}
	if d.resolver == nil {
		d.resolver = resolver.NewResolver(d.mapper, resolver.WithCache())
	}
	if d.validator == nil {
		d.validator = validator.NewValidator(validator.WithSchemaLookup(d.mapper))
	}
	if d.encoder == nil {
		d.encoder = encoder.NewEncoder(encoder.WithCodec(d.codec))
	}
	if d.sink == nil {
		d.sink = sink.NewWriterSink(io.Discard)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewNop()
	}
	return d
}

// Mapper returns the mapper holding every mapped schema.
func (d *Datastore) Mapper() domain.Mapper {
	return d.mapper
}

// Map registers entities and the types they embed.
func (d *Datastore) Map(entities ...any) error {
	if err := d.mapper.Map(entities...); err != nil {
		d.log.Warn("cannot map entities", zap.Error(err))
		return err
	}
	return nil
}

// Update returns an empty update for the entity type, mapping it first if
// needed.
func (d *Datastore) Update(entity any) (*update.Update, error) {
	root, err := d.root(entity)
	if err != nil {
		return nil, err
	}
	return update.New(d.resolver, d.validator, d.encoder, root), nil
}

// Filter returns an empty filter for the entity type, mapping it first if
// needed.
func (d *Datastore) Filter(entity any) (*filter.Filter, error) {
	root, err := d.root(entity)
	if err != nil {
		return nil, err
	}
	return filter.New(d.resolver, d.validator, d.encoder, root), nil
}

// Resolve translates a dotted path of the entity type into its wire path.
func (d *Datastore) Resolve(entity any, path string, options ...domain.ResolveOption) (domain.ResolvedPath, error) {
	root, err := d.root(entity)
	if err != nil {
		return domain.ResolvedPath{}, err
	}
	return d.resolver.Resolve(root, path, options...)
}

// UpdateCommand builds an update command applying u to the documents matched
// by f.
func (d *Datastore) UpdateCommand(f *filter.Filter, u *update.Update, options ...domain.UpdateOption) (bson.D, error) {
	var uo domain.UpdateOptions
	for _, option := range options {
		option(&uo)
	}

	if f.Root() != u.Root() {
		return nil, fmt.Errorf("%w: filter and update target different types", domain.ErrCommand{Name: "update"})
	}
	coll, err := d.collection("update", f.Root())
	if err != nil {
		return nil, err
	}

	q, err := f.Compile()
	if err != nil {
		return nil, d.failed(err)
	}
	doc, err := u.Compile()
	if err != nil {
		return nil, d.failed(err)
	}

	return bson.D{
		{Key: "update", Value: coll},
		{Key: "updates", Value: bson.A{bson.D{
			{Key: "q", Value: q},
			{Key: "u", Value: doc},
			{Key: "upsert", Value: uo.Upsert},
			{Key: "multi", Value: uo.Multi},
		}}},
	}, nil
}

// ExecUpdate builds and issues an update command.
func (d *Datastore) ExecUpdate(ctx context.Context, f *filter.Filter, u *update.Update, options ...domain.UpdateOption) (UpdateResult, error) {
	cmd, err := d.UpdateCommand(f, u, options...)
	if err != nil {
		return UpdateResult{}, err
	}
	reply, err := d.Issue(ctx, cmd)
	if err != nil {
		return UpdateResult{}, err
	}

	if v, err := reply.LookupErr("writeErrors", "0", "errmsg"); err == nil {
		err = fmt.Errorf("%w: %s", domain.ErrCommand{Name: "update"}, v.StringValue())
		d.log.Warn("command rejected", zap.String("command", "update"), zap.Error(err))
		return UpdateResult{}, err
	}

	res := UpdateResult{
		Matched:  intValue(reply.Lookup("n")),
		Modified: intValue(reply.Lookup("nModified")),
	}
	if v, ok := reply.Lookup("upserted").ArrayOK(); ok {
		if values, err := v.Values(); err == nil {
			res.Upserted = int64(len(values))
			res.Matched -= res.Upserted
		}
	}
	return res, nil
}

// FindCommand builds a find command for the documents matched by f.
func (d *Datastore) FindCommand(f *filter.Filter, options ...domain.FindOption) (bson.D, error) {
	var fo domain.FindOptions
	for _, option := range options {
		option(&fo)
	}

	coll, err := d.collection("find", f.Root())
	if err != nil {
		return nil, err
	}
	q, err := f.Compile()
	if err != nil {
		return nil, d.failed(err)
	}

	cmd := bson.D{
		{Key: "find", Value: coll},
		{Key: "filter", Value: q},
	}
	if len(fo.Sort) > 0 {
		cmd = append(cmd, bson.E{Key: "sort", Value: fo.Sort})
	}
	if fo.Skip > 0 {
		cmd = append(cmd, bson.E{Key: "skip", Value: fo.Skip})
	}
	if fo.Limit > 0 {
		cmd = append(cmd, bson.E{Key: "limit", Value: fo.Limit})
	}
	return cmd, nil
}

// FindOne issues a find command and decodes the first document matched by f
// into target. It returns [domain.ErrNotFound] if nothing matches.
func (d *Datastore) FindOne(ctx context.Context, f *filter.Filter, target any, options ...domain.FindOption) error {
	options = append(options, domain.WithFindLimit(1))
	cmd, err := d.FindCommand(f, options...)
	if err != nil {
		return err
	}
	cmd = append(cmd, bson.E{Key: "singleBatch", Value: true})

	reply, err := d.Issue(ctx, cmd)
	if err != nil {
		return err
	}

	batch, ok := reply.Lookup("cursor", "firstBatch").ArrayOK()
	if !ok {
		return domain.ErrNotFound
	}
	values, err := batch.Values()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCommand{Name: "find"}, err)
	}
	if len(values) == 0 {
		return domain.ErrNotFound
	}

	var doc bson.D
	if err := values[0].Unmarshal(&doc); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCommand{Name: "find"}, err)
	}
	return d.codec.Decode(doc, target)
}

// Issue sends a command to the sink.
func (d *Datastore) Issue(ctx context.Context, cmd bson.D) (bson.Raw, error) {
	name := ""
	if len(cmd) > 0 {
		name = cmd[0].Key
	}
	d.log.Debug("issuing command", zap.String("command", name))

	reply, err := d.sink.Issue(ctx, cmd)
	d.metrics.CommandIssued(name, err)
	if err != nil {
		d.log.Warn("command failed", zap.String("command", name), zap.Error(err))
		return nil, err
	}
	return reply, nil
}

// root returns the schema of an entity type, mapping it if it is not an
// entity yet.
func (d *Datastore) root(entity any) (domain.SchemaID, error) {
	t, ok := entity.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(entity)
	}
	if t == nil {
		return domain.NoSchema, domain.ErrNotStruct{}
	}
	if !d.mapper.IsEntity(t) {
		if err := d.Map(t); err != nil {
			return domain.NoSchema, err
		}
	}
	return d.mapper.SchemaOf(t)
}

func (d *Datastore) collection(cmd string, root domain.SchemaID) (string, error) {
	sc := d.mapper.Schema(root)
	if sc == nil || !sc.Entity {
		return "", fmt.Errorf("%w: schema %d is not an entity", domain.ErrCommand{Name: cmd}, root)
	}
	return sc.Collection, nil
}

// failed records validation failures before returning err.
func (d *Datastore) failed(err error) error {
	var errVal domain.ErrValidation
	if !errors.As(err, &errVal) {
		return err
	}
	for _, f := range errVal.Failures {
		d.metrics.ValidationFailed(f.Operator, 1)
	}
	d.log.Warn("validation failed", zap.String("failures", domain.JoinFailures(errVal.Failures)))
	return err
}

func intValue(v bson.RawValue) int64 {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32())
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		return int64(v.Double())
	}
	return 0
}
