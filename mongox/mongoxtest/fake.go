// Package mongoxtest provides an in-memory mongox.Collection for repository
// tests, playing the role sqlmock plays for SQL-backed repositories. It
// understands the document shapes the repositories actually send: flat
// equality filters, $set updates with optionally dotted paths, upserts, and
// the group/sort/limit ranking pipeline.
package mongoxtest

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mflixapp/mflix/mongox"
)

// FakeCollection is an in-memory implementation of mongox.Collection.
// The zero value is an empty collection. Error fields, when set, are
// returned by the corresponding operation instead of touching the data;
// they simulate store-level failures.
type FakeCollection struct {
	mu   sync.Mutex
	docs []bson.D

	// UniqueFields emulates unique indexes: inserting a document whose
	// value for one of these fields already exists fails with a duplicate
	// key write exception.
	UniqueFields []string

	InsertErr    error
	FindErr      error
	UpdateErr    error
	DeleteErr    error
	CountErr     error
	AggregateErr error
}

var _ mongox.Collection = (*FakeCollection)(nil)

// Seed inserts documents without unique-index checks. It panics on
// documents that cannot be marshaled; seeding is test setup, not behavior
// under test.
func (c *FakeCollection) Seed(docs ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range docs {
		d, err := toD(doc)
		if err != nil {
			panic(fmt.Sprintf("mongoxtest: seeding %T: %v", doc, err))
		}
		if _, ok := lookup(d, "_id"); !ok {
			d = append(bson.D{{Key: "_id", Value: primitive.NewObjectID()}}, d...)
		}
		c.docs = append(c.docs, d)
	}
}

// Len reports the number of stored documents.
func (c *FakeCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *FakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if c.InsertErr != nil {
		return nil, c.InsertErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := toD(document)
	if err != nil {
		return nil, err
	}
	for _, field := range c.UniqueFields {
		v, ok := lookup(d, field)
		if !ok {
			continue
		}
		for _, existing := range c.docs {
			if ev, ok := lookup(existing, field); ok && valuesEqual(ev, v) {
				return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{
					Code:    11000,
					Message: fmt.Sprintf("E11000 duplicate key error: %s", field),
				}}}
			}
		}
	}

	id, ok := lookup(d, "_id")
	if !ok {
		id = primitive.NewObjectID()
		d = append(bson.D{{Key: "_id", Value: id}}, d...)
	}
	c.docs = append(c.docs, d)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (c *FakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if c.FindErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.FindErr, nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := toD(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	for _, d := range c.docs {
		if matches(d, f) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *FakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if c.UpdateErr != nil {
		return nil, c.UpdateErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := toD(filter)
	if err != nil {
		return nil, err
	}
	u, err := toD(update)
	if err != nil {
		return nil, err
	}
	setRaw, ok := lookup(u, "$set")
	if !ok {
		return nil, fmt.Errorf("mongoxtest: only $set updates are supported, got %v", update)
	}
	set, ok := setRaw.(bson.D)
	if !ok {
		return nil, fmt.Errorf("mongoxtest: $set must be a document, got %T", setRaw)
	}

	for i, d := range c.docs {
		if !matches(d, f) {
			continue
		}
		for _, e := range set {
			d = applySet(d, e.Key, e.Value)
		}
		c.docs[i] = d
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	if !upsertRequested(opts) {
		return &mongo.UpdateResult{}, nil
	}

	// Upsert: new document from the filter's equality fields plus the set.
	d := bson.D{}
	for _, e := range f {
		d = applySet(d, e.Key, e.Value)
	}
	for _, e := range set {
		d = applySet(d, e.Key, e.Value)
	}
	id, ok := lookup(d, "_id")
	if !ok {
		id = primitive.NewObjectID()
		d = append(bson.D{{Key: "_id", Value: id}}, d...)
	}
	c.docs = append(c.docs, d)
	return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
}

func (c *FakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter, true)
}

func (c *FakeCollection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter, false)
}

func (c *FakeCollection) delete(filter interface{}, single bool) (*mongo.DeleteResult, error) {
	if c.DeleteErr != nil {
		return nil, c.DeleteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := toD(filter)
	if err != nil {
		return nil, err
	}
	var kept []bson.D
	var deleted int64
	for _, d := range c.docs {
		if matches(d, f) && (!single || deleted == 0) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return &mongo.DeleteResult{DeletedCount: deleted}, nil
}

func (c *FakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if c.CountErr != nil {
		return 0, c.CountErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := toD(filter)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, d := range c.docs {
		if matches(d, f) {
			n++
		}
	}
	return n, nil
}

func (c *FakeCollection) Aggregate(_ context.Context, pipeline interface{}, _ ...*options.AggregateOptions) (*mongo.Cursor, error) {
	if c.AggregateErr != nil {
		return nil, c.AggregateErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var stages []bson.D
	switch p := pipeline.(type) {
	case mongo.Pipeline:
		stages = p
	case []bson.D:
		stages = p
	default:
		return nil, fmt.Errorf("mongoxtest: unsupported pipeline type %T", pipeline)
	}

	working := make([]bson.D, len(c.docs))
	copy(working, c.docs)

	var err error
	for _, stage := range stages {
		if len(stage) != 1 {
			return nil, fmt.Errorf("mongoxtest: malformed stage %v", stage)
		}
		switch stage[0].Key {
		case "$group":
			working, err = groupStage(working, stage[0].Value)
		case "$sort":
			working, err = sortStage(working, stage[0].Value)
		case "$limit":
			working, err = limitStage(working, stage[0].Value)
		default:
			err = fmt.Errorf("mongoxtest: unsupported stage %q", stage[0].Key)
		}
		if err != nil {
			return nil, err
		}
	}

	out := make([]interface{}, len(working))
	for i, d := range working {
		out[i] = d
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}
