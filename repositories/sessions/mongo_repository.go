// Package sessions provides a MongoDB-backed repository for authentication
// sessions in the sessions collection.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mflixapp/mflix/common"
	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
	"github.com/mflixapp/mflix/models"
	"github.com/mflixapp/mflix/mongox"
)

// MongoRepository implements Repository over a mongox.Collection
// (satisfied by *mongo.Collection and by test doubles).
type MongoRepository struct {
	col mongox.Collection
	m   metrics.Recorder
	log logging.Logger
}

// NewMongoRepository constructs a repository bound to the given collection.
func NewMongoRepository(col mongox.Collection, m metrics.Recorder, log logging.Logger) *MongoRepository {
	return &MongoRepository{col: col, m: m, log: log}
}

// Create upserts the session document for userID, setting its token. The
// unique index on user_id guarantees the upsert never leaves duplicates.
func (r *MongoRepository) Create(ctx context.Context, userID, jwt string) (err error) {
	defer r.observe("create", time.Now(), &err)

	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": bson.M{"jwt": jwt}}
	_, err = r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.log.Error(ctx, "session upsert failed", "user_id", userID, "error", err)
		return fmt.Errorf("create session for user %q: %w: %w", userID, common.ErrOperationFailed, err)
	}
	return nil
}

// Get returns the session for userID, or (nil, nil) when there is none.
func (r *MongoRepository) Get(ctx context.Context, userID string) (_ *models.Session, err error) {
	defer r.observe("get", time.Now(), &err)

	session := &models.Session{}
	err = r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session for user %q: %w: %w", userID, common.ErrOperationFailed, err)
	}
	return session, nil
}

// DeleteForUser removes every session record for userID. A zero-match
// delete is a success.
func (r *MongoRepository) DeleteForUser(ctx context.Context, userID string) (err error) {
	defer r.observe("delete_for_user", time.Now(), &err)

	_, err = r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("delete sessions for user %q: %w: %w", userID, common.ErrOperationFailed, err)
	}
	return nil
}

func (r *MongoRepository) observe(op string, start time.Time, err *error) {
	r.m.RecordOp(mongox.SessionsCollection, op, time.Since(start))
	if *err != nil {
		r.m.RecordOpFailure(mongox.SessionsCollection, op)
	}
}

var _ Repository = (*MongoRepository)(nil)
