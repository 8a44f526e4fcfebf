// Package users provides a MongoDB-backed repository for account documents
// in the users collection. Account writes go through a majority
// write-concern handle; see mongox.Users.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mflixapp/mflix/common"
	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
	"github.com/mflixapp/mflix/models"
	"github.com/mflixapp/mflix/mongox"
	"github.com/mflixapp/mflix/repositories/sessions"
)

// MongoRepository implements Repository over a mongox.Collection. It holds
// the session repository so account deletion can cascade.
type MongoRepository struct {
	col      mongox.Collection
	sessions sessions.Repository
	m        metrics.Recorder
	log      logging.Logger
}

// NewMongoRepository constructs a repository bound to the given collection,
// cascading deletes through sessionRepo.
func NewMongoRepository(col mongox.Collection, sessionRepo sessions.Repository, m metrics.Recorder, log logging.Logger) *MongoRepository {
	return &MongoRepository{col: col, sessions: sessionRepo, m: m, log: log}
}

// Add inserts the account document. The unique index on email turns a
// duplicate identity into a duplicate-key write error.
func (r *MongoRepository) Add(ctx context.Context, user *models.User) (err error) {
	defer r.observe("add", time.Now(), &err)

	_, err = r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("add user: account %q already exists: %w: %w", user.Email, common.ErrOperationFailed, err)
		}
		return fmt.Errorf("add user %q: %w: %w", user.Email, common.ErrOperationFailed, err)
	}
	return nil
}

// Get returns the account for email, or (nil, nil) when there is none.
func (r *MongoRepository) Get(ctx context.Context, email string) (_ *models.User, err error) {
	defer r.observe("get", time.Now(), &err)

	user := &models.User{}
	err = r.col.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w: %w", email, common.ErrOperationFailed, err)
	}
	return user, nil
}

// UpdatePreferences merges prefs into the stored preferences. The merge is
// expressed as a single update with one dotted $set path per key, so two
// concurrent merges interleave per key instead of one overwriting the other
// wholesale. An empty (non-nil) map degrades to an existence check.
func (r *MongoRepository) UpdatePreferences(ctx context.Context, email string, prefs map[string]string) (err error) {
	defer r.observe("update_preferences", time.Now(), &err)

	if prefs == nil {
		return fmt.Errorf("update preferences for %q: nil preferences: %w", email, common.ErrInvalidArgument)
	}
	for k := range prefs {
		// Dotted keys cannot be addressed as update paths and $-prefixed
		// keys collide with operator names.
		if k == "" || strings.Contains(k, ".") || strings.HasPrefix(k, "$") {
			return fmt.Errorf("update preferences for %q: unusable key %q: %w", email, k, common.ErrInvalidArgument)
		}
	}

	if len(prefs) == 0 {
		n, cerr := r.col.CountDocuments(ctx, bson.M{"email": email})
		if cerr != nil {
			return fmt.Errorf("update preferences for %q: %w: %w", email, common.ErrOperationFailed, cerr)
		}
		if n == 0 {
			return fmt.Errorf("update preferences: user %q: %w", email, common.ErrNotFound)
		}
		return nil
	}

	set := bson.M{}
	for k, v := range prefs {
		set["preferences."+k] = v
	}
	res, uerr := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if uerr != nil {
		return fmt.Errorf("update preferences for %q: %w: %w", email, common.ErrOperationFailed, uerr)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update preferences: user %q: %w", email, common.ErrNotFound)
	}
	return nil
}

// Delete removes the account for email. Sessions go first; if that fails
// the account document is left untouched and the failure is returned.
// Deleting an account that does not exist is a no-op success.
func (r *MongoRepository) Delete(ctx context.Context, email string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	if err = r.sessions.DeleteForUser(ctx, email); err != nil {
		r.log.Error(ctx, "session cascade failed, account kept", "email", email, "error", err)
		return fmt.Errorf("delete user %q: session cascade: %w", email, err)
	}
	if _, err = r.col.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("delete user %q: %w: %w", email, common.ErrOperationFailed, err)
	}
	return nil
}

func (r *MongoRepository) observe(op string, start time.Time, err *error) {
	r.m.RecordOp(mongox.UsersCollection, op, time.Since(start))
	if *err != nil {
		r.m.RecordOpFailure(mongox.UsersCollection, op)
	}
}

var _ Repository = (*MongoRepository)(nil)
