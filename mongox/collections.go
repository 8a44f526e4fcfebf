package mongox

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Collection names used by the application.
const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
	CommentsCollection = "comments"
)

// Users returns the users collection handle. Account writes must not be
// rolled back after being reported, so the handle carries a majority write
// concern.
func Users(db *mongo.Database) *mongo.Collection {
	return db.Collection(UsersCollection,
		options.Collection().SetWriteConcern(writeconcern.Majority()))
}

// Sessions returns the sessions collection handle.
func Sessions(db *mongo.Database) *mongo.Collection {
	return db.Collection(SessionsCollection)
}

// Comments returns the comments collection handle.
func Comments(db *mongo.Database) *mongo.Collection {
	return db.Collection(CommentsCollection)
}

// CommentsMajority returns a comments handle reading at majority read
// concern, used by the commenter ranking so it never counts writes that
// could still be rolled back.
func CommentsMajority(db *mongo.Database) *mongo.Collection {
	return db.Collection(CommentsCollection,
		options.Collection().SetReadConcern(readconcern.Majority()))
}

// EnsureIndexes creates the indexes the repositories rely on:
//
//   - users.email unique — backs the duplicate-account check on insert
//   - sessions.user_id unique — backs the one-session-per-user upsert
//   - comments.email — serves the ownership filters and the ranking group
//
// Index creation is idempotent, so this is safe to run on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type spec struct {
		collection string
		models     []mongo.IndexModel
	}

	specs := []spec{
		{UsersCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}}},
		{SessionsCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}}},
		{CommentsCollection, []mongo.IndexModel{{
			Keys: bson.D{{Key: "email", Value: 1}},
		}}},
	}

	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", s.collection, err)
		}
	}
	return nil
}
