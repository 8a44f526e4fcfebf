// Package repomanager provides a concrete Manager for MongoDB, wiring
// together repository constructors, the collection handles with their
// read/write-concern policy, the session-cascade dependency of the user
// repository, and index bootstrap.
package repomanager

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
	"github.com/mflixapp/mflix/mongox"
	"github.com/mflixapp/mflix/repositories/comments"
	"github.com/mflixapp/mflix/repositories/sessions"
	"github.com/mflixapp/mflix/repositories/users"
)

// MongoManager vends MongoDB-backed repository implementations.
type MongoManager struct {
	db       *mongo.Database
	users    *users.MongoRepository
	sessions *sessions.MongoRepository
	comments *comments.MongoRepository
}

// NewMongoManager builds the repository set over db. The session repository
// is constructed first so the user repository can cascade deletes into it.
func NewMongoManager(db *mongo.Database, m metrics.Recorder, log logging.Logger) *MongoManager {
	sessionRepo := sessions.NewMongoRepository(mongox.Sessions(db), m, log)
	return &MongoManager{
		db:       db,
		sessions: sessionRepo,
		users:    users.NewMongoRepository(mongox.Users(db), sessionRepo, m, log),
		comments: comments.NewMongoRepository(mongox.Comments(db), mongox.CommentsMajority(db), m, log),
	}
}

// Bootstrap creates the indexes the repositories rely on.
func (mm *MongoManager) Bootstrap(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, mm.db)
}

// Users returns the account repository.
func (mm *MongoManager) Users() users.Repository { return mm.users }

// Sessions returns the session repository.
func (mm *MongoManager) Sessions() sessions.Repository { return mm.sessions }

// Comments returns the comment repository.
func (mm *MongoManager) Comments() comments.Repository { return mm.comments }

var _ Manager = (*MongoManager)(nil)
