// Package comments provides a MongoDB-backed repository for the comments
// collection.
package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mflixapp/mflix/common"
	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
	"github.com/mflixapp/mflix/models"
	"github.com/mflixapp/mflix/mongox"
)

// mostActiveLimit caps the commenter ranking.
const mostActiveLimit = 20

// MongoRepository implements Repository over two handles on the same
// collection: col with default concerns for CRUD, maj reading at majority
// for the ranking aggregation.
type MongoRepository struct {
	col mongox.Collection
	maj mongox.Collection
	m   metrics.Recorder
	log logging.Logger
}

// NewMongoRepository constructs a repository from the default-concern and
// majority-read collection handles (mongox.Comments and
// mongox.CommentsMajority in production).
func NewMongoRepository(col, maj mongox.Collection, m metrics.Recorder, log logging.Logger) *MongoRepository {
	return &MongoRepository{col: col, maj: maj, m: m, log: log}
}

// Get returns the comment for the given hex id, or (nil, nil) when absent.
func (r *MongoRepository) Get(ctx context.Context, id string) (_ *models.Comment, err error) {
	defer r.observe("get", time.Now(), &err)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get comment: invalid id %q: %w", id, common.ErrInvalidArgument)
	}

	comment := &models.Comment{}
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %s: %w: %w", id, common.ErrOperationFailed, err)
	}
	return comment, nil
}

// Add inserts the comment and returns its canonical stored form, re-read by
// the id the store assigned. A missing date is stamped before insert.
func (r *MongoRepository) Add(ctx context.Context, comment *models.Comment) (_ *models.Comment, err error) {
	defer r.observe("add", time.Now(), &err)

	if comment.Date.IsZero() {
		comment.Date = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("add comment by %q: %w: %w", comment.Email, common.ErrOperationFailed, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("add comment by %q: unexpected inserted id %T: %w", comment.Email, res.InsertedID, common.ErrOperationFailed)
	}

	stored, err := r.Get(ctx, oid.Hex())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("add comment %s: not readable after insert: %w", oid.Hex(), common.ErrOperationFailed)
	}
	return stored, nil
}

// Update sets the text of the comment matching both id and author email.
// The combined filter enforces ownership and existence atomically: there is
// no window between an ownership check and the write. No upsert — a miss is
// a no-op reported as (false, nil).
func (r *MongoRepository) Update(ctx context.Context, id, text, email string) (_ bool, err error) {
	defer r.observe("update", time.Now(), &err)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("update comment: invalid id %q: %w", id, common.ErrInvalidArgument)
	}

	filter := bson.M{"_id": oid, "email": email}
	update := bson.M{"$set": bson.M{"text": text}}
	res, uerr := r.col.UpdateOne(ctx, filter, update)
	if uerr != nil {
		return false, fmt.Errorf("update comment %s: %w: %w", id, common.ErrOperationFailed, uerr)
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the comment matching both id and author email, reporting
// true only when a document was actually removed.
func (r *MongoRepository) Delete(ctx context.Context, id, email string) (_ bool, err error) {
	defer r.observe("delete", time.Now(), &err)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("delete comment: invalid id %q: %w", id, common.ErrInvalidArgument)
	}

	res, derr := r.col.DeleteOne(ctx, bson.M{"_id": oid, "email": email})
	if derr != nil {
		return false, fmt.Errorf("delete comment %s: %w: %w", id, common.ErrOperationFailed, derr)
	}
	return res.DeletedCount > 0, nil
}

// MostActiveCommenters groups comments by author email, counts per author,
// and returns the top entries ordered by count descending. Ties break on
// email ascending so the ranking is deterministic across runs.
func (r *MongoRepository) MostActiveCommenters(ctx context.Context) (_ []models.Critic, err error) {
	defer r.observe("most_active_commenters", time.Now(), &err)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$email"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: mostActiveLimit}},
	}

	cur, err := r.maj.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Error(ctx, "commenter ranking failed", "error", err)
		return nil, fmt.Errorf("most active commenters: %w: %w", common.ErrOperationFailed, err)
	}
	defer cur.Close(ctx)

	var critics []models.Critic
	if err = cur.All(ctx, &critics); err != nil {
		return nil, fmt.Errorf("most active commenters: decoding: %w: %w", common.ErrOperationFailed, err)
	}
	return critics, nil
}

func (r *MongoRepository) observe(op string, start time.Time, err *error) {
	r.m.RecordOp(mongox.CommentsCollection, op, time.Since(start))
	if *err != nil {
		r.m.RecordOpFailure(mongox.CommentsCollection, op)
	}
}

var _ Repository = (*MongoRepository)(nil)
