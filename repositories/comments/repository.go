// Package comments declares the repository contract for user-submitted
// comments. Mutations are ownership-scoped: edit and delete only apply to
// the comment whose stored author email matches the caller-supplied one,
// and the check is part of the mutation's filter, not a separate step.
package comments

import (
	"context"

	"github.com/mflixapp/mflix/models"
)

// Repository defines operations on the comments collection.
type Repository interface {
	// Get returns the comment with the given hex id, or (nil, nil) when
	// there is none. A malformed id fails with common.ErrInvalidArgument.
	Get(ctx context.Context, id string) (*models.Comment, error)

	// Add inserts the comment, then re-reads it by its freshly assigned id
	// and returns the canonical stored form, so callers never trust fields
	// the store may have normalized. An insert error fails with
	// common.ErrOperationFailed.
	Add(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	// Update sets the text of the comment matching both id and author
	// email in a single store operation. It returns (false, nil) when the
	// filter matched nothing — wrong id, wrong author, or both — which is
	// distinct from a store failure.
	Update(ctx context.Context, id, text, email string) (bool, error)

	// Delete removes the comment matching both id and author email. It
	// returns true only if a document was actually removed; an
	// acknowledged zero-match delete reports false.
	Delete(ctx context.Context, id, email string) (bool, error)

	// MostActiveCommenters ranks authors by comment count, descending,
	// capped at 20 entries. The read runs at majority read concern.
	MostActiveCommenters(ctx context.Context) ([]models.Critic, error)
}
