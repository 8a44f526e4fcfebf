// Package sessions declares the repository contract for authentication
// sessions, keyed by the owning user's identity.
package sessions

import (
	"context"

	"github.com/mflixapp/mflix/models"
)

// Repository defines operations for storing, retrieving, and revoking
// sessions. A user has at most one session at a time.
type Repository interface {
	// Create stores the token for userID, replacing the token of an
	// existing session instead of creating a duplicate. Failures are
	// retryable from the caller's side; the repository never retries.
	Create(ctx context.Context, userID, jwt string) error

	// Get returns the session for userID, or (nil, nil) when the user has
	// none. To the caller absence means "not authenticated", not an error.
	Get(ctx context.Context, userID string) (*models.Session, error)

	// DeleteForUser removes the session records for userID. Deleting
	// sessions that do not exist is success, not an error.
	DeleteForUser(ctx context.Context, userID string) error
}
