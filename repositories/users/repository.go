// Package users declares the repository contract for account documents,
// keyed by email.
package users

import (
	"context"

	"github.com/mflixapp/mflix/models"
)

// Repository defines operations for creating, reading, updating, and
// deleting user accounts.
type Repository interface {
	// Add inserts a new account. A duplicate email or a rejected write
	// fails with an error wrapping common.ErrOperationFailed that names
	// the account. The caller decides whether to retry.
	Add(ctx context.Context, user *models.User) error

	// Get returns the account for email, or (nil, nil) when there is none.
	// Absence is a normal outcome, not an error.
	Get(ctx context.Context, email string) (*models.User, error)

	// UpdatePreferences merges prefs into the stored preference map:
	// keys present in prefs win, keys absent from prefs are preserved.
	// A nil map fails with common.ErrInvalidArgument, an unknown email
	// with common.ErrNotFound. A nil return means the store acknowledged
	// the write.
	UpdatePreferences(ctx context.Context, email string, prefs map[string]string) error

	// Delete removes the account after deleting its sessions. If the
	// session cascade fails the account is left intact, so a live token
	// can never outlive a way to revoke it.
	Delete(ctx context.Context, email string) error
}
