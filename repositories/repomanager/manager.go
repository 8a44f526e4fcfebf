package repomanager

import (
	"context"

	"github.com/mflixapp/mflix/repositories/comments"
	"github.com/mflixapp/mflix/repositories/sessions"
	"github.com/mflixapp/mflix/repositories/users"
)

// Manager vends the repositories of the data-access layer, wired together
// over one database handle.
type Manager interface {
	// Bootstrap prepares the store for use, creating the indexes the
	// repositories rely on. Idempotent; run it once at startup.
	Bootstrap(ctx context.Context) error
	Users() users.Repository
	Sessions() sessions.Repository
	Comments() comments.Repository
}
