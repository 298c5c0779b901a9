package backend

import (
	"context"

	"github.com/nospi-app/nospi/internal/client/models"
)

// SignUpRequest registers an account by phone (or email) and password,
// attaching the onboarding profile as user metadata.
type SignUpRequest struct {
	Phone    string
	Email    string
	Password string
	Profile  models.Profile
}

// Client is the Backend Session Client contract.
type Client interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*models.Session, error)
	// CurrentUser returns the cached session's user without any I/O.
	CurrentUser() *models.User
	// Subscribe returns the session-change feed and its release func.
	Subscribe() (<-chan models.AuthEvent, func())

	SignIn(ctx context.Context, identifier string, password []byte) (*models.Session, error)
	SignUp(ctx context.Context, req SignUpRequest) (*models.Session, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, profile models.Profile) (*models.User, error)
	Ping(ctx context.Context) error

	SelectNotes(ctx context.Context) ([]models.Note, error)
	InsertNote(ctx context.Context, note models.NewNote) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}
