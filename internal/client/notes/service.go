// Package notes wraps the backend's notes table. Every operation is a single
// round trip and reports failure in its result instead of returning an
// error or panicking.
package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/common"
	"github.com/nospi-app/nospi/internal/logging"
)

// Backend is the part of the backend client the notes service uses.
type Backend interface {
	CurrentUser() *models.User
	SelectNotes(ctx context.Context) ([]models.Note, error)
	InsertNote(ctx context.Context, note models.NewNote) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

type Service struct {
	backend Backend
	logger  logging.Logger
}

func NewService(backend Backend, logger logging.Logger) *Service {
	return &Service{backend: backend, logger: logger.With("component", "notes")}
}

// guard converts a panic in fn into a failed result.
func guard[T any](ctx context.Context, logger logging.Logger, op string, fn func() Result[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "notes call panicked", "op", op, "panic", r)
			res = fail[T](fmt.Errorf("%s: unexpected error: %v", op, r))
		}
	}()
	return fn()
}

// FetchNotes returns the caller's notes, newest first.
func (s *Service) FetchNotes(ctx context.Context) Result[[]models.Note] {
	return guard(ctx, s.logger, "fetch notes", func() Result[[]models.Note] {
		notes, err := s.backend.SelectNotes(ctx)
		if err != nil {
			s.logger.Warn(ctx, "fetch notes failed", "error", err)
			return fail[[]models.Note](err)
		}
		return Result[[]models.Note]{Data: notes}
	})
}

// CreateNote inserts a note owned by the current user. Without a user no
// request is made.
func (s *Service) CreateNote(ctx context.Context, title string, content *string) Result[*models.Note] {
	return guard(ctx, s.logger, "create note", func() Result[*models.Note] {
		user := s.backend.CurrentUser()
		if user == nil {
			return fail[*models.Note](common.ErrNotAuthenticated)
		}
		if strings.TrimSpace(title) == "" {
			return Result[*models.Note]{Error: "title is required"}
		}

		n, err := s.backend.InsertNote(ctx, models.NewNote{Title: title, Content: content, UserID: user.ID})
		if err != nil {
			s.logger.Warn(ctx, "create note failed", "error", err)
			return fail[*models.Note](err)
		}
		return Result[*models.Note]{Data: n}
	})
}

func (s *Service) UpdateNote(ctx context.Context, id string, patch models.NotePatch) Result[*models.Note] {
	return guard(ctx, s.logger, "update note", func() Result[*models.Note] {
		if patch.Empty() {
			return Result[*models.Note]{Error: "nothing to update"}
		}

		n, err := s.backend.UpdateNote(ctx, id, patch)
		if err != nil {
			s.logger.Warn(ctx, "update note failed", "id", id, "error", err)
			return fail[*models.Note](err)
		}
		return Result[*models.Note]{Data: n}
	})
}

func (s *Service) DeleteNote(ctx context.Context, id string) DeleteResult {
	res := guard(ctx, s.logger, "delete note", func() Result[struct{}] {
		if err := s.backend.DeleteNote(ctx, id); err != nil {
			s.logger.Warn(ctx, "delete note failed", "id", id, "error", err)
			return fail[struct{}](err)
		}
		return Result[struct{}]{}
	})
	return DeleteResult{Error: res.Error}
}
