// Package notes is a small note-taking domain wired through grove. It
// exercises both scopes: the database is a singleton and every request gets
// its own transaction, repository and service.
package notes

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ARTM2000/grove/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Repo reads and writes notes inside the request's unit of work.
type Repo struct {
	uow *UnitOfWork
}

func NewRepo(uow *UnitOfWork) (*Repo, error) {
	return &Repo{uow: uow}, nil
}

func (r *Repo) Create(ctx context.Context, n *Note) error {
	return r.uow.Do(func(tx *gorm.DB) error {
		return errors.Wrap(tx.WithContext(ctx).Create(n).Error, "failed to create note")
	})
}

func (r *Repo) Get(ctx context.Context, id uint) (*Note, error) {
	var n Note
	err := r.uow.Do(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).First(&n, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("note not found", apperr.WithCause(err))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get note %d", id)
	}
	return &n, nil
}

func (r *Repo) List(ctx context.Context) ([]Note, error) {
	var ns []Note
	err := r.uow.Do(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Order("id ASC").Find(&ns).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notes")
	}
	return ns, nil
}

// Service is the request-scoped notes API.
type Service interface {
	Create(ctx context.Context, title, body string) (*Note, error)
	Get(ctx context.Context, id uint) (*Note, error)
	List(ctx context.Context) ([]Note, error)
}

type service struct {
	repo   *Repo
	logger *slog.Logger
}

func NewService(repo *Repo, logger *slog.Logger) (Service, error) {
	return &service{repo: repo, logger: logger}, nil
}

func (s *service) Create(ctx context.Context, title, body string) (*Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if len(title) > 200 {
		return nil, apperr.Validation("title must be at most 200 characters")
	}

	n := &Note{Title: title, Body: body}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "note created", "id", n.ID)
	return n, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Note, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}
