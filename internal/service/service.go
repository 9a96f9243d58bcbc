package service

import (
	"context"

	"contentboard/internal/config"
	"contentboard/internal/logger"
	"contentboard/internal/repository"
	"contentboard/internal/storage"
)

// Transactor runs fn as one all-or-nothing unit. Repositories called with
// the context passed to fn take part in it. WithReadTx gives fn a single
// read-only snapshot.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	User   UserService
	Post   PostService
	Tag    TagService
	Auth   AuthService
	Tables TablesService
}

func NewService(rep *repository.Repository, tx Transactor, cfg *config.Config, storage storage.Storage, log *logger.Logger) *Service {
	return &Service{
		User:   NewUserService(rep.User, log),
		Post:   NewPostService(tx, rep.Post, rep.Tag, rep.PostTag, rep.Galleries, storage, log),
		Tag:    NewTagService(rep.Tag, log),
		Auth:   NewAuthService(rep.User, rep.RefreshToken, cfg, log),
		Tables: NewTablesService(rep.Tables),
	}
}
