package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"contentboard/internal/models"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
}

type RefreshTokenRepository interface {
	Rotate(ctx context.Context, userID, token string, expiresAt time.Time) (*models.RefreshToken, error)
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, tagID string) (*models.Tag, error)
	FindIDsByName(ctx context.Context, name string) ([]string, error)
	ExistingIDs(ctx context.Context, tagIDs []string) ([]string, error)
	List(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, tagID string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetByIDForUpdate(ctx context.Context, postID string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID string) error
	Count(ctx context.Context, tagIDs []string) (int, error)
	ListPage(ctx context.Context, tagIDs []string, limit, offset int) ([]models.PostListItem, error)
}

// ChildRepository is a per-post ordered collection of string values: the
// tag ids of a post, or the src values of one of its galleries.
type ChildRepository interface {
	Replace(ctx context.Context, postID string, values []string) error
	Append(ctx context.Context, postID, value string) error
	ListByPostID(ctx context.Context, postID string) ([]string, error)
	ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]string, error)
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
	ExistingTables(ctx context.Context, names []string) ([]string, error)
}

type Repository struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Tag          TagRepository
	Post         PostRepository
	PostTag      ChildRepository
	Galleries    map[models.Gallery]ChildRepository
	Tables       TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Tag:          NewTagRepository(db),
		Post:         NewPostRepository(db),
		PostTag:      NewPostTagRepository(db),
		Galleries:    NewGalleryRepositories(db),
		Tables:       NewTablesRepository(db),
	}
}
