package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"contentboard/internal/apperror"
	"contentboard/internal/database"
	"contentboard/internal/models"
)

type PostRepositoryImpl struct {
	DB  *sqlx.DB
	now func() time.Time
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db, now: time.Now}
}

const selectPost = `SELECT post_id, title, content1, content2, content3, created_at FROM posts WHERE post_id = $1`

// Create inserts the post and stamps created_at at the column's microsecond
// precision, so the returned value equals what is read back. Nothing else
// ever writes that column.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts
		(post_id, title, content1, content2, content3, created_at)
		VALUES
		(:post_id, :title, :content1, :content2, :content3, :created_at)
	`

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.CreatedAt = r.now().UTC().Truncate(time.Microsecond)

	if _, err := database.Conn(ctx, r.DB).NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return r.get(ctx, selectPost, postID)
}

// GetByIDForUpdate locks the post row until the surrounding transaction
// ends, so concurrent updates of one post run one after another.
func (r *PostRepositoryImpl) GetByIDForUpdate(ctx context.Context, postID string) (*models.Post, error) {
	return r.get(ctx, selectPost+` FOR UPDATE`, postID)
}

func (r *PostRepositoryImpl) get(ctx context.Context, query, postID string) (*models.Post, error) {
	var post models.Post
	err := database.Conn(ctx, r.DB).GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Post %s not found", postID)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = :title,
			content1 = :content1,
			content2 = :content2,
			content3 = :content3
		WHERE post_id = :post_id
	`

	result, err := database.Conn(ctx, r.DB).NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("Post %s not found", post.PostID)
	}

	return nil
}

// Delete removes the post row only; post_tags and image rows are removed by
// the ON DELETE CASCADE foreign keys.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	result, err := database.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("Post %s not found", postID)
	}

	return nil
}

// withTagFilter restricts posts to those tagged with any of tagIDs. An
// empty tagIDs means no filter.
func withTagFilter(b sq.SelectBuilder, tagIDs []string) sq.SelectBuilder {
	if len(tagIDs) == 0 {
		return b
	}
	return b.Where(sq.Expr(
		"EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.post_id AND pt.tag_id = ANY(?))",
		pq.Array(tagIDs),
	))
}

func (r *PostRepositoryImpl) Count(ctx context.Context, tagIDs []string) (int, error) {
	query, args, err := withTagFilter(psql.Select("COUNT(*)").From("posts p"), tagIDs).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := database.Conn(ctx, r.DB).GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

// ListPage returns id and title of one page, newest first. Tag ids are
// not filled in.
func (r *PostRepositoryImpl) ListPage(ctx context.Context, tagIDs []string, limit, offset int) ([]models.PostListItem, error) {
	builder := withTagFilter(psql.Select("p.post_id", "p.title").From("posts p"), tagIDs).
		OrderBy("p.created_at DESC", "p.post_id").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	posts := make([]models.PostListItem, 0)
	if err := database.Conn(ctx, r.DB).SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}
