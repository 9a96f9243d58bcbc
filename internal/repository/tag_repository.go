package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"contentboard/internal/apperror"
	"contentboard/internal/database"
	"contentboard/internal/models"
)

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.TagID == "" {
		tag.TagID = uuid.New().String()
	}

	query := `INSERT INTO tags (tag_id, name) VALUES (:tag_id, :name)`

	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, tag); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(err, "tag %q already exists", tag.Name)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, tagID string) (*models.Tag, error) {
	var tag models.Tag

	err := database.Conn(ctx, r.db).GetContext(ctx, &tag, `SELECT tag_id, name FROM tags WHERE tag_id = $1`, tagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Tag %s not found", tagID)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

func (r *tagRepository) FindIDsByName(ctx context.Context, name string) ([]string, error) {
	ids := make([]string, 0)

	err := database.Conn(ctx, r.db).SelectContext(ctx, &ids, `SELECT tag_id FROM tags WHERE name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags by name: %w", err)
	}

	return ids, nil
}

// ExistingIDs returns the subset of tagIDs present in the catalog.
func (r *tagRepository) ExistingIDs(ctx context.Context, tagIDs []string) ([]string, error) {
	ids := make([]string, 0, len(tagIDs))
	if len(tagIDs) == 0 {
		return ids, nil
	}

	err := database.Conn(ctx, r.db).SelectContext(ctx, &ids, `SELECT tag_id FROM tags WHERE tag_id = ANY($1)`, pq.Array(tagIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check tags: %w", err)
	}

	return ids, nil
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)

	if err := database.Conn(ctx, r.db).SelectContext(ctx, &tags, `SELECT tag_id, name FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := `UPDATE tags SET name = :name WHERE tag_id = :tag_id`

	result, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, tag)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(err, "tag %q already exists", tag.Name)
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("Tag %s not found", tag.TagID)
	}

	return nil
}

// Delete removes the tag; its post_tags rows go with it by ON DELETE CASCADE.
func (r *tagRepository) Delete(ctx context.Context, tagID string) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tags WHERE tag_id = $1`, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("Tag %s not found", tagID)
	}

	return nil
}
