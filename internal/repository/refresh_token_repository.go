package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contentboard/internal/apperror"
	"contentboard/internal/database"
	"contentboard/internal/models"
)

type refreshTokenRepository struct {
	db *sqlx.DB
}

func NewRefreshTokenRepository(db *sqlx.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Rotate stores token as the user's only refresh token. An existing token
// is overwritten in the same statement, so the old value stops working the
// moment the new one is written.
func (r *refreshTokenRepository) Rotate(ctx context.Context, userID, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{
		RefreshTokenID: uuid.New().String(),
		Token:          token,
		UserID:         userID,
		ExpiresAt:      expiresAt,
	}

	query := `
		INSERT INTO refresh_tokens (refresh_token_id, token, user_id, expires_at)
		VALUES (:refresh_token_id, :token, :user_id, :expires_at)
		ON CONFLICT (user_id) DO UPDATE SET
			refresh_token_id = EXCLUDED.refresh_token_id,
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at
	`

	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, rt); err != nil {
		switch {
		case isForeignKeyViolation(err):
			return nil, apperror.NotFound("User %s not found", userID)
		case isUniqueViolation(err):
			return nil, apperror.Conflict(err, "refresh token already in use (%s)", constraintName(err))
		}
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rt, nil
}

func (r *refreshTokenRepository) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User

	query := `
		SELECT u.* FROM users u
		JOIN refresh_tokens rt ON rt.user_id = u.user_id
		WHERE rt.token = $1
		AND rt.expires_at > CURRENT_TIMESTAMP
	`

	err := database.Conn(ctx, r.db).GetContext(ctx, &user, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("refresh token is invalid or expired")
		}
		return nil, fmt.Errorf("failed to get user by refresh token: %w", err)
	}

	return &user, nil
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}
