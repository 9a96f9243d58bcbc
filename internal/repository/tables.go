package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"contentboard/internal/database"
)

type tablesRepository struct {
	db *sqlx.DB
}

func NewTablesRepository(db *sqlx.DB) TablesRepository {
	return &tablesRepository{db: db}
}

func (r *tablesRepository) CountTablesDB(ctx context.Context) (int, error) {
	var count int

	err := database.Conn(ctx, r.db).GetContext(ctx, &count, `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = 'public'
		`)

	if err != nil {
		return 0, fmt.Errorf("failed to count database tables: %w", err)
	}

	return count, nil
}

// ExistingTables returns which of names exist in the public schema.
func (r *tablesRepository) ExistingTables(ctx context.Context, names []string) ([]string, error) {
	existing := make([]string, 0, len(names))

	err := database.Conn(ctx, r.db).SelectContext(ctx, &existing, `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = ANY($1)
		`, pq.Array(names))

	if err != nil {
		return nil, fmt.Errorf("failed to list database tables: %w", err)
	}

	return existing, nil
}
