package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"contentboard/internal/apperror"
	"contentboard/internal/database"
)

// childTable implements ChildRepository over any table shaped
// (post_id, <value>, position[, <id>]). Rows are read back by position,
// which preserves insertion order.
type childTable struct {
	db       *sqlx.DB
	table    string
	valueCol string
	idCol    string // empty for join tables keyed by (post_id, value)
	label    string
}

func (c *childTable) columns() []string {
	if c.idCol == "" {
		return []string{"post_id", c.valueCol, "position"}
	}
	return []string{c.idCol, "post_id", c.valueCol, "position"}
}

func (c *childTable) row(postID, value string, position int) []interface{} {
	if c.idCol == "" {
		return []interface{}{postID, value, position}
	}
	return []interface{}{uuid.New().String(), postID, value, position}
}

// Replace deletes every row of the post and inserts values fresh. An empty
// slice leaves the collection empty.
func (c *childTable) Replace(ctx context.Context, postID string, values []string) error {
	q := database.Conn(ctx, c.db)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE post_id = $1`, c.table)
	if _, err := q.ExecContext(ctx, deleteQuery, postID); err != nil {
		return fmt.Errorf("failed to clear %s of post %s: %w", c.table, postID, err)
	}

	if len(values) == 0 {
		return nil
	}

	insert := psql.Insert(c.table).Columns(c.columns()...)
	for i, value := range values {
		insert = insert.Values(c.row(postID, value, i)...)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", c.table, err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return c.translate(err, postID)
	}

	return nil
}

func (c *childTable) Append(ctx context.Context, postID, value string) error {
	cols := "post_id, " + c.valueCol + ", position"
	vals := "$1, $2"
	args := []interface{}{postID, value}
	if c.idCol != "" {
		cols = c.idCol + ", " + cols
		vals = "$3, " + vals
		args = append(args, uuid.New().String())
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		SELECT %[3]s, COALESCE(MAX(position) + 1, 0) FROM %[1]s WHERE post_id = $1
	`, c.table, cols, vals)

	if _, err := database.Conn(ctx, c.db).ExecContext(ctx, query, args...); err != nil {
		return c.translate(err, postID)
	}

	return nil
}

func (c *childTable) ListByPostID(ctx context.Context, postID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE post_id = $1 ORDER BY position`, c.valueCol, c.table)

	values := make([]string, 0)
	if err := database.Conn(ctx, c.db).SelectContext(ctx, &values, query, postID); err != nil {
		return nil, fmt.Errorf("failed to load %s of post %s: %w", c.table, postID, err)
	}

	return values, nil
}

type childRow struct {
	PostID string `db:"post_id"`
	Value  string `db:"value"`
}

// ListByPostIDs returns the values of several posts at once. Every
// requested post has an entry, empty when it has no rows.
func (c *childTable) ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(postIDs))
	for _, id := range postIDs {
		result[id] = []string{}
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT post_id, %s AS value FROM %s
		WHERE post_id = ANY($1)
		ORDER BY post_id, position
	`, c.valueCol, c.table)

	var rows []childRow
	if err := database.Conn(ctx, c.db).SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.table, err)
	}

	for _, r := range rows {
		result[r.PostID] = append(result[r.PostID], r.Value)
	}

	return result, nil
}

func (c *childTable) translate(err error, postID string) error {
	switch {
	case isForeignKeyViolation(err):
		return apperror.NotFound("%s of post %s references a missing row", c.label, postID)
	case isUniqueViolation(err):
		return apperror.Conflict(err, "duplicate %s for post %s", c.label, postID)
	}
	return fmt.Errorf("failed to write %s of post %s: %w", c.table, postID, err)
}
