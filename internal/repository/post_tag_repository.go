package repository

import "github.com/jmoiron/sqlx"

// NewPostTagRepository stores the Post<->Tag association. The pair
// (post_id, tag_id) is the primary key; rows disappear with either side
// through ON DELETE CASCADE.
func NewPostTagRepository(db *sqlx.DB) ChildRepository {
	return &childTable{
		db:       db,
		table:    "post_tags",
		valueCol: "tag_id",
		label:    "tag",
	}
}
