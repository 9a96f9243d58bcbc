package repository

import (
	"github.com/jmoiron/sqlx"

	"contentboard/internal/models"
)

// NewImageRepository returns the repository of a single gallery. The three
// galleries share one implementation and differ only by table.
func NewImageRepository(db *sqlx.DB, gallery models.Gallery) ChildRepository {
	return &childTable{
		db:       db,
		table:    gallery.Table(),
		valueCol: "src",
		idCol:    "image_id",
		label:    "image",
	}
}

func NewGalleryRepositories(db *sqlx.DB) map[models.Gallery]ChildRepository {
	galleries := make(map[models.Gallery]ChildRepository, len(models.Galleries))
	for _, g := range models.Galleries {
		galleries[g] = NewImageRepository(db, g)
	}
	return galleries
}
