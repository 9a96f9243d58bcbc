package service

import (
	"context"

	"contentboard/internal/repository"
)

// SchemaTables lists every table the board needs.
var SchemaTables = []string{
	"users", "refresh_tokens", "tags", "posts", "post_tags", "images1", "images2", "images3",
}

type SchemaStatus struct {
	CountTables int      `json:"countTables"`
	Missing     []string `json:"missing"`
}

func (s SchemaStatus) Ready() bool {
	return len(s.Missing) == 0
}

type TablesService interface {
	SchemaStatus(ctx context.Context) (*SchemaStatus, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

func (t *tablesService) SchemaStatus(ctx context.Context) (*SchemaStatus, error) {
	count, err := t.tablesRepo.CountTablesDB(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := t.tablesRepo.ExistingTables(ctx, SchemaTables)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	missing := make([]string, 0)
	for _, name := range SchemaTables {
		if !present[name] {
			missing = append(missing, name)
		}
	}

	return &SchemaStatus{CountTables: count, Missing: missing}, nil
}
