// Package catalog persists the DRE category tree and the AI knowledge base,
// the two context sources injected into extraction prompts.
package catalog

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
)

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Categories lists categories ordered by id. A non-positive limit returns the
// whole table.
func (r *Repository) Categories(ctx context.Context, limit int) ([]models.Category, error) {
	var categories []models.Category
	q := r.db.NewSelect().Model(&categories).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	if _, err := r.db.NewInsert().Model(category).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	res, err := r.db.NewUpdate().Model(category).
		Column("nome", "codigo", "tipo").
		Where("id = ?", category.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("categoria %d não encontrada", category.ID)
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.db.NewDelete().Model((*models.Category)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

// Knowledge lists the whole knowledge base, suppliers and instructions mixed,
// oldest first so the prompt stays stable between runs.
func (r *Repository) Knowledge(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	if err := r.db.NewSelect().Model(&entries).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list knowledge base: %w", err)
	}
	return entries, nil
}

func (r *Repository) CreateKnowledge(ctx context.Context, entry *models.KnowledgeEntry) error {
	switch entry.Type {
	case models.KnowledgeSupplier, models.KnowledgeInstruction:
	default:
		return fmt.Errorf("tipo de conhecimento inválido: %q", entry.Type)
	}
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create knowledge entry: %w", err)
	}
	return nil
}

func (r *Repository) DeleteKnowledge(ctx context.Context, id int64) error {
	if _, err := r.db.NewDelete().Model((*models.KnowledgeEntry)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete knowledge entry %d: %w", id, err)
	}
	return nil
}
