// Package ledger owns committed financial movements and the confirmation flow
// that turns reviewed import drafts into ledger entries.
package ledger

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
)

// EntryRepository persists lancamentos rows.
type EntryRepository struct {
	db *bun.DB
}

func NewEntryRepository(db *bun.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) CreateBatch(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := r.db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create %d ledger entries: %w", len(entries), err)
	}
	return nil
}

// List returns a user's entries, newest payment date first.
func (r *EntryRepository) List(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	q := r.db.NewSelect().Model(&entries).
		Where("id_responsavel = ?", userID).
		Order("data_pagamento DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// ListRange returns a user's entries with payment dates inside [from, to],
// both YYYY-MM-DD inclusive.
func (r *EntryRepository) ListRange(ctx context.Context, userID, from, to string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.NewSelect().Model(&entries).
		Where("id_responsavel = ?", userID).
		Where("data_pagamento >= ?", from).
		Where("data_pagamento <= ?", to).
		Order("data_pagamento ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries in range: %w", err)
	}
	return entries, nil
}

// Update rewrites the mutable fields of an entry owned by the user.
func (r *EntryRepository) Update(ctx context.Context, entry *models.LedgerEntry) error {
	res, err := r.db.NewUpdate().Model(entry).
		Column("data_pagamento", "descricao", "valor", "tipo_operacao", "categoria_id", "conta_id").
		Set("updated_at = now()").
		Where("id = ?", entry.ID).
		Where("id_responsavel = ?", entry.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update ledger entry %d: %w", entry.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("lançamento %d não encontrado", entry.ID)
	}
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.NewDelete().Model((*models.LedgerEntry)(nil)).
		Where("id = ?", id).
		Where("id_responsavel = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("lançamento %d não encontrado", id)
	}
	return nil
}
