package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
)

// InitializeSchema creates the non-import tables. The import pipeline's own
// tables are created by the import store because of their FK and index setup.
func InitializeSchema(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Category)(nil),
		(*models.KnowledgeEntry)(nil),
		(*models.LedgerEntry)(nil),
		(*models.Contact)(nil),
		(*models.Campaign)(nil),
	}
	for _, table := range tables {
		if _, err := db.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}

	if _, err := db.NewCreateIndex().
		Model((*models.LedgerEntry)(nil)).
		Index("idx_lancamentos_user_data").
		Column("id_responsavel", "data_pagamento").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create ledger index: %w", err)
	}
	return nil
}
