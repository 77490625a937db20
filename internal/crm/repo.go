// Package crm persists contacts and their pipeline stage.
package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/store"
)

type ContactRepository struct {
	db *bun.DB
}

func NewContactRepository(db *bun.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.Etapa == "" {
		contact.Etapa = "lead"
	}
	if _, err := r.db.NewInsert().Model(contact).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Contact, error) {
	contact := new(models.Contact)
	err := r.db.NewSelect().Model(contact).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	return contact, nil
}

// List returns the user's contacts, optionally filtered by pipeline stage,
// most recently created first.
func (r *ContactRepository) List(ctx context.Context, userID, etapa string) ([]models.Contact, error) {
	var contacts []models.Contact
	q := r.db.NewSelect().Model(&contacts).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if etapa != "" {
		q = q.Where("etapa = ?", etapa)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	res, err := r.db.NewUpdate().Model(contact).
		Column("nome", "telefone", "email", "etapa", "tags", "notas").
		Set("updated_at = now()").
		Where("id = ?", contact.ID).
		Where("user_id = ?", contact.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update contact %s: %w", contact.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*models.Contact)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
