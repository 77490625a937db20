// Package campaigns manages WhatsApp campaign records. Delivery itself lives
// in the messaging integration; this package only tracks the lifecycle.
package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/store"
)

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignDraft
	}
	if _, err := r.db.NewInsert().Model(campaign).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Campaign, error) {
	campaign := new(models.Campaign)
	err := r.db.NewSelect().Model(campaign).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %s: %w", id, err)
	}
	return campaign, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.NewSelect().Model(&campaigns).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Update rewrites a campaign's content. Only drafts can be edited; anything
// already scheduled or beyond is immutable.
func (r *Repository) Update(ctx context.Context, campaign *models.Campaign) error {
	res, err := r.db.NewUpdate().Model(campaign).
		Column("nome", "mensagem", "audiencia").
		Set("updated_at = now()").
		Where("id = ?", campaign.ID).
		Where("user_id = ?", campaign.UserID).
		Where("status = ?", models.CampaignDraft).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update campaign %s: %w", campaign.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("campanha %s não pode ser editada", campaign.ID)
	}
	return nil
}

// Schedule moves a draft campaign to agendada at the given time. Only drafts
// can be scheduled.
func (r *Repository) Schedule(ctx context.Context, userID string, id uuid.UUID, at time.Time) error {
	res, err := r.db.NewUpdate().Model((*models.Campaign)(nil)).
		Set("status = ?", models.CampaignScheduled).
		Set("scheduled_at = ?", at).
		Set("updated_at = now()").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("status = ?", models.CampaignDraft).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to schedule campaign %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("campanha %s não pode ser agendada", id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*models.Campaign)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete campaign %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
