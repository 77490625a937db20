package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gestaozap/backoffice/internal/models"
)

var ErrNotFound = errors.New("registro não encontrado")

type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InitializeDatabase(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.ImportDocument)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create documentos_importacao table: %w", err)
	}

	_, err = s.db.NewCreateTable().
		Model((*models.ImportChunk)(nil)).
		IfNotExists().
		ForeignKey(`("documento_id") REFERENCES "documentos_importacao" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create importacao_chunks table: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.ImportChunk)(nil)).
		Index("idx_importacao_chunks_documento_id").
		Column("documento_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create documento_id index: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.ImportChunk)(nil)).
		Index("idx_importacao_chunks_status").
		Column("documento_id", "status").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create chunk status index: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.ImportDocument)(nil)).
		Index("idx_documentos_importacao_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user_id index: %w", err)
	}

	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.ImportDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = models.StatusPending
	}
	if doc.StatusConfirmacao == "" {
		doc.StatusConfirmacao = models.ConfirmationPending
	}

	_, err := s.db.NewInsert().Model(doc).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create import document: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.ImportDocument, error) {
	doc := new(models.ImportDocument)
	err := s.db.NewSelect().Model(doc).Where("di.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, userID string, limit int) ([]*models.ImportDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	var docs []*models.ImportDocument
	err := s.db.NewSelect().
		Model(&docs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list import documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, description string) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportDocument)(nil)).
		Set("progress = GREATEST(progress, ?)", progress).
		Set("status_description = ?", description).
		Set("status = ?", models.StatusProcessing).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status IN (?, ?)", models.StatusPending, models.StatusProcessing).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) FailDocument(ctx context.Context, id uuid.UUID, description, errMsg string) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportDocument)(nil)).
		Set("status = ?", models.StatusError).
		Set("progress = 0").
		Set("status_description = ?", description).
		Set("error_message = ?", errMsg).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail document: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompleteDocument(ctx context.Context, id uuid.UUID, description string, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportDocument)(nil)).
		Set("status = ?", models.StatusCompleted).
		Set("progress = 100").
		Set("status_description = ?", description).
		Set("error_message = NULL").
		Set("result_data = ?", result).
		Set("model_used = ?", metrics.ModelUsed).
		Set("tokens_input = ?", metrics.TokensInput).
		Set("tokens_output = ?", metrics.TokensOutput).
		Set("estimated_cost = ?", metrics.EstimatedCost).
		Set("low_confidence = ?", lowConfidence).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete document: %w", err)
	}
	return nil
}

func (s *PostgresStore) ConfirmDocument(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewUpdate().
		Model((*models.ImportDocument)(nil)).
		Set("status_confirmacao = ?", models.ConfirmationConfirmed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ?", models.StatusCompleted).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("documento %s não pode ser confirmado antes da conclusão", id)
	}
	return nil
}

func (s *PostgresStore) ClaimAggregation(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.ImportDocument)(nil)).
		Set("status = ?", models.StatusAggregating).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.StatusProcessing, models.StatusAggregating, time.Now().Add(-AggregationStaleAfter)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim aggregation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *PostgresStore) CreateChunk(ctx context.Context, chunk *models.ImportChunk) error {
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
	}
	now := time.Now()
	chunk.CreatedAt = now
	chunk.UpdatedAt = now
	if chunk.Status == "" {
		chunk.Status = models.StatusPending
	}

	_, err := s.db.NewInsert().Model(chunk).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create chunk: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkChunkProcessing(ctx context.Context, chunkID uuid.UUID) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportChunk)(nil)).
		Set("status = ?", models.StatusProcessing).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", chunkID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark chunk processing: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompleteChunk(ctx context.Context, chunkID uuid.UUID, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportChunk)(nil)).
		Set("status = ?", models.StatusCompleted).
		Set("result_data = ?", result).
		Set("tokens_input = ?", metrics.TokensInput).
		Set("tokens_output = ?", metrics.TokensOutput).
		Set("estimated_cost = ?", metrics.EstimatedCost).
		Set("low_confidence = ?", lowConfidence).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", chunkID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete chunk: %w", err)
	}
	return nil
}

func (s *PostgresStore) FailChunk(ctx context.Context, chunkID uuid.UUID, errMsg string) error {
	_, err := s.db.NewUpdate().
		Model((*models.ImportChunk)(nil)).
		Set("status = ?", models.StatusError).
		Set("error_message = ?", errMsg).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", chunkID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail chunk: %w", err)
	}
	return nil
}

func (s *PostgresStore) ChunkCounts(ctx context.Context, documentID uuid.UUID) (models.ChunkCounts, error) {
	var rows []struct {
		Status models.ImportStatus `bun:"status"`
		Count  int                 `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*models.ImportChunk)(nil)).
		ColumnExpr("status, count(*) AS count").
		Where("documento_id = ?", documentID).
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		return models.ChunkCounts{}, fmt.Errorf("failed to count chunks: %w", err)
	}

	var counts models.ChunkCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case models.StatusCompleted:
			counts.Completed += row.Count
		case models.StatusError:
			counts.Errored += row.Count
		}
	}
	return counts, nil
}

func (s *PostgresStore) ListChunks(ctx context.Context, documentID uuid.UUID) ([]*models.ImportChunk, error) {
	var chunks []*models.ImportChunk
	err := s.db.NewSelect().
		Model(&chunks).
		Where("documento_id = ?", documentID).
		Order("chunk_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	return chunks, nil
}
