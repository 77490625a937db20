package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozap/backoffice/internal/models"
)

// AggregationStaleAfter bounds how long a document may sit in aggregating
// before its claim is considered abandoned and may be taken again.
const AggregationStaleAfter = 5 * time.Minute

// ImportStore is the shared mutable state of the import pipeline. All mutation
// is single-row and keyed by id; the aggregation claim is the only
// compare-and-swap.
type ImportStore interface {
	CreateDocument(ctx context.Context, doc *models.ImportDocument) error
	GetDocument(ctx context.Context, id uuid.UUID) (*models.ImportDocument, error)
	ListDocuments(ctx context.Context, userID string, limit int) ([]*models.ImportDocument, error)

	// UpdateProgress moves the document to processing and raises progress.
	// Progress never decreases; a lower value only refreshes the description.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, description string) error
	FailDocument(ctx context.Context, id uuid.UUID, description, errMsg string) error
	CompleteDocument(ctx context.Context, id uuid.UUID, description string, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error

	// ConfirmDocument flips the confirmation flag; only a completed document
	// can be confirmed.
	ConfirmDocument(ctx context.Context, id uuid.UUID) error

	// ClaimAggregation transitions processing -> aggregating exactly once.
	// It returns true for the single caller that wins the claim. A document
	// left in aggregating longer than AggregationStaleAfter can be
	// re-claimed, so replaying a worker trigger re-drives a claim winner
	// that died mid-aggregation.
	ClaimAggregation(ctx context.Context, id uuid.UUID) (bool, error)

	CreateChunk(ctx context.Context, chunk *models.ImportChunk) error
	MarkChunkProcessing(ctx context.Context, chunkID uuid.UUID) error
	CompleteChunk(ctx context.Context, chunkID uuid.UUID, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error
	FailChunk(ctx context.Context, chunkID uuid.UUID, errMsg string) error
	ChunkCounts(ctx context.Context, documentID uuid.UUID) (models.ChunkCounts, error)
	// ListChunks returns the document's chunks in ascending chunk index order.
	ListChunks(ctx context.Context, documentID uuid.UUID) ([]*models.ImportChunk, error)
}
