package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestaozap/backoffice/internal/logger"
)

// ProgressTracker is the single mutation point for a document's user-visible
// progress. Descriptions are the Portuguese phrases the UI displays verbatim.
type ProgressTracker struct {
	store ImportStore
}

func NewProgressTracker(store ImportStore) *ProgressTracker {
	return &ProgressTracker{store: store}
}

func (t *ProgressTracker) Update(ctx context.Context, id uuid.UUID, progress int, description string) {
	logger.Log.Info("import progress", "document_id", id, "progress", progress, "description", description)
	if err := t.store.UpdateProgress(ctx, id, progress, description); err != nil {
		logger.Log.Error("failed to update import progress", "document_id", id, "error", err)
	}
}

func (t *ProgressTracker) Fail(ctx context.Context, id uuid.UUID, description string, cause error) {
	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}
	logger.Log.Error("import failed", "document_id", id, "description", description, "error", errMsg)
	if err := t.store.FailDocument(ctx, id, description, errMsg); err != nil {
		logger.Log.Error("failed to record import failure", "document_id", id, "error", err)
	}
}
