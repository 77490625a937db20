package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/reconcile"
)

// EntryStore is the slice of the repository the commit flow needs.
type EntryStore interface {
	CreateBatch(ctx context.Context, entries []models.LedgerEntry) error
	ListRange(ctx context.Context, userID, from, to string) ([]models.LedgerEntry, error)
}

// DocumentStore is the slice of the import store the commit flow needs.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*models.ImportDocument, error)
	ConfirmDocument(ctx context.Context, id uuid.UUID) error
}

// OrigemImport marks ledger entries created by the AI import flow.
const OrigemImport = "Importação com IA"

// Service commits reviewed import drafts into the ledger.
type Service struct {
	entries EntryStore
	docs    DocumentStore
}

func NewService(entries EntryStore, docs DocumentStore) *Service {
	return &Service{entries: entries, docs: docs}
}

// CommitResult reports what a confirmation produced.
type CommitResult struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
}

// Commit validates the reviewed drafts against the existing ledger, inserts
// the kept ones and marks the document confirmed. Drafts flagged as
// duplicates are skipped unless the reviewer set forceKeep. A nil drafts
// slice commits the document's stored extraction result as-is.
func (s *Service) Commit(ctx context.Context, userID string, documentID uuid.UUID, contaID int64, drafts []models.TransactionDraft) (*CommitResult, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("documento %s não pertence ao usuário", documentID)
	}
	if doc.Status != models.StatusCompleted {
		return nil, fmt.Errorf("documento %s não pode ser confirmado antes da conclusão", documentID)
	}
	if drafts == nil {
		drafts = doc.ResultData
	}

	if from, to, ok := reconcile.DateSpan(drafts); ok {
		existing, err := s.entries.ListRange(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		reconcile.Flag(drafts, existing)
	}

	kept := reconcile.FilterForCommit(drafts)
	entries := make([]models.LedgerEntry, 0, len(kept))
	for idx, draft := range kept {
		iso, err := draft.ISODate()
		if err != nil {
			return nil, fmt.Errorf("transação %d: %w", idx+1, err)
		}
		draft.NormalizeTipo()
		entries = append(entries, models.LedgerEntry{
			UserID:        userID,
			ContaID:       contaID,
			DataPagamento: iso,
			Descricao:     draft.Descricao,
			Valor:         draft.Valor,
			TipoOperacao:  draft.Tipo,
			CategoriaID:   draft.CategoriaSugeridaID,
			Origem:        OrigemImport,
		})
	}

	if err := s.entries.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}
	if err := s.docs.ConfirmDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return &CommitResult{
		Created:    len(entries),
		Duplicates: len(drafts) - len(kept),
	}, nil
}
