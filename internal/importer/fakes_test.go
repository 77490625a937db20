package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/services"
	"github.com/gestaozap/backoffice/internal/store"
)

// memStore is an in-memory ImportStore with the same transition rules as the
// Postgres implementation.
type memStore struct {
	mu            sync.Mutex
	docs          map[uuid.UUID]*models.ImportDocument
	chunks        map[uuid.UUID]*models.ImportChunk
	completeCalls int
	descriptions  []string
}

func newMemStore() *memStore {
	return &memStore{
		docs:   make(map[uuid.UUID]*models.ImportDocument),
		chunks: make(map[uuid.UUID]*models.ImportChunk),
	}
}

func (m *memStore) CreateDocument(_ context.Context, doc *models.ImportDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = models.StatusPending
	}
	if doc.StatusConfirmacao == "" {
		doc.StatusConfirmacao = models.ConfirmationPending
	}
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *memStore) GetDocument(_ context.Context, id uuid.UUID) (*models.ImportDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *memStore) ListDocuments(_ context.Context, userID string, limit int) ([]*models.ImportDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ImportDocument
	for _, doc := range m.docs {
		if doc.UserID == userID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateProgress(_ context.Context, id uuid.UUID, progress int, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	if doc.Status != models.StatusPending && doc.Status != models.StatusProcessing {
		return nil
	}
	doc.Status = models.StatusProcessing
	if progress > doc.Progress {
		doc.Progress = progress
	}
	doc.StatusDescription = description
	doc.UpdatedAt = time.Now()
	m.descriptions = append(m.descriptions, description)
	return nil
}

func (m *memStore) FailDocument(_ context.Context, id uuid.UUID, description, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	doc.Status = models.StatusError
	doc.Progress = 0
	doc.StatusDescription = description
	doc.ErrorMessage = &errMsg
	return nil
}

func (m *memStore) CompleteDocument(_ context.Context, id uuid.UUID, description string, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	m.completeCalls++
	doc.Status = models.StatusCompleted
	doc.Progress = 100
	doc.StatusDescription = description
	doc.ResultData = result
	doc.ModelUsed = metrics.ModelUsed
	doc.TokensInput = metrics.TokensInput
	doc.TokensOutput = metrics.TokensOutput
	doc.EstimatedCost = metrics.EstimatedCost
	doc.LowConfidence = lowConfidence
	doc.ErrorMessage = nil
	return nil
}

func (m *memStore) ConfirmDocument(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	if doc.Status != models.StatusCompleted {
		return fmt.Errorf("documento %s não pode ser confirmado antes da conclusão", id)
	}
	doc.StatusConfirmacao = models.ConfirmationConfirmed
	return nil
}

func (m *memStore) ClaimAggregation(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return false, store.ErrNotFound
	}
	stale := doc.Status == models.StatusAggregating &&
		time.Since(doc.UpdatedAt) > store.AggregationStaleAfter
	if doc.Status != models.StatusProcessing && !stale {
		return false, nil
	}
	doc.Status = models.StatusAggregating
	doc.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) CreateChunk(_ context.Context, chunk *models.ImportChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
	}
	if chunk.Status == "" {
		chunk.Status = models.StatusPending
	}
	copied := *chunk
	m.chunks[chunk.ID] = &copied
	return nil
}

func (m *memStore) MarkChunkProcessing(_ context.Context, chunkID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunk, ok := m.chunks[chunkID]
	if !ok {
		return store.ErrNotFound
	}
	chunk.Status = models.StatusProcessing
	return nil
}

func (m *memStore) CompleteChunk(_ context.Context, chunkID uuid.UUID, result []models.TransactionDraft, metrics models.AIMetrics, lowConfidence bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunk, ok := m.chunks[chunkID]
	if !ok {
		return store.ErrNotFound
	}
	chunk.Status = models.StatusCompleted
	chunk.ResultData = result
	chunk.TokensInput = metrics.TokensInput
	chunk.TokensOutput = metrics.TokensOutput
	chunk.EstimatedCost = metrics.EstimatedCost
	chunk.LowConfidence = lowConfidence
	return nil
}

func (m *memStore) FailChunk(_ context.Context, chunkID uuid.UUID, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunk, ok := m.chunks[chunkID]
	if !ok {
		return store.ErrNotFound
	}
	chunk.Status = models.StatusError
	chunk.ErrorMessage = &errMsg
	return nil
}

func (m *memStore) ChunkCounts(_ context.Context, documentID uuid.UUID) (models.ChunkCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts models.ChunkCounts
	for _, chunk := range m.chunks {
		if chunk.DocumentID != documentID {
			continue
		}
		counts.Total++
		switch chunk.Status {
		case models.StatusCompleted:
			counts.Completed++
		case models.StatusError:
			counts.Errored++
		}
	}
	return counts, nil
}

func (m *memStore) ListChunks(_ context.Context, documentID uuid.UUID) ([]*models.ImportChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ImportChunk
	for _, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			copied := *chunk
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ChunkIndex < out[b].ChunkIndex })
	return out, nil
}

type fakeBlob struct {
	data     []byte
	mimeType string
	err      error
}

func (f *fakeBlob) Download(context.Context, string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.mimeType, nil
}

// fakeSplitter reports a fixed page count and stamps extracted ranges with a
// marker the fake extractor keys its responses on.
type fakeSplitter struct {
	pages    int
	countErr error
}

func (f *fakeSplitter) PageCount([]byte) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.pages, nil
}

func (f *fakeSplitter) ExtractPages(_ []byte, start, end int) ([]byte, error) {
	return []byte(rangeMarker(start, end)), nil
}

func rangeMarker(start, end int) string {
	return fmt.Sprintf("pages:%d-%d", start, end)
}

// fakeExtractor answers by the request payload: responses keyed by the range
// marker, with fallback to the whole-file response. flaky entries fail that
// many times with a retryable error before the keyed response applies.
type fakeExtractor struct {
	mu        sync.Mutex
	responses map[string]*services.ExtractionResponse
	errors    map[string]error
	flaky     map[string]int
	whole     *services.ExtractionResponse
	wholeErr  error
	calls     []string
}

func (f *fakeExtractor) Extract(_ context.Context, req services.ExtractionRequest) (*services.ExtractionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := string(req.FileData)
	f.calls = append(f.calls, key)
	if left := f.flaky[key]; left > 0 {
		f.flaky[key] = left - 1
		return nil, errors.New("googleapi: Error 503: UNAVAILABLE")
	}
	if err, ok := f.errors[key]; ok {
		return nil, err
	}
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	if f.wholeErr != nil {
		return nil, f.wholeErr
	}
	return f.whole, nil
}

type fakeContext struct{}

func (fakeContext) Categories(context.Context, int) ([]models.Category, error) {
	return []models.Category{{ID: 1, Nome: "Categoria Geral", Tipo: models.TipoDespesa}}, nil
}

func (fakeContext) Knowledge(context.Context) ([]models.KnowledgeEntry, error) {
	return nil, nil
}

// testHarness builds an Importer whose invoker queues worker requests for the
// test to drain synchronously.
type testHarness struct {
	imp     *Importer
	st      *memStore
	queue   []models.ProcessRequest
	invoked int
}

func newHarness(blobs *fakeBlob, split Splitter, ex services.Extractor) *testHarness {
	h := &testHarness{st: newMemStore()}
	h.imp = New(Deps{
		Store:         h.st,
		Blobs:         blobs,
		Splitter:      split,
		Extractor:     ex,
		ContextSource: fakeContext{},
		RetryOpts:     []services.RetryOption{services.WithSleep(func(time.Duration) {})},
		Invoke: func(req models.ProcessRequest) {
			h.invoked++
			h.queue = append(h.queue, req)
		},
	})
	return h
}

// drain runs queued worker requests to completion, including requests they
// enqueue in turn.
func (h *testHarness) drain(ctx context.Context) []error {
	var errs []error
	for len(h.queue) > 0 {
		req := h.queue[0]
		h.queue = h.queue[1:]
		if err := h.imp.Process(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (h *testHarness) newDocument(ctx context.Context, fileName string) *models.ImportDocument {
	doc := &models.ImportDocument{
		UserID:   "user-1",
		FileName: fileName,
		FilePath: "uploads/" + fileName,
		FileType: "application/pdf",
	}
	if err := h.st.CreateDocument(ctx, doc); err != nil {
		panic(err)
	}
	return doc
}
