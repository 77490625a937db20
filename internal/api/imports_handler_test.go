package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/store"
)

// fakeImportStore implements the handful of store methods the handlers
// exercise; the embedded interface panics on anything else.
type fakeImportStore struct {
	store.ImportStore
	docs map[uuid.UUID]*models.ImportDocument
}

func newFakeImportStore() *fakeImportStore {
	return &fakeImportStore{docs: make(map[uuid.UUID]*models.ImportDocument)}
}

func (f *fakeImportStore) CreateDocument(_ context.Context, doc *models.ImportDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeImportStore) GetDocument(_ context.Context, id uuid.UUID) (*models.ImportDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeImportStore) ListDocuments(_ context.Context, userID string, _ int) ([]*models.ImportDocument, error) {
	var out []*models.ImportDocument
	for _, doc := range f.docs {
		if doc.UserID == userID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeTrigger struct {
	requests []models.ProcessRequest
}

func (f *fakeTrigger) StartBackground(req models.ProcessRequest) {
	f.requests = append(f.requests, req)
}

type fakeSigner struct{}

func (fakeSigner) SignedUploadURL(fileName, contentType string, _ time.Duration) (string, string, error) {
	return "https://storage.example/upload", "obj-123.pdf", nil
}

func newImportHandler(st *fakeImportStore, trigger *fakeTrigger) *ImportHandler {
	return NewImportHandler(st, trigger, fakeSigner{}, nil)
}

func authedRequest(method, target string, body []byte) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set(userIDHeader, "user-1")
	ctx := context.WithValue(r.Context(), userIDContextKey, "user-1")
	return r.WithContext(ctx)
}

func TestCreateImportAcksImmediately(t *testing.T) {
	st := newFakeImportStore()
	trigger := &fakeTrigger{}
	h := newImportHandler(st, trigger)

	body, _ := json.Marshal(createImportRequest{
		FilePath: "obj-123.pdf",
		FileName: "extrato.pdf",
		FileType: "application/pdf",
	})
	w := httptest.NewRecorder()
	h.CreateImport(w, authedRequest("POST", "/api/v1/imports", body))

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", w.Code, w.Body.String())
	}

	var resp createImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Processamento iniciado em segundo plano." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.ID == uuid.Nil {
		t.Fatalf("response missing document id")
	}

	if len(trigger.requests) != 1 {
		t.Fatalf("trigger invoked %d times, want 1", len(trigger.requests))
	}
	req := trigger.requests[0]
	if req.Mode != models.ModeDispatcher {
		t.Errorf("mode = %q, want dispatcher", req.Mode)
	}
	if req.Record.ID != resp.ID || req.Record.FilePath != "obj-123.pdf" {
		t.Errorf("trigger record mismatch: %+v", req.Record)
	}

	doc, err := st.GetDocument(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if doc.Status != models.StatusPending || doc.UserID != "user-1" {
		t.Errorf("persisted doc = %+v", doc)
	}
}

func TestCreateImportRequiresFields(t *testing.T) {
	h := newImportHandler(newFakeImportStore(), &fakeTrigger{})

	w := httptest.NewRecorder()
	h.CreateImport(w, authedRequest("POST", "/api/v1/imports", []byte(`{"file_name":"a.pdf"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetImportHidesForeignDocuments(t *testing.T) {
	st := newFakeImportStore()
	doc := &models.ImportDocument{UserID: "someone-else", FileName: "x.pdf", FilePath: "x.pdf"}
	st.CreateDocument(context.Background(), doc)
	h := newImportHandler(st, &fakeTrigger{})

	r := authedRequest("GET", "/api/v1/imports/"+doc.ID.String(), nil)
	r = mux.SetURLVars(r, map[string]string{"documentID": doc.ID.String()})
	w := httptest.NewRecorder()
	h.GetImport(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUploadURLWhitelist(t *testing.T) {
	h := newImportHandler(newFakeImportStore(), &fakeTrigger{})

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{"pdf allowed", "application/pdf", http.StatusOK},
		{"jpeg allowed", "image/jpeg", http.StatusOK},
		{"png allowed", "image/png", http.StatusOK},
		{"zip rejected", "application/zip", http.StatusBadRequest},
		{"html rejected", "text/html", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(signedURLRequest{FileName: "doc.bin", ContentType: tt.contentType})
			w := httptest.NewRecorder()
			h.UploadURL(w, authedRequest("POST", "/api/v1/imports/upload-url", body))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !strings.Contains(w.Body.String(), "obj-123.pdf") {
				t.Errorf("response missing object path: %s", w.Body.String())
			}
		})
	}
}

func TestProcessTrigger(t *testing.T) {
	trigger := &fakeTrigger{}
	h := newImportHandler(newFakeImportStore(), trigger)

	docID := uuid.New()
	payload, _ := json.Marshal(models.ProcessRequest{
		Record: models.ImportRecordRef{ID: docID, FilePath: "obj.pdf"},
		Mode:   models.ModeWorker,
	})
	w := httptest.NewRecorder()
	h.ProcessTrigger(w, httptest.NewRequest("POST", "/api/v1/imports/process", bytes.NewReader(payload)))

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if len(trigger.requests) != 1 || trigger.requests[0].Record.ID != docID {
		t.Errorf("trigger requests = %+v", trigger.requests)
	}

	w = httptest.NewRecorder()
	h.ProcessTrigger(w, httptest.NewRequest("POST", "/api/v1/imports/process", strings.NewReader(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty record: status = %d, want 400", w.Code)
	}
}

func TestUserMiddlewareRejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	UserMiddleware(next).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/imports", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/imports", nil)
	r.Header.Set(userIDHeader, "user-1")
	UserMiddleware(next).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("authed status = %d, want 200", w.Code)
	}
}
