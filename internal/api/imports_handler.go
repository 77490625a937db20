package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestaozap/backoffice/internal/ledger"
	"github.com/gestaozap/backoffice/internal/logger"
	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/store"
)

var whitelistedContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

const signedURLExpiry = 15 * time.Minute

// Trigger submits a pipeline request for background processing.
type Trigger interface {
	StartBackground(req models.ProcessRequest)
}

// URLSigner issues signed upload URLs for the import bucket.
type URLSigner interface {
	SignedUploadURL(fileName, contentType string, expiry time.Duration) (url, objectPath string, err error)
}

type ImportHandler struct {
	store     store.ImportStore
	trigger   Trigger
	signer    URLSigner
	committer *ledger.Service
}

func NewImportHandler(st store.ImportStore, trigger Trigger, signer URLSigner, committer *ledger.Service) *ImportHandler {
	return &ImportHandler{
		store:     st,
		trigger:   trigger,
		signer:    signer,
		committer: committer,
	}
}

type createImportRequest struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Model    string `json:"model,omitempty"`
}

type createImportResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// CreateImport registers an uploaded file and kicks off the pipeline. The
// response returns before processing starts; clients poll progress.
func (h *ImportHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.FilePath == "" || req.FileName == "" {
		http.Error(w, "file_path e file_name são obrigatórios", http.StatusBadRequest)
		return
	}

	doc := &models.ImportDocument{
		UserID:            userID,
		FileName:          req.FileName,
		FilePath:          req.FilePath,
		FileType:          req.FileType,
		Status:            models.StatusPending,
		StatusDescription: "Aguardando processamento...",
		ModelUsed:         req.Model,
		StatusConfirmacao: models.ConfirmationPending,
	}
	if err := h.store.CreateDocument(r.Context(), doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Log.Info("import created", "document_id", doc.ID, "user_id", userID, "file_name", req.FileName)

	h.trigger.StartBackground(models.ProcessRequest{
		Record: models.ImportRecordRef{
			ID:       doc.ID,
			FilePath: doc.FilePath,
			FileName: doc.FileName,
			FileType: doc.FileType,
		},
		Mode:  models.ModeDispatcher,
		Model: req.Model,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(createImportResponse{
		ID:      doc.ID,
		Message: "Processamento iniciado em segundo plano.",
	})
}

// ProcessTrigger accepts a raw pipeline request, the endpoint worker fan-out
// would call when invocations cross process boundaries.
func (h *ImportHandler) ProcessTrigger(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Record.ID == uuid.Nil {
		http.Error(w, "record.id é obrigatório", http.StatusBadRequest)
		return
	}

	h.trigger.StartBackground(req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "Processamento iniciado em segundo plano."})
}

func (h *ImportHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.store.ListDocuments(r.Context(), userID, 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

func (h *ImportHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["documentID"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if doc.UserID != userID {
		http.Error(w, "documento não encontrado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

type confirmImportRequest struct {
	ContaID      int64                     `json:"conta_id"`
	Transactions []models.TransactionDraft `json:"transactions,omitempty"`
}

// ConfirmImport commits the reviewed drafts into the ledger and flips the
// document's confirmation flag.
func (h *ImportHandler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["documentID"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	var req confirmImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ContaID <= 0 {
		http.Error(w, "conta_id é obrigatório", http.StatusBadRequest)
		return
	}

	result, err := h.committer.Commit(r.Context(), userID, id, req.ContaID, req.Transactions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type signedURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type signedURLResponse struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
}

// UploadURL issues a signed PUT URL the client uploads the document to before
// creating the import.
func (h *ImportHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !slices.Contains(whitelistedContentTypes, req.ContentType) {
		http.Error(w, "invalid content type: "+req.ContentType, http.StatusBadRequest)
		return
	}
	if req.FileName == "" {
		http.Error(w, "file_name é obrigatório", http.StatusBadRequest)
		return
	}

	url, objectPath, err := h.signer.SignedUploadURL(req.FileName, req.ContentType, signedURLExpiry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(signedURLResponse{
		URL:      url,
		FilePath: objectPath,
	})
}
