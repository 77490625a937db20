package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ImportStatus string

const (
	StatusPending     ImportStatus = "pending"
	StatusProcessing  ImportStatus = "processing"
	StatusAggregating ImportStatus = "aggregating"
	StatusCompleted   ImportStatus = "completed"
	StatusError       ImportStatus = "error"
)

type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pendente"
	ConfirmationConfirmed ConfirmationStatus = "confirmado"
)

// AIMetrics is the token/cost accounting attached to a document or a chunk.
// Cost is derived from the static price table, not billed figures.
type AIMetrics struct {
	ModelUsed     string  `json:"model_used,omitempty"`
	TokensInput   int     `json:"tokens_input"`
	TokensOutput  int     `json:"tokens_output"`
	EstimatedCost float64 `json:"estimated_cost"`
}

func (m AIMetrics) Add(other AIMetrics) AIMetrics {
	return AIMetrics{
		ModelUsed:     m.ModelUsed,
		TokensInput:   m.TokensInput + other.TokensInput,
		TokensOutput:  m.TokensOutput + other.TokensOutput,
		EstimatedCost: m.EstimatedCost + other.EstimatedCost,
	}
}

// ImportDocument is the durable state record for one uploaded file,
// table documentos_importacao.
type ImportDocument struct {
	bun.BaseModel `bun:"table:documentos_importacao,alias:di"`

	ID                uuid.UUID          `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID            string             `bun:"user_id,notnull" json:"user_id"`
	FileName          string             `bun:"file_name,notnull" json:"file_name"`
	FilePath          string             `bun:"file_path,notnull" json:"file_path"`
	FileType          string             `bun:"file_type" json:"file_type"`
	Status            ImportStatus       `bun:"status,notnull,default:'pending'" json:"status"`
	Progress          int                `bun:"progress,notnull,default:0" json:"progress"`
	StatusDescription string             `bun:"status_description" json:"status_description"`
	ErrorMessage      *string            `bun:"error_message" json:"error_message,omitempty"`
	ResultData        []TransactionDraft `bun:"result_data,type:jsonb" json:"result_data,omitempty"`
	ModelUsed         string             `bun:"model_used" json:"model_used,omitempty"`
	TokensInput       int                `bun:"tokens_input,notnull,default:0" json:"tokens_input"`
	TokensOutput      int                `bun:"tokens_output,notnull,default:0" json:"tokens_output"`
	EstimatedCost     float64            `bun:"estimated_cost,notnull,default:0" json:"estimated_cost"`
	LowConfidence     bool               `bun:"low_confidence,notnull,default:false" json:"low_confidence"`
	StatusConfirmacao ConfirmationStatus `bun:"status_confirmacao,notnull,default:'pendente'" json:"status_confirmacao"`
	CreatedAt         time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time          `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// ImportChunk is one page-range sub-task of a document, table importacao_chunks.
// Chunks exist only for documents routed through the split path.
type ImportChunk struct {
	bun.BaseModel `bun:"table:importacao_chunks,alias:ic"`

	ID            uuid.UUID          `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	DocumentID    uuid.UUID          `bun:"documento_id,notnull" json:"documento_id"`
	Document      *ImportDocument    `bun:"rel:belongs-to,join:documento_id=id,on_delete:CASCADE" json:"-"`
	ChunkIndex    int                `bun:"chunk_index,notnull" json:"chunk_index"`
	TotalChunks   int                `bun:"total_chunks,notnull" json:"total_chunks"`
	PageStart     int                `bun:"page_start,notnull" json:"page_start"`
	PageEnd       int                `bun:"page_end,notnull" json:"page_end"`
	Status        ImportStatus       `bun:"status,notnull,default:'pending'" json:"status"`
	ErrorMessage  *string            `bun:"error_message" json:"error_message,omitempty"`
	ResultData    []TransactionDraft `bun:"result_data,type:jsonb" json:"result_data,omitempty"`
	TokensInput   int                `bun:"tokens_input,notnull,default:0" json:"tokens_input"`
	TokensOutput  int                `bun:"tokens_output,notnull,default:0" json:"tokens_output"`
	EstimatedCost float64            `bun:"estimated_cost,notnull,default:0" json:"estimated_cost"`
	LowConfidence bool               `bun:"low_confidence,notnull,default:false" json:"low_confidence"`
	CreatedAt     time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time          `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type ChunkCounts struct {
	Completed int
	Errored   int
	Total     int
}

// Settled reports whether every chunk reached a terminal state.
func (c ChunkCounts) Settled() bool {
	return c.Total > 0 && c.Completed+c.Errored == c.Total
}

// ImportRecordRef identifies the document inside a trigger payload.
type ImportRecordRef struct {
	ID       uuid.UUID `json:"id"`
	FilePath string    `json:"file_path"`
	FileName string    `json:"file_name"`
	FileType string    `json:"file_type"`
}

const (
	ModeDispatcher = "dispatcher"
	ModeWorker     = "worker"
)

// ProcessRequest is the trigger payload for the import pipeline. An absent or
// "dispatcher" mode starts a fresh dispatch; "worker" processes one declared
// chunk, or the whole file when the page range is absent.
type ProcessRequest struct {
	Record      ImportRecordRef `json:"record"`
	Mode        string          `json:"mode,omitempty"`
	ChunkID     *uuid.UUID      `json:"chunkId,omitempty"`
	PageStart   *int            `json:"pageStart,omitempty"`
	PageEnd     *int            `json:"pageEnd,omitempty"`
	TotalChunks int             `json:"totalChunks,omitempty"`
	Model       string          `json:"model,omitempty"`
}

// Chunked reports whether the request addresses a single chunk of a split document.
func (r ProcessRequest) Chunked() bool {
	return r.Mode == ModeWorker && r.ChunkID != nil && r.PageStart != nil && r.PageEnd != nil
}
