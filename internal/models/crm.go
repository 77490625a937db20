package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Contact is a CRM contact or lead, table contatos.
type Contact struct {
	bun.BaseModel `bun:"table:contatos,alias:ct"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	Nome      string    `bun:"nome,notnull" json:"nome"`
	Telefone  string    `bun:"telefone" json:"telefone,omitempty"`
	Email     string    `bun:"email" json:"email,omitempty"`
	Etapa     string    `bun:"etapa,notnull,default:'lead'" json:"etapa"`
	Tags      []string  `bun:"tags,array" json:"tags,omitempty"`
	Notas     string    `bun:"notas" json:"notas,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "rascunho"
	CampaignScheduled CampaignStatus = "agendada"
	CampaignSending   CampaignStatus = "enviando"
	CampaignDone      CampaignStatus = "concluida"
)

// Campaign is a WhatsApp campaign record, table campanhas. Only the record is
// managed here; message delivery belongs to the messaging integration.
type Campaign struct {
	bun.BaseModel `bun:"table:campanhas,alias:cp"`

	ID          uuid.UUID      `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID      string         `bun:"user_id,notnull" json:"user_id"`
	Nome        string         `bun:"nome,notnull" json:"nome"`
	Mensagem    string         `bun:"mensagem,notnull" json:"mensagem"`
	Audiencia   []string       `bun:"audiencia,array" json:"audiencia,omitempty"`
	Status      CampaignStatus `bun:"status,notnull,default:'rascunho'" json:"status"`
	ScheduledAt *time.Time     `bun:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
