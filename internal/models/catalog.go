package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Category is a DRE expense/revenue category, table categorias_dre.
type Category struct {
	bun.BaseModel `bun:"table:categorias_dre,alias:c"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	Nome   string `bun:"nome,notnull" json:"nome"`
	Codigo string `bun:"codigo" json:"codigo,omitempty"`
	Tipo   string `bun:"tipo,notnull" json:"tipo"` // receita | despesa
}

const (
	KnowledgeSupplier    = "supplier"
	KnowledgeInstruction = "instruction"
)

// KnowledgeEntry is an organization-specific note injected verbatim into the
// extraction prompt, table ai_knowledge_base.
type KnowledgeEntry struct {
	bun.BaseModel `bun:"table:ai_knowledge_base,alias:kb"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Type      string    `bun:"type,notnull" json:"type"` // supplier | instruction
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
