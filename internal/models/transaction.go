package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const (
	TipoReceita = "receita"
	TipoDespesa = "despesa"
)

// TransactionDraft is one AI-extracted, not-yet-committed candidate ledger
// entry. The sign of Valor is the canonical direction indicator: negative for
// despesa, positive for receita. Tipo is carried redundantly and must agree.
type TransactionDraft struct {
	Data                string   `json:"data"` // DD/MM/YYYY
	Descricao           string   `json:"descricao"`
	Valor               float64  `json:"valor"`
	Tipo                string   `json:"tipo"`
	CategoriaSugeridaID *int64   `json:"categoria_sugerida_id"`
	CategoriaNome       *string  `json:"categoria_nome"`

	IsDuplicate bool   `json:"isDuplicate,omitempty"`
	DuplicateID *int64 `json:"duplicateId,omitempty"`
	ForceKeep   bool   `json:"forceKeep,omitempty"`
}

// TipoFromValor derives the discriminator from the amount's sign.
func TipoFromValor(valor float64) string {
	if valor < 0 {
		return TipoDespesa
	}
	return TipoReceita
}

// NormalizeTipo forces agreement between Tipo and the sign of Valor. The sign
// wins: a positive valor labelled despesa becomes receita and vice versa.
func (t *TransactionDraft) NormalizeTipo() {
	t.Tipo = TipoFromValor(t.Valor)
}

// ISODate converts the draft's DD/MM/YYYY date to YYYY-MM-DD.
func (t TransactionDraft) ISODate() (string, error) {
	parsed, err := time.Parse("02/01/2006", t.Data)
	if err != nil {
		return "", fmt.Errorf("data inválida %q: %w", t.Data, err)
	}
	return parsed.Format("2006-01-02"), nil
}

// LedgerEntry is a committed financial movement, table lancamentos.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:lancamentos,alias:l"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"id_responsavel,notnull" json:"id_responsavel"`
	ContaID       int64     `bun:"conta_id,notnull" json:"conta_id"`
	DataPagamento string    `bun:"data_pagamento,notnull" json:"data_pagamento"` // YYYY-MM-DD
	Descricao     string    `bun:"descricao,notnull" json:"descricao"`
	Valor         float64   `bun:"valor,notnull" json:"valor"`
	TipoOperacao  string    `bun:"tipo_operacao,notnull" json:"tipo_operacao"`
	CategoriaID   *int64    `bun:"categoria_id" json:"categoria_id,omitempty"`
	Origem        string    `bun:"origem" json:"origem,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
