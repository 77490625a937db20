package reconcile

import (
	"testing"

	"github.com/gestaozap/backoffice/internal/models"
)

func TestSignatureNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "PAGAMENTO FORNECEDOR", "PAGAMENTO FORNECEDOR", true},
		{"case differs", "Pagamento Fornecedor", "PAGAMENTO FORNECEDOR", true},
		{"whitespace collapsed", "  pagamento   fornecedor ", "PAGAMENTO FORNECEDOR", true},
		{"different text", "PAGAMENTO FORNECEDOR", "PAGAMENTO CLIENTE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Signature("2026-01-10", -150.5, tt.a) == Signature("2026-01-10", -150.5, tt.b)
			if got != tt.want {
				t.Errorf("signature match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignatureAbsoluteAmount(t *testing.T) {
	neg := Signature("2026-01-10", -150.5, "CONTA DE LUZ")
	pos := Signature("2026-01-10", 150.5, "CONTA DE LUZ")
	if neg != pos {
		t.Errorf("sign should not affect signature: %q vs %q", neg, pos)
	}
	other := Signature("2026-01-10", 150.51, "CONTA DE LUZ")
	if neg == other {
		t.Errorf("different amounts must not collide")
	}
}

func TestFlag(t *testing.T) {
	drafts := []models.TransactionDraft{
		{Data: "10/01/2026", Descricao: "  conta de   luz ", Valor: -150.5, Tipo: models.TipoDespesa},
		{Data: "11/01/2026", Descricao: "PIX RECEBIDO", Valor: 300, Tipo: models.TipoReceita},
		{Data: "data ruim", Descricao: "CONTA DE LUZ", Valor: -150.5, Tipo: models.TipoDespesa},
	}
	existing := []models.LedgerEntry{
		{ID: 77, DataPagamento: "2026-01-10", Descricao: "Conta de Luz", Valor: -150.5},
	}

	Flag(drafts, existing)

	if !drafts[0].IsDuplicate {
		t.Errorf("draft 0 should be flagged as duplicate")
	}
	if drafts[0].DuplicateID == nil || *drafts[0].DuplicateID != 77 {
		t.Errorf("draft 0 DuplicateID = %v, want 77", drafts[0].DuplicateID)
	}
	if drafts[1].IsDuplicate {
		t.Errorf("draft 1 has no ledger match, must not be flagged")
	}
	if drafts[2].IsDuplicate {
		t.Errorf("draft with unparseable date must be left untouched")
	}
}

func TestDateSpan(t *testing.T) {
	drafts := []models.TransactionDraft{
		{Data: "15/03/2026"},
		{Data: "invalida"},
		{Data: "02/01/2026"},
		{Data: "28/02/2026"},
	}
	min, max, ok := DateSpan(drafts)
	if !ok {
		t.Fatalf("expected a span")
	}
	if min != "2026-01-02" || max != "2026-03-15" {
		t.Errorf("span = [%s, %s], want [2026-01-02, 2026-03-15]", min, max)
	}

	if _, _, ok := DateSpan([]models.TransactionDraft{{Data: "nada"}}); ok {
		t.Errorf("all-invalid dates should report ok=false")
	}
}

func TestFilterForCommit(t *testing.T) {
	id := int64(9)
	drafts := []models.TransactionDraft{
		{Descricao: "NORMAL"},
		{Descricao: "DUPLICADA", IsDuplicate: true, DuplicateID: &id},
		{Descricao: "MANTIDA", IsDuplicate: true, DuplicateID: &id, ForceKeep: true},
	}
	kept := FilterForCommit(drafts)
	if len(kept) != 2 {
		t.Fatalf("kept %d drafts, want 2", len(kept))
	}
	if kept[0].Descricao != "NORMAL" || kept[1].Descricao != "MANTIDA" {
		t.Errorf("unexpected kept set: %+v", kept)
	}
}
