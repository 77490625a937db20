package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gestaozap/backoffice/internal/models"
)

var (
	reJSONFence = regexp.MustCompile("(?i)```json\\s*")
	reFence     = regexp.MustCompile("```\\s*")
)

// ParseTransactions parses a model response into transaction drafts. The
// contract is deliberately lenient: markdown fences are stripped, a bracketed
// region is retried when the whole response fails, and a response that still
// cannot be parsed yields zero drafts with ok=false instead of an error —
// partial extraction beats total failure. Tipo is re-derived from the sign of
// valor on every draft.
func ParseTransactions(raw string) ([]models.TransactionDraft, bool) {
	clean := reJSONFence.ReplaceAllString(raw, "")
	clean = reFence.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	drafts, ok := tryParse(clean)
	if !ok {
		start := strings.Index(clean, "[")
		end := strings.LastIndex(clean, "]")
		if start >= 0 && end > start {
			drafts, ok = tryParse(clean[start : end+1])
		}
	}
	if !ok {
		return nil, false
	}

	for i := range drafts {
		drafts[i].Descricao = strings.TrimSpace(drafts[i].Descricao)
		drafts[i].NormalizeTipo()
	}
	return drafts, true
}

func tryParse(s string) ([]models.TransactionDraft, bool) {
	if s == "" {
		return nil, false
	}

	var drafts []models.TransactionDraft
	if err := json.Unmarshal([]byte(s), &drafts); err == nil {
		return drafts, true
	}

	// Some models wrap the array in an object despite instructions.
	var wrapped struct {
		Transactions []models.TransactionDraft `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err == nil && wrapped.Transactions != nil {
		return wrapped.Transactions, true
	}
	return nil, false
}
