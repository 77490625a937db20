// Package reconcile flags extracted transactions that already exist in the
// ledger so a confirmed import does not create the same entry twice.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/gestaozap/backoffice/internal/models"
)

// NormalizeDescription collapses the parts of a description that vary between
// a bank statement and a manually typed ledger entry: surrounding space,
// letter case and repeated whitespace.
func NormalizeDescription(desc string) string {
	return strings.Join(strings.Fields(strings.ToUpper(strings.TrimSpace(desc))), " ")
}

// Signature builds the identity key used to match a draft against an existing
// ledger entry. Two records with the same day, the same absolute amount and
// the same normalized description are considered the same transaction
// regardless of sign convention.
func Signature(isoDate string, valor float64, descricao string) string {
	if valor < 0 {
		valor = -valor
	}
	return fmt.Sprintf("%s|%.2f|%s", isoDate, valor, NormalizeDescription(descricao))
}

// Flag marks every draft whose signature collides with an existing ledger
// entry. Drafts with unparseable dates are left untouched; they cannot match
// anything and will surface as validation errors later. ForceKeep is not
// consulted here: the flag records the collision, the commit filter decides
// what to do with it.
func Flag(drafts []models.TransactionDraft, existing []models.LedgerEntry) {
	if len(existing) == 0 {
		return
	}
	index := make(map[string]int64, len(existing))
	for _, entry := range existing {
		key := Signature(entry.DataPagamento, entry.Valor, entry.Descricao)
		if _, ok := index[key]; !ok {
			index[key] = entry.ID
		}
	}
	for i := range drafts {
		iso, err := drafts[i].ISODate()
		if err != nil {
			continue
		}
		if id, ok := index[Signature(iso, drafts[i].Valor, drafts[i].Descricao)]; ok {
			drafts[i].IsDuplicate = true
			dup := id
			drafts[i].DuplicateID = &dup
		}
	}
}

// DateSpan returns the earliest and latest dates among the drafts in
// YYYY-MM-DD form, the window the caller should load existing ledger entries
// for. ok is false when no draft carries a parseable date.
func DateSpan(drafts []models.TransactionDraft) (min, max string, ok bool) {
	for _, d := range drafts {
		iso, err := d.ISODate()
		if err != nil {
			continue
		}
		if !ok {
			min, max, ok = iso, iso, true
			continue
		}
		if iso < min {
			min = iso
		}
		if iso > max {
			max = iso
		}
	}
	return min, max, ok
}

// FilterForCommit drops the drafts the user chose not to keep: flagged
// duplicates without an explicit force-keep override.
func FilterForCommit(drafts []models.TransactionDraft) []models.TransactionDraft {
	kept := make([]models.TransactionDraft, 0, len(drafts))
	for _, d := range drafts {
		if d.IsDuplicate && !d.ForceKeep {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
