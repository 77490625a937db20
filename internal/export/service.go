// Package export produces XLSX workbooks from ledger data.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gestaozap/backoffice/internal/logger"
	"github.com/gestaozap/backoffice/internal/models"
)

// EntrySource is the slice of the ledger repository the exporter reads from.
type EntrySource interface {
	List(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	ListRange(ctx context.Context, userID, from, to string) ([]models.LedgerEntry, error)
}

// Service is a tiny façade over the ledger repository that produces XLSX
// bytes for exports.
type Service struct {
	entries EntrySource
}

func NewService(entries EntrySource) *Service {
	return &Service{entries: entries}
}

// ExportLedgerXLSX returns an XLSX workbook for the user's ledger. from/to
// are optional YYYY-MM-DD bounds, both inclusive; empty strings export the
// whole ledger.
func (s *Service) ExportLedgerXLSX(ctx context.Context, userID, from, to string) ([]byte, error) {
	start := time.Now()

	var entries []models.LedgerEntry
	var err error
	if from != "" || to != "" {
		if from == "" {
			from = "0000-01-01"
		}
		if to == "" {
			to = time.Now().UTC().Format("2006-01-02")
		}
		entries, err = s.entries.ListRange(ctx, userID, from, to)
	} else {
		entries, err = s.entries.List(ctx, userID, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Lançamentos"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	headers := []string{
		"Data de Pagamento",
		"Descrição",
		"Valor",
		"Tipo",
		"Categoria",
		"Origem",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, entry := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, entry.DataPagamento)
		write(2, entry.Descricao)
		write(3, entry.Valor)
		write(4, entry.TipoOperacao)
		if entry.CategoriaID != nil {
			write(5, *entry.CategoriaID)
		} else {
			write(5, "")
		}
		write(6, entry.Origem)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "D", 10)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Log.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
