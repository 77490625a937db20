package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/pdfsplit"
)

// maxUnsplittablePDFBytes is the safety valve for PDFs whose page count
// cannot be read: below it the file goes through single-shot extraction
// anyway, above it the import fails instead of feeding an oversized blob to
// the model.
const maxUnsplittablePDFBytes = 2 << 20

// dispatch downloads the uploaded file, decides between the single-shot and
// the split path and, on the split path, creates one chunk row per page range
// and fans the ranges out to worker invocations.
func (i *Importer) dispatch(ctx context.Context, req models.ProcessRequest) error {
	docID := req.Record.ID
	log := i.log.With().Str("document_id", docID.String()).Logger()
	log.Info().Str("file_path", req.Record.FilePath).Msg("dispatching import")

	i.progress.Update(ctx, docID, 5, "Iniciando análise do arquivo...")

	data, mimeType, err := i.blobs.Download(ctx, req.Record.FilePath)
	if err != nil {
		i.progress.Fail(ctx, docID, "Erro ao baixar o arquivo enviado.", err)
		return err
	}

	if !isPDF(mimeType, req.Record.FileName) {
		return i.runSingle(ctx, docID, data, mimeType, i.model(req))
	}

	pageCount, err := i.splitter.PageCount(data)
	if err != nil {
		if len(data) > maxUnsplittablePDFBytes {
			sizeMB := float64(len(data)) / (1024 * 1024)
			cause := fmt.Errorf("arquivo grande (%.2fMB) e não foi possível contar as páginas do PDF: %w", sizeMB, err)
			i.progress.Fail(ctx, docID, "Não foi possível ler o PDF enviado. Tente um arquivo menor ou exporte-o novamente.", cause)
			return cause
		}
		log.Warn().Err(err).Msg("page count unreadable, small file falls back to single-shot")
		return i.runSingle(ctx, docID, data, mimeType, i.model(req))
	}

	if pageCount <= pdfsplit.PagesPerChunk {
		return i.runSingle(ctx, docID, data, mimeType, i.model(req))
	}

	ranges := pdfsplit.ChunkRanges(pageCount, pdfsplit.PagesPerChunk)
	total := len(ranges)
	log.Info().Int("pages", pageCount).Int("chunks", total).Msg("splitting document")

	i.progress.Update(ctx, docID, 15,
		fmt.Sprintf("Arquivo grande (%d páginas). Dividindo em %d partes...", pageCount, total))

	requests := make([]models.ProcessRequest, 0, total)
	for idx, r := range ranges {
		chunk := &models.ImportChunk{
			DocumentID:  docID,
			ChunkIndex:  idx,
			TotalChunks: total,
			PageStart:   r.Start,
			PageEnd:     r.End,
			Status:      models.StatusPending,
		}
		if err := i.store.CreateChunk(ctx, chunk); err != nil {
			i.progress.Fail(ctx, docID, "Erro ao preparar o processamento do documento.", err)
			return err
		}
		chunkID := chunk.ID
		start, end := r.Start, r.End
		requests = append(requests, models.ProcessRequest{
			Record:      req.Record,
			Mode:        models.ModeWorker,
			ChunkID:     &chunkID,
			PageStart:   &start,
			PageEnd:     &end,
			TotalChunks: total,
			Model:       req.Model,
		})
	}

	i.progress.Update(ctx, docID, 20,
		fmt.Sprintf("Processando %d partes em paralelo...", total))

	for _, workerReq := range requests {
		i.invoke(workerReq)
	}
	return nil
}

func isPDF(mimeType, fileName string) bool {
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}
