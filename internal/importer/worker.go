package importer

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/services"
)

func (i *Importer) runWorker(ctx context.Context, req models.ProcessRequest) error {
	if req.Chunked() {
		return i.runChunk(ctx, req)
	}

	docID := req.Record.ID
	data, mimeType, err := i.blobs.Download(ctx, req.Record.FilePath)
	if err != nil {
		i.progress.Fail(ctx, docID, "Erro ao baixar o arquivo enviado.", err)
		return err
	}
	return i.runSingle(ctx, docID, data, mimeType, i.model(req))
}

// runSingle extracts the whole file in one model call and completes the
// document directly, no chunk rows involved.
func (i *Importer) runSingle(ctx context.Context, docID uuid.UUID, data []byte, mimeType, model string) error {
	i.progress.Update(ctx, docID, 25, "Analisando o documento...")
	prompt := i.buildPrompt(ctx)

	i.progress.Update(ctx, docID, 40, "Extraindo transações com IA...")
	resp, err := i.extract(ctx, services.ExtractionRequest{
		Model:    model,
		Prompt:   prompt,
		FileData: data,
		MIMEType: mimeType,
	}, func(attempt, max int) {
		i.progress.Update(ctx, docID, 40,
			fmt.Sprintf("Instabilidade na IA. Tentativa %d de %d...", attempt+1, max))
	})
	if err != nil {
		i.progress.Fail(ctx, docID, "Erro ao extrair transações do documento.", err)
		return err
	}

	i.progress.Update(ctx, docID, 50, "Processando a resposta da IA...")
	drafts, parsed := services.ParseTransactions(resp.Text)
	metrics := models.AIMetrics{
		ModelUsed:     model,
		TokensInput:   resp.TokensInput,
		TokensOutput:  resp.TokensOutput,
		EstimatedCost: services.EstimateCost(model, resp.TokensInput, resp.TokensOutput),
	}

	description := fmt.Sprintf("Concluído! %d transações encontradas.", len(drafts))
	if err := i.store.CompleteDocument(ctx, docID, description, drafts, metrics, !parsed); err != nil {
		i.progress.Fail(ctx, docID, "Erro ao salvar o resultado da importação.", err)
		return err
	}
	i.log.Info().
		Str("document_id", docID.String()).
		Int("transactions", len(drafts)).
		Bool("low_confidence", !parsed).
		Msg("single-shot import completed")
	return nil
}

// runChunk extracts one page range, records the chunk outcome and, when its
// settlement closes the document, runs the terminal transition exactly once
// via the aggregation claim.
func (i *Importer) runChunk(ctx context.Context, req models.ProcessRequest) error {
	docID := req.Record.ID
	chunkID := *req.ChunkID
	log := i.log.With().
		Str("document_id", docID.String()).
		Str("chunk_id", chunkID.String()).
		Logger()

	if err := i.store.MarkChunkProcessing(ctx, chunkID); err != nil {
		log.Error().Err(err).Msg("failed to mark chunk processing")
		return err
	}

	result, metrics, lowConfidence, err := i.extractChunk(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("chunk extraction failed")
		if failErr := i.store.FailChunk(ctx, chunkID, err.Error()); failErr != nil {
			log.Error().Err(failErr).Msg("failed to record chunk failure")
		}
	} else {
		if compErr := i.store.CompleteChunk(ctx, chunkID, result, metrics, lowConfidence); compErr != nil {
			log.Error().Err(compErr).Msg("failed to record chunk completion")
			return compErr
		}
		log.Info().Int("transactions", len(result)).Msg("chunk completed")
	}

	if settleErr := i.settle(ctx, docID, req); settleErr != nil {
		return settleErr
	}
	return err
}

func (i *Importer) extractChunk(ctx context.Context, req models.ProcessRequest) ([]models.TransactionDraft, models.AIMetrics, bool, error) {
	data, _, err := i.blobs.Download(ctx, req.Record.FilePath)
	if err != nil {
		return nil, models.AIMetrics{}, false, fmt.Errorf("falha ao baixar o arquivo: %w", err)
	}

	pages, err := i.splitter.ExtractPages(data, *req.PageStart, *req.PageEnd)
	if err != nil {
		return nil, models.AIMetrics{}, false, fmt.Errorf("falha ao separar páginas %d-%d: %w", *req.PageStart+1, *req.PageEnd, err)
	}

	model := i.model(req)
	resp, err := i.extract(ctx, services.ExtractionRequest{
		Model:    model,
		Prompt:   i.buildPrompt(ctx),
		FileData: pages,
		MIMEType: "application/pdf",
	}, func(attempt, max int) {
		// Progress is monotonic in the store, so this only refreshes the
		// description while the real percentage stays put.
		i.progress.Update(ctx, req.Record.ID, 20,
			fmt.Sprintf("Instabilidade na IA. Tentativa %d de %d...", attempt+1, max))
	})
	if err != nil {
		return nil, models.AIMetrics{}, false, err
	}

	drafts, parsed := services.ParseTransactions(resp.Text)
	metrics := models.AIMetrics{
		ModelUsed:     model,
		TokensInput:   resp.TokensInput,
		TokensOutput:  resp.TokensOutput,
		EstimatedCost: services.EstimateCost(model, resp.TokensInput, resp.TokensOutput),
	}
	return drafts, metrics, !parsed, nil
}

func (i *Importer) extract(ctx context.Context, req services.ExtractionRequest, onRetry func(attempt, max int)) (*services.ExtractionResponse, error) {
	opts := i.retryOpts
	if onRetry != nil {
		opts = append(append([]services.RetryOption{}, i.retryOpts...), services.WithOnRetry(onRetry))
	}
	policy := services.NewRetryPolicy(opts...)
	return policy.Do(ctx, func(ctx context.Context) (*services.ExtractionResponse, error) {
		return i.extractor.Extract(ctx, req)
	})
}

// settle advances the parent document after a chunk reaches a terminal state.
// While chunks are outstanding it only refreshes progress; once every chunk
// settled, the single claim winner either aggregates the results or fails the
// document when any chunk errored.
func (i *Importer) settle(ctx context.Context, docID uuid.UUID, req models.ProcessRequest) error {
	counts, err := i.store.ChunkCounts(ctx, docID)
	if err != nil {
		return fmt.Errorf("falha ao consultar o estado das partes: %w", err)
	}

	if !counts.Settled() {
		progress := 20 + int(math.Round(float64(counts.Completed)/float64(counts.Total)*70))
		i.progress.Update(ctx, docID, progress,
			fmt.Sprintf("Processadas %d de %d partes...", counts.Completed+counts.Errored, counts.Total))
		return nil
	}

	claimed, err := i.store.ClaimAggregation(ctx, docID)
	if err != nil {
		return fmt.Errorf("falha ao reivindicar a agregação: %w", err)
	}
	if !claimed {
		return nil
	}

	if counts.Errored > 0 {
		return i.failFromChunks(ctx, docID, counts)
	}
	return i.aggregate(ctx, docID, counts, i.model(req))
}

func (i *Importer) aggregate(ctx context.Context, docID uuid.UUID, counts models.ChunkCounts, model string) error {
	chunks, err := i.store.ListChunks(ctx, docID)
	if err != nil {
		i.progress.Fail(ctx, docID, "Erro ao consolidar os resultados do documento.", err)
		return err
	}

	var all []models.TransactionDraft
	var metrics models.AIMetrics
	lowConfidence := false
	for _, chunk := range chunks {
		all = append(all, chunk.ResultData...)
		metrics = metrics.Add(models.AIMetrics{
			TokensInput:   chunk.TokensInput,
			TokensOutput:  chunk.TokensOutput,
			EstimatedCost: chunk.EstimatedCost,
		})
		lowConfidence = lowConfidence || chunk.LowConfidence
	}
	metrics.ModelUsed = model

	description := fmt.Sprintf("Concluído! %d transações encontradas (via %d partes).", len(all), counts.Total)
	if err := i.store.CompleteDocument(ctx, docID, description, all, metrics, lowConfidence); err != nil {
		i.progress.Fail(ctx, docID, "Erro ao salvar o resultado da importação.", err)
		return err
	}
	i.log.Info().
		Str("document_id", docID.String()).
		Int("transactions", len(all)).
		Int("chunks", counts.Total).
		Bool("low_confidence", lowConfidence).
		Msg("aggregated import completed")
	return nil
}

func (i *Importer) failFromChunks(ctx context.Context, docID uuid.UUID, counts models.ChunkCounts) error {
	chunks, err := i.store.ListChunks(ctx, docID)
	cause := fmt.Errorf("%d de %d partes falharam", counts.Errored, counts.Total)
	if err == nil {
		for _, chunk := range chunks {
			if chunk.Status == models.StatusError && chunk.ErrorMessage != nil {
				cause = fmt.Errorf("parte %d: %s", chunk.ChunkIndex+1, *chunk.ErrorMessage)
				break
			}
		}
	}
	i.progress.Fail(ctx, docID,
		fmt.Sprintf("Falha ao processar o documento: %d de %d partes com erro.", counts.Errored, counts.Total),
		cause)
	return nil
}
