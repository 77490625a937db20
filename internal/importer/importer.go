// Package importer orchestrates the AI-assisted document import pipeline:
// dispatching uploaded files, splitting large PDFs into page-range chunks,
// extracting transactions through the model and aggregating chunk results
// back into the parent document.
package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gestaozap/backoffice/internal/blob"
	"github.com/gestaozap/backoffice/internal/models"
	"github.com/gestaozap/backoffice/internal/services"
	"github.com/gestaozap/backoffice/internal/store"
)

// Splitter reads page counts and extracts page ranges from PDF bytes.
type Splitter interface {
	PageCount(data []byte) (int, error)
	ExtractPages(data []byte, start, end int) ([]byte, error)
}

// ContextSource supplies the organization-specific context injected into the
// extraction prompt.
type ContextSource interface {
	Categories(ctx context.Context, limit int) ([]models.Category, error)
	Knowledge(ctx context.Context) ([]models.KnowledgeEntry, error)
}

// Deps wires an Importer. Store, Blobs, Splitter and Extractor are required;
// the rest default to sensible values.
type Deps struct {
	Store         store.ImportStore
	Blobs         blob.Store
	Splitter      Splitter
	Extractor     services.Extractor
	ContextSource ContextSource

	DefaultModel  string
	CategoryLimit int
	RetryOpts     []services.RetryOption

	// Invoke submits a follow-up pipeline request. The default runs the
	// request on a fresh goroutine with a background context, mirroring a
	// fire-and-forget function trigger.
	Invoke func(models.ProcessRequest)

	Logger *zerolog.Logger
}

type Importer struct {
	store         store.ImportStore
	progress      *store.ProgressTracker
	blobs         blob.Store
	splitter      Splitter
	extractor     services.Extractor
	contextSource ContextSource

	defaultModel  string
	categoryLimit int
	retryOpts     []services.RetryOption
	invoke        func(models.ProcessRequest)

	log zerolog.Logger
}

func New(deps Deps) *Importer {
	i := &Importer{
		store:         deps.Store,
		progress:      store.NewProgressTracker(deps.Store),
		blobs:         deps.Blobs,
		splitter:      deps.Splitter,
		extractor:     deps.Extractor,
		contextSource: deps.ContextSource,
		defaultModel:  deps.DefaultModel,
		categoryLimit: deps.CategoryLimit,
		retryOpts:     deps.RetryOpts,
		invoke:        deps.Invoke,
	}
	if i.defaultModel == "" {
		i.defaultModel = services.DefaultModel
	}
	if i.categoryLimit <= 0 {
		i.categoryLimit = 100
	}
	if deps.Logger != nil {
		i.log = *deps.Logger
	} else {
		i.log = zerolog.New(os.Stderr).With().Timestamp().Str("component", "importer").Logger()
	}
	if i.invoke == nil {
		i.invoke = i.asyncInvoke
	}
	return i
}

// Process routes one pipeline request. An empty or "dispatcher" mode starts a
// fresh dispatch; "worker" extracts either the whole file or one declared
// chunk.
func (i *Importer) Process(ctx context.Context, req models.ProcessRequest) error {
	switch req.Mode {
	case models.ModeWorker:
		return i.runWorker(ctx, req)
	case "", models.ModeDispatcher:
		return i.dispatch(ctx, req)
	default:
		return fmt.Errorf("modo de processamento desconhecido: %q", req.Mode)
	}
}

// StartBackground submits the request through the configured invoker and
// returns immediately.
func (i *Importer) StartBackground(req models.ProcessRequest) {
	i.invoke(req)
}

func (i *Importer) asyncInvoke(req models.ProcessRequest) {
	go func() {
		if err := i.Process(context.Background(), req); err != nil {
			i.log.Error().
				Err(err).
				Str("document_id", req.Record.ID.String()).
				Str("mode", req.Mode).
				Msg("background import request failed")
		}
	}()
}

func (i *Importer) model(req models.ProcessRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return i.defaultModel
}

// buildPrompt assembles the extraction prompt. Missing context is tolerated:
// extraction still works against the generic category fallback.
func (i *Importer) buildPrompt(ctx context.Context) string {
	categories, err := i.contextSource.Categories(ctx, i.categoryLimit)
	if err != nil {
		i.log.Warn().Err(err).Msg("failed to load categories for prompt")
	}
	knowledge, err := i.contextSource.Knowledge(ctx)
	if err != nil {
		i.log.Warn().Err(err).Msg("failed to load knowledge base for prompt")
	}
	return services.BuildExtractionPrompt(categories, knowledge)
}
