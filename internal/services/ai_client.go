package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ExtractionRequest carries one document (or document chunk) to the model.
type ExtractionRequest struct {
	Model    string
	Prompt   string
	FileData []byte
	MIMEType string
}

// ExtractionResponse is the raw model output plus token accounting.
type ExtractionResponse struct {
	Text         string
	TokensInput  int
	TokensOutput int
}

// Extractor submits a prompt plus file bytes and returns the raw response.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResponse, error)
}

type GeminiExtractor struct {
	client *genai.Client
}

func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return &GeminiExtractor{client: client}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResponse, error) {
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.FileData, mimeType),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	resp := &ExtractionResponse{Text: result.Text()}
	if um := result.UsageMetadata; um != nil {
		resp.TokensInput = int(um.PromptTokenCount)
		resp.TokensOutput = int(um.CandidatesTokenCount)
	}
	return resp, nil
}
