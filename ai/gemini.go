package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultTagModel   = "gemini-2.0-flash"
	DefaultImageModel = "gemini-2.0-flash-exp"
)

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// GeminiGenerator implements Generator on the Gemini API.
type GeminiGenerator struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	g := &GeminiGenerator{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
	if g.textModel == "" {
		g.textModel = DefaultTagModel
	}
	if g.imageModel == "" {
		g.imageModel = DefaultImageModel
	}
	return g, nil
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, err
	}
	text := responseText(resp)
	if text == "" {
		return nil, errors.New("empty response")
	}
	return []byte(text), nil
}

func (g *GeminiGenerator) GenerateMedia(ctx context.Context, prompt string) (Media, error) {
	// The image model only emits images when both modalities are requested.
	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return Media{}, err
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Media{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
			}
		}
	}
	return Media{}, ErrNoMedia
}

// ErrNoMedia is returned by GenerateMedia when the reply holds no inline media.
var ErrNoMedia = errors.New("response contains no media")

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
