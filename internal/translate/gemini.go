package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiModels is the subset of *genai.Models used here.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini translates with a Google GenAI model.
type Gemini struct {
	Models GeminiModels
	Model  string
}

// NewGemini connects to the Gemini API with apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{Models: client.Models, Model: model}, nil
}

func (g *Gemini) Name() string { return "Gemini (" + g.Model + ")" }

func (g *Gemini) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	if g.Models == nil {
		return "", failed(EngineGemini, errors.New("translator not configured"))
	}
	if strings.TrimSpace(text) == "" {
		return "", failed(EngineGemini, errors.New("empty text"))
	}
	model := g.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	temp := float32(0)
	resp, err := g.Models.GenerateContent(ctx, model, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}, &genai.GenerateContentConfig{
		Temperature:       &temp,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt(source, target)}}},
	})
	if err != nil {
		return "", failed(EngineGemini, err)
	}
	out := strings.TrimSpace(responseText(resp))
	if out == "" {
		return "", failed(EngineGemini, errors.New("empty response"))
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
