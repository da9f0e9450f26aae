package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"

	"github.com/hyperifyio/quotegen/internal/llm"
)

// LLM translates with an OpenAI-compatible chat model.
type LLM struct {
	Client llm.Client
	Model  string
}

func (l *LLM) Name() string { return "OpenAI-compatible (" + l.Model + ")" }

func (l *LLM) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	if l.Client == nil || strings.TrimSpace(l.Model) == "" {
		return "", failed(EngineOpenAI, errors.New("translator not configured"))
	}
	if strings.TrimSpace(text) == "" {
		return "", failed(EngineOpenAI, errors.New("empty text"))
	}
	resp, err := l.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		N:           1,
	})
	if err != nil {
		return "", failed(EngineOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", failed(EngineOpenAI, errors.New("no choices"))
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", failed(EngineOpenAI, errors.New("empty completion"))
	}
	return out, nil
}

// systemPrompt is shared by the model-backed engines.
func systemPrompt(source, target language.Tag) string {
	return fmt.Sprintf("You are a translation engine. Translate the user's text from %s (%s) to %s (%s). "+
		"Reply with the translation only, without quotation marks, notes or commentary.",
		LanguageName(source), source, LanguageName(target), target)
}
