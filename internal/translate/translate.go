// Package translate is the boundary to external machine translation.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrTranslationFailed marks every translation failure, whatever the engine
// or cause. The cause is wrapped alongside it.
var ErrTranslationFailed = errors.New("translation failed")

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target language.Tag) (string, error)
}

// Named is implemented by translators that can describe their engine for
// display.
type Named interface {
	Name() string
}

// Engine identifiers accepted by configuration.
const (
	EngineGoogle = "google"
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
)

// Engines lists the supported engine identifiers.
var Engines = []string{EngineGoogle, EngineOpenAI, EngineGemini}

// Default language pair: English to Traditional Chinese as used in Taiwan.
var (
	DefaultSource = language.English
	DefaultTarget = language.MustParse("zh-TW")
)

// ParseTag parses a BCP 47 tag such as "en" or "zh-TW".
func ParseTag(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, errors.New("empty language tag")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse language %q: %w", s, err)
	}
	return tag, nil
}

// LanguageName returns the English name of tag, e.g. "English".
func LanguageName(tag language.Tag) string {
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// EngineName returns a display name for t.
func EngineName(t Translator) string {
	if n, ok := t.(Named); ok {
		return n.Name()
	}
	return "unknown"
}

func failed(engine string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTranslationFailed, engine, err)
}
