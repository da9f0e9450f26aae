package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TranslationEntry is one persisted translation.
type TranslationEntry struct {
	Engine      string    `json:"engine"`
	Source      string    `json:"source"`
	Target      string    `json:"target"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	SavedAt     time.Time `json:"saved_at"`
}

// TranslationCache stores translations keyed by engine, language pair and
// source text, one <key>.tr.json file per entry.
type TranslationCache struct {
	Dir         string
	StrictPerms bool
}

func (c *TranslationCache) store() store { return store{Dir: c.Dir, StrictPerms: c.StrictPerms} }

// TranslationKey builds the cache key for a translation request.
func TranslationKey(engine, source, target, text string) string {
	return digest(engine, source, target, text)
}

func translationName(key string) string { return key + ".tr.json" }

// Get returns the cached translation for key. A missing or unreadable entry
// is a miss, not an error.
func (c *TranslationCache) Get(_ context.Context, key string) (string, bool, error) {
	s := c.store()
	if err := s.ensureDir(); err != nil {
		return "", false, err
	}
	p := s.path(translationName(key))
	b, err := os.ReadFile(p)
	if err != nil {
		return "", false, nil
	}
	var e TranslationEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Translation == "" {
		return "", false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e.Translation, true, nil
}

// Save writes a translation under key.
func (c *TranslationCache) Save(_ context.Context, key string, e TranslationEntry) error {
	s := c.store()
	if err := s.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode translation: %w", err)
	}
	return s.writeAtomic(translationName(key), b)
}
