package translate

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/hyperifyio/quotegen/internal/cache"
)

// Cached serves repeated translations from an on-disk cache and stores
// successful results from Inner. Failures are never cached.
type Cached struct {
	Inner  Translator
	Engine string
	Cache  *cache.TranslationCache
}

func (c *Cached) Name() string { return EngineName(c.Inner) }

func (c *Cached) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	if c.Cache == nil {
		return c.Inner.Translate(ctx, text, source, target)
	}
	key := cache.TranslationKey(c.Engine, source.String(), target.String(), text)
	if out, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
		log.Debug().Str("engine", c.Engine).Msg("translation served from cache")
		return out, nil
	}
	out, err := c.Inner.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if err := c.Cache.Save(ctx, key, cache.TranslationEntry{
		Engine:      c.Engine,
		Source:      source.String(),
		Target:      target.String(),
		Text:        text,
		Translation: out,
	}); err != nil {
		log.Debug().Err(err).Msg("translation cache save failed")
	}
	return out, nil
}
