// Package quotes loads quotation candidates for a subject page.
package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/quotegen/internal/cache"
	"github.com/hyperifyio/quotegen/internal/extract"
)

// ErrFetchFailed marks any failure to fetch or parse a source page. The
// underlying cause is wrapped alongside it.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher retrieves a page body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Source fetches a page and extracts candidates from it. Successful results
// are memoized by URL for the lifetime of the Source; failures are not.
type Source struct {
	fetcher   Fetcher
	extractor extract.Extractor
	memo      *cache.Memo[[]string]
}

// NewSource builds a Source. A nil extractor means extract.WikiExtractor{}.
func NewSource(f Fetcher, x extract.Extractor) *Source {
	if x == nil {
		x = extract.WikiExtractor{}
	}
	return &Source{fetcher: f, extractor: x, memo: cache.NewMemo[[]string]()}
}

// Load returns the candidates for url. The returned slice is shared with the
// memo and must not be modified. Any error wraps ErrFetchFailed.
func (s *Source) Load(ctx context.Context, url string) ([]string, error) {
	quotes, hit, err := s.memo.Do(url, func() ([]string, error) {
		return s.load(ctx, url)
	})
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("quotation source unavailable")
		return nil, err
	}
	if hit {
		log.Debug().Str("url", url).Int("quotes", len(quotes)).Msg("quotations served from memo")
	}
	return quotes, nil
}

func (s *Source) load(ctx context.Context, url string) ([]string, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher not configured", ErrFetchFailed)
	}
	body, _, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	quotes, err := s.extractor.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	log.Info().Str("url", url).Int("quotes", len(quotes)).Msg("quotations extracted")
	return quotes, nil
}
