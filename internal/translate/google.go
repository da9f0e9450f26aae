package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
)

const (
	// DefaultGoogleBaseURL serves the lightweight mobile translation page.
	DefaultGoogleBaseURL = "https://translate.google.com"
	// MaxGoogleRunes is the exclusive upper bound on request text length.
	MaxGoogleRunes = 5000
)

// Google translates through the public mobile web page and scrapes the
// result container. No API key is needed.
type Google struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

func (g *Google) Name() string { return "Google Translate" }

func (g *Google) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", failed(EngineGoogle, errors.New("empty text"))
	}
	if utf8.RuneCountInString(text) >= MaxGoogleRunes {
		return "", failed(EngineGoogle, fmt.Errorf("text longer than %d characters", MaxGoogleRunes))
	}
	base := strings.TrimRight(g.BaseURL, "/")
	if base == "" {
		base = DefaultGoogleBaseURL
	}
	q := url.Values{}
	q.Set("sl", source.String())
	q.Set("tl", target.String())
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/m?"+q.Encode(), nil)
	if err != nil {
		return "", failed(EngineGoogle, err)
	}
	ua := g.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0"
	}
	req.Header.Set("User-Agent", ua)

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", failed(EngineGoogle, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", failed(EngineGoogle, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", failed(EngineGoogle, fmt.Errorf("parse response: %w", err))
	}
	out := strings.TrimSpace(doc.Find("div.result-container").First().Text())
	if out == "" {
		return "", failed(EngineGoogle, errors.New("no translation in response"))
	}
	return out, nil
}
