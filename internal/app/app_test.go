package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperifyio/quotegen/internal/session"
	"github.com/hyperifyio/quotegen/internal/subject"
)

const wikiPage = `<html><body><div class="mw-parser-output"><ul>
<li>Stay hungry, stay foolish, and never stop learning new things. [4] (2005)
<ul><li>Stanford, 2005</li></ul></li>
<li>Short line</li>
</ul></div></body></html>`

// newWiki serves wikiPage at /wiki/Test, an empty page at /wiki/Empty and
// 503 everywhere else.
func newWiki(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/wiki/Test":
			_, _ = w.Write([]byte(wikiPage))
		case "/wiki/Empty":
			_, _ = w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/m" || r.URL.Query().Get("tl") != "zh-TW" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div class="result-container">求知若飢，虛心若愚。</div></body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(wiki *httptest.Server) Config {
	cfg := DefaultConfig()
	cfg.Subjects = []subject.Subject{
		{Name: "Test Person", URL: wiki.URL + "/wiki/Test"},
		{Name: "Empty Page", URL: wiki.URL + "/wiki/Empty"},
		{Name: "Offline", URL: wiki.URL + "/wiki/Offline"},
	}
	return cfg
}

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
	t.Helper()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out := new(bytes.Buffer)
	a.Out = out
	return a, out
}

func TestRun_Once_PrintsQuoteAndTranslation(t *testing.T) {
	wiki := newWiki(t)
	google := newGoogle(t)
	cfg := testConfig(wiki)
	cfg.GoogleBaseURL = google.URL
	cfg.Once = true
	cfg.SubjectName = "test"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Original Quote",
		"Stay hungry, stay foolish, and never stop learning new things.",
		"Chinese Translation",
		"求知若飢，虛心若愚。",
		"Source: Wikiquote (Test Person) | Translation engine: Google Translate",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Stanford") || strings.Contains(got, "[4]") {
		t.Fatalf("citation leaked into output:\n%s", got)
	}
}

func TestRun_Once_TranslationFailureShowsSentinel(t *testing.T) {
	wiki := newWiki(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer broken.Close()
	cfg := testConfig(wiki)
	cfg.GoogleBaseURL = broken.URL
	cfg.Once = true
	cfg.SubjectName = "Test Person"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), session.TranslationFailed) {
		t.Fatalf("expected failure sentinel:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Stay hungry") {
		t.Fatalf("quotation should still be shown:\n%s", out.String())
	}
}

func TestRun_Once_UnavailableSource(t *testing.T) {
	wiki := newWiki(t)
	cfg := testConfig(wiki)
	cfg.GoogleBaseURL = newGoogle(t).URL
	cfg.Once = true
	cfg.SubjectName = "Offline"

	a, out := newTestApp(t, cfg)
	err := a.Run(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(out.String(), session.Unavailable) {
		t.Fatalf("expected placeholder:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Chinese Translation") {
		t.Fatalf("placeholder must not be translated:\n%s", out.String())
	}
}

func TestRun_Once_NoQuotations(t *testing.T) {
	wiki := newWiki(t)
	cfg := testConfig(wiki)
	cfg.Once = true
	cfg.SubjectName = "Empty Page"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); !errors.Is(err, session.ErrNoQuotations) {
		t.Fatalf("expected ErrNoQuotations, got %v", err)
	}
	if !strings.Contains(out.String(), session.NoQuotations) {
		t.Fatalf("expected status line:\n%s", out.String())
	}
}

func TestRun_Once_UnknownSubject(t *testing.T) {
	wiki := newWiki(t)
	cfg := testConfig(wiki)
	cfg.Once = true
	cfg.SubjectName = "Nobody"

	a, _ := newTestApp(t, cfg)
	if err := a.Run(context.Background()); !errors.Is(err, subject.ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestRun_List(t *testing.T) {
	cfg := DefaultConfig()
	cfg.List = true
	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 subjects, got %d:\n%s", len(lines), out.String())
	}
	if lines[0] != "Steve Jobs (蘋果創辦人)\thttps://en.wikiquote.org/wiki/Steve_Jobs" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestRun_ExportPDF(t *testing.T) {
	wiki := newWiki(t)
	cfg := testConfig(wiki)
	cfg.SubjectName = "Test Person"
	cfg.ExportPDFPath = filepath.Join(t.TempDir(), "quotes.pdf")

	a, _ := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(cfg.ExportPDFPath)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:min(len(b), 16)])
	}

	cfg.SubjectName = "Offline"
	cfg.ExportPDFPath = filepath.Join(t.TempDir(), "offline.pdf")
	a, _ = newTestApp(t, cfg)
	if err := a.Run(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := os.Stat(cfg.ExportPDFPath); !os.IsNotExist(err) {
		t.Fatalf("no pdf should be written for an unavailable source")
	}
}

// The openai engine goes through any OpenAI-compatible server.
func TestRun_Once_OpenAIEngine(t *testing.T) {
	wiki := newWiki(t)
	var sawModel atomic.Value
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "tiny", "object": "model"}}})
		case "/v1/chat/completions":
			var req struct {
				Model string `json:"model"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			sawModel.Store(req.Model)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "求知若飢"}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer llmSrv.Close()

	cfg := testConfig(wiki)
	cfg.Engine = "openai"
	cfg.LLMBaseURL = llmSrv.URL + "/v1"
	cfg.LLMModel = "tiny"
	cfg.Once = true
	cfg.SubjectName = "Test Person"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, _ := sawModel.Load().(string); got != "tiny" {
		t.Fatalf("model=%q", got)
	}
	if !strings.Contains(out.String(), "求知若飢") || !strings.Contains(out.String(), "OpenAI-compatible (tiny)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

// With a cache dir the second process-level run is served from disk.
func TestNew_CacheDirServesRepeatTranslations(t *testing.T) {
	wiki := newWiki(t)
	var calls int32
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<div class="result-container">譯文</div>`)
	}))
	defer google.Close()

	cfg := testConfig(wiki)
	cfg.GoogleBaseURL = google.URL
	cfg.CacheDir = t.TempDir()
	cfg.Once = true
	cfg.SubjectName = "Test Person"

	for i := 0; i < 2; i++ {
		a, out := newTestApp(t, cfg)
		if err := a.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !strings.Contains(out.String(), "譯文") {
			t.Fatalf("run %d output:\n%s", i, out.String())
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one translation request, got %d", got)
	}
}

// A site whose quotations live outside the wiki content div is read through
// the configured selector, and its name shows up in the caption.
func TestRun_Once_CustomSelectorAndDataSource(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body>
<nav><ul><li>Navigation entry that is long enough to look like a quote</li></ul></nav>
<article id="quotes"><ul><li>Simplicity is the ultimate sophistication in every design.</li></ul></article>
</body></html>`)
	}))
	defer site.Close()

	cfg := DefaultConfig()
	cfg.Subjects = []subject.Subject{{Name: "Designer", URL: site.URL + "/people/designer"}}
	cfg.GoogleBaseURL = newGoogle(t).URL
	cfg.ContentSelector = "article#quotes"
	cfg.DataSource = "Example Quotes"
	cfg.Once = true
	cfg.SubjectName = "Designer"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Simplicity is the ultimate sophistication") {
		t.Fatalf("quotation from the selected region missing:\n%s", got)
	}
	if strings.Contains(got, "Navigation entry") {
		t.Fatalf("text outside the selector leaked:\n%s", got)
	}
	if !strings.Contains(got, "Source: Example Quotes (Designer)") {
		t.Fatalf("caption should name the configured source:\n%s", got)
	}
}
