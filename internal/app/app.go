package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/quotegen/internal/cache"
	"github.com/hyperifyio/quotegen/internal/extract"
	"github.com/hyperifyio/quotegen/internal/fetch"
	"github.com/hyperifyio/quotegen/internal/llm"
	"github.com/hyperifyio/quotegen/internal/quotes"
	"github.com/hyperifyio/quotegen/internal/session"
	"github.com/hyperifyio/quotegen/internal/subject"
	"github.com/hyperifyio/quotegen/internal/translate"
	"github.com/hyperifyio/quotegen/internal/tui"
)

// ErrUnavailable is returned by the non-interactive modes when the subject's
// page could not be loaded. The CLI maps it to a nonzero exit.
var ErrUnavailable = errors.New("quotation source unavailable")

type App struct {
	cfg        Config
	subjects   subject.Table
	translator translate.Translator
	presenter  *session.Presenter

	// Out receives the output of the non-interactive modes.
	Out io.Writer
}

// New wires the fetch, extraction, translation and presentation layers
// described by cfg. cfg must already be validated.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.DataSource == "" {
		cfg.DataSource = DefaultDataSource
	}
	subjects := subject.Default()
	if len(cfg.Subjects) > 0 {
		t, err := subject.NewTable(cfg.Subjects)
		if err != nil {
			return nil, err
		}
		subjects = t
	}
	src, err := translate.ParseTag(cfg.SourceLang)
	if err != nil {
		return nil, err
	}
	dst, err := translate.ParseTag(cfg.TargetLang)
	if err != nil {
		return nil, err
	}

	httpClient := newHTTPClient(cfg.FetchTimeout)
	fc := &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   cfg.FetchMaxRedirects,
		BypassCache:       cfg.CacheClear, // bypass when user forces clear
	}

	var trCache *cache.TranslationCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge failures must not block startup.
			_, _ = cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
			_, _ = cache.PurgeTranslationCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		fc.Cache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		trCache = &cache.TranslationCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	tr, err := newTranslator(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	if trCache != nil {
		tr = &translate.Cached{Inner: tr, Engine: cfg.Engine, Cache: trCache}
	}

	source := quotes.NewSource(fc, extract.WikiExtractor{Selector: cfg.ContentSelector})
	a := &App{
		cfg:        cfg,
		subjects:   subjects,
		translator: tr,
		presenter:  session.New(source, tr, session.WithLanguages(src, dst)),
		Out:        os.Stdout,
	}
	log.Debug().
		Str("engine", translate.EngineName(tr)).
		Str("selector", cfg.ContentSelector).
		Str("source", src.String()).
		Str("target", dst.String()).
		Int("subjects", subjects.Len()).
		Msg("app ready")
	return a, nil
}

func newTranslator(ctx context.Context, cfg Config, httpClient *http.Client) (translate.Translator, error) {
	switch cfg.Engine {
	case translate.EngineOpenAI:
		client := llm.New(cfg.LLMAPIKey, cfg.LLMBaseURL, httpClient)
		preflight(ctx, client)
		return &translate.LLM{Client: client, Model: cfg.LLMModel}, nil
	case translate.EngineGemini:
		g, err := translate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case translate.EngineGoogle, "":
		return &translate.Google{HTTPClient: httpClient, BaseURL: cfg.GoogleBaseURL, UserAgent: cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown translation engine %q", cfg.Engine)
	}
}

// preflight lists models as a best-effort connectivity check. It never
// fails: translation errors surface per request as the failure sentinel.
func preflight(ctx context.Context, lister llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

// Run executes the mode selected in the configuration.
func (a *App) Run(ctx context.Context) error {
	switch {
	case a.cfg.List:
		return a.list()
	case a.cfg.ExportPDFPath != "":
		return a.exportPDF(ctx)
	case a.cfg.Once:
		return a.once(ctx)
	default:
		return a.interactive(ctx)
	}
}

func (a *App) interactive(ctx context.Context) error {
	m := tui.New(tui.Config{
		Subjects:   a.subjects,
		Presenter:  a.presenter,
		Engine:     translate.EngineName(a.translator),
		DataSource: a.cfg.DataSource,
		Timeout:    a.cfg.ActionTimeout,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func (a *App) list() error {
	for _, s := range a.subjects.All() {
		if _, err := fmt.Fprintf(a.Out, "%s\t%s\n", s.Name, s.URL); err != nil {
			return err
		}
	}
	return nil
}

// once selects the named subject, generates one quotation and prints both
// regions the way the interactive surface shows them.
func (a *App) once(ctx context.Context) error {
	s, err := a.subjects.Lookup(a.cfg.SubjectName)
	if err != nil {
		return err
	}
	a.presenter.Select(ctx, s)
	state, err := a.presenter.Generate(ctx)
	if errors.Is(err, session.ErrNoQuotations) {
		fmt.Fprintln(a.Out, session.NoQuotations)
		return err
	}
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original Quote\n\n  %s\n", state.Quotation)
	if state.Translation != "" {
		fmt.Fprintf(&b, "\nChinese Translation\n\n  %s\n", state.Translation)
	}
	fmt.Fprintf(&b, "\n%s\n", a.caption(s))
	if _, err := io.WriteString(a.Out, b.String()); err != nil {
		return err
	}
	if state.Unavailable {
		return ErrUnavailable
	}
	return nil
}

func (a *App) exportPDF(ctx context.Context) error {
	s, err := a.subjects.Lookup(a.cfg.SubjectName)
	if err != nil {
		return err
	}
	state, _ := a.presenter.Select(ctx, s)
	if state.Unavailable {
		return fmt.Errorf("%w: %s", ErrUnavailable, s.URL)
	}
	list := a.presenter.Quotations()
	if len(list) == 0 {
		return session.ErrNoQuotations
	}
	if err := writeQuotesPDF(a.cfg.ExportPDFPath, s, list); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	log.Info().Str("path", a.cfg.ExportPDFPath).Int("quotes", len(list)).Msg("pdf written")
	return nil
}

func (a *App) caption(s subject.Subject) string {
	return fmt.Sprintf("Source: %s (%s) | Translation engine: %s", a.cfg.DataSource, s.Name, translate.EngineName(a.translator))
}
