// Package session holds the presenter state behind the interactive surface:
// which subject is selected, which quotation is shown and its translation.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/hyperifyio/quotegen/internal/subject"
	"github.com/hyperifyio/quotegen/internal/translate"
)

// Sentinel display texts.
const (
	Unavailable       = "Data is currently unavailable, please try again later."
	TranslationFailed = "Translation failed, please try again."
	NoQuotations      = "No quotations found for this subject."
	Welcome           = "Choose a subject to load quotations."
)

var (
	// ErrNoSubject is returned by Generate before any Select.
	ErrNoSubject = errors.New("no subject selected")
	// ErrNoQuotations is returned by Generate when the subject has no candidates.
	ErrNoQuotations = errors.New("no quotations")
)

// Loader yields the candidates for a subject page. Errors mean the page could
// not be fetched or parsed.
type Loader interface {
	Load(ctx context.Context, url string) ([]string, error)
}

// State is a snapshot of what the surface displays. Quotation and
// Translation always change together.
type State struct {
	Subject     subject.Subject
	Selected    bool
	Quotation   string
	Translation string
	// Candidates is the number of quotations available for Subject.
	Candidates int
	// Unavailable is set when the subject's page could not be loaded.
	Unavailable bool
}

// Presenter is a two-state machine: nothing selected, or idle for subject S.
// Select(S) is a self-loop; Select(S') resets the display; Generate is a
// self-loop on the current state. Operations are serialized.
type Presenter struct {
	loader     Loader
	translator translate.Translator
	source     language.Tag
	target     language.Tag
	intn       func(n int) int

	mu         sync.Mutex
	state      State
	quotations []string
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLanguages sets the translation pair.
func WithLanguages(source, target language.Tag) Option {
	return func(p *Presenter) {
		p.source = source
		p.target = target
	}
}

// WithRandom replaces the uniform index picker, mainly for tests.
func WithRandom(intn func(n int) int) Option {
	return func(p *Presenter) { p.intn = intn }
}

// New returns a Presenter with nothing selected.
func New(loader Loader, translator translate.Translator, opts ...Option) *Presenter {
	p := &Presenter{
		loader:     loader,
		translator: translator,
		source:     translate.DefaultSource,
		target:     translate.DefaultTarget,
		intn:       rand.IntN,
		state:      State{Quotation: Welcome},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current snapshot.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Quotations returns a copy of the candidates for the selected subject.
func (p *Presenter) Quotations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.quotations...)
}

// Select makes s the current subject. Selecting the current subject again
// changes nothing and reports false. Otherwise the candidates are loaded and
// the display is reset to a status line with an empty translation.
func (p *Presenter) Select(ctx context.Context, s subject.Subject) (State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Selected && p.state.Subject == s {
		return p.state, false
	}

	next := State{Subject: s, Selected: true}
	quotes, err := p.loader.Load(ctx, s.URL)
	if err != nil {
		log.Warn().Err(err).Str("subject", s.Name).Msg("loading quotations failed")
		quotes = []string{Unavailable}
		next.Unavailable = true
	}
	p.quotations = quotes
	next.Candidates = len(quotes)
	next.Quotation = fmt.Sprintf("Loaded %d quotations.", len(quotes))
	p.state = next
	log.Info().Str("subject", s.Name).Int("quotes", len(quotes)).Bool("unavailable", next.Unavailable).Msg("subject selected")
	return p.state, true
}

// Generate shows a uniformly chosen candidate together with its translation.
// A translation failure shows TranslationFailed instead. When the subject's
// page was unavailable the placeholder is shown and no translation is
// attempted.
func (p *Presenter) Generate(ctx context.Context) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.Selected {
		return p.state, ErrNoSubject
	}
	if len(p.quotations) == 0 {
		p.state.Quotation = NoQuotations
		p.state.Translation = ""
		return p.state, ErrNoQuotations
	}

	next := p.state
	next.Quotation = p.quotations[p.intn(len(p.quotations))]
	next.Translation = ""
	if next.Unavailable {
		p.state = next
		return p.state, nil
	}
	out, err := p.translate(ctx, next.Quotation)
	if err != nil {
		log.Warn().Err(err).Str("subject", next.Subject.Name).Msg("translation failed")
		next.Translation = TranslationFailed
	} else {
		next.Translation = out
	}
	p.state = next
	return p.state, nil
}

func (p *Presenter) translate(ctx context.Context, text string) (string, error) {
	if p.translator == nil {
		return "", fmt.Errorf("%w: no translator configured", translate.ErrTranslationFailed)
	}
	return p.translator.Translate(ctx, text, p.source, p.target)
}
