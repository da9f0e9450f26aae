package app

import (
	"time"

	"github.com/hyperifyio/quotegen/internal/extract"
	"github.com/hyperifyio/quotegen/internal/fetch"
	"github.com/hyperifyio/quotegen/internal/subject"
	"github.com/hyperifyio/quotegen/internal/translate"
)

// Defaults used by flag parsing. File and env layers only replace a field
// that still holds its default.
const (
	DefaultEngine        = translate.EngineGoogle
	DefaultSourceLang    = "en"
	DefaultTargetLang    = "zh-TW"
	DefaultUserAgent     = fetch.DefaultUserAgent
	DefaultFetchTimeout  = 30 * time.Second
	DefaultFetchAttempts = 1
	DefaultActionTimeout = 60 * time.Second
	DefaultMaxRedirects  = 5
	DefaultSelector      = extract.ContentSelector
	DefaultDataSource    = "Wikiquote"
)

// Config holds runtime settings.
type Config struct {
	ConfigPath string
	EnvFiles   []string

	// Subjects replaces the built-in table when non-empty.
	Subjects []subject.Subject

	// Run modes. With none set the interactive surface is started.
	SubjectName   string
	Once          bool
	List          bool
	ExportPDFPath string

	Engine        string
	SourceLang    string
	TargetLang    string
	GoogleBaseURL string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	GeminiAPIKey string
	GeminiModel  string

	UserAgent         string
	FetchTimeout      time.Duration
	FetchAttempts     int
	FetchMaxRedirects int
	// ContentSelector picks the region of a subject page holding quotations.
	ContentSelector string
	// DataSource names the quotation site in the caption line.
	DataSource string
	// ActionTimeout bounds one select or generate in interactive mode.
	ActionTimeout time.Duration

	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	LogFile string
	Verbose bool
}

// DefaultConfig returns the settings of a bare run.
func DefaultConfig() Config {
	return Config{
		Engine:            DefaultEngine,
		SourceLang:        DefaultSourceLang,
		TargetLang:        DefaultTargetLang,
		UserAgent:         DefaultUserAgent,
		FetchTimeout:      DefaultFetchTimeout,
		FetchAttempts:     DefaultFetchAttempts,
		FetchMaxRedirects: DefaultMaxRedirects,
		ContentSelector:   DefaultSelector,
		DataSource:        DefaultDataSource,
		ActionTimeout:     DefaultActionTimeout,
	}
}

// Interactive reports whether cfg starts the terminal UI.
func (c Config) Interactive() bool {
	return !c.Once && !c.List && c.ExportPDFPath == ""
}

func unset(s, def string) bool { return s == "" || s == def }
