package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/quotegen/internal/app"
	"github.com/hyperifyio/quotegen/internal/session"
	"github.com/hyperifyio/quotegen/internal/subject"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, showVersion, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if showVersion {
		fmt.Println(app.VersionString())
		return
	}
	if err := loadConfig(&cfg, explicitFlags(flag.CommandLine)); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		log.Error().Err(err).Msg("log setup failed")
		os.Exit(2)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (app.Config, bool, error) {
	cfg := app.DefaultConfig()
	cfg.ConfigPath = os.Getenv("QUOTEGEN_CONFIG")
	var (
		envFiles    = ".env"
		showVersion bool
	)
	bindFlags(fs, &cfg, &envFiles, &showVersion)
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	cfg.EnvFiles = splitList(envFiles)
	return cfg, showVersion, nil
}

// bindFlags registers every flag on fs. The current values of cfg serve as
// flag defaults, so binding never overwrites what cfg already holds.
func bindFlags(fs *flag.FlagSet, cfg *app.Config, envFiles *string, showVersion *bool) {
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to a YAML or JSON config file")
	fs.StringVar(envFiles, "env.file", *envFiles, "Comma-separated dotenv files to load; missing files are skipped")
	fs.StringVar(&cfg.SubjectName, "subject", cfg.SubjectName, "Subject name or unique prefix for -once and -export.pdf")
	fs.BoolVar(&cfg.Once, "once", cfg.Once, "Print one quotation and its translation for -subject, then exit")
	fs.BoolVar(&cfg.List, "list", cfg.List, "List the configured subjects and exit")
	fs.StringVar(&cfg.ExportPDFPath, "export.pdf", cfg.ExportPDFPath, "Write every quotation of -subject to this PDF file")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "Translation engine: google, openai or gemini")
	fs.StringVar(&cfg.SourceLang, "lang.source", cfg.SourceLang, "Language of the quotations (BCP 47)")
	fs.StringVar(&cfg.TargetLang, "lang.target", cfg.TargetLang, "Translation target language (BCP 47)")
	fs.StringVar(&cfg.GoogleBaseURL, "google.base", cfg.GoogleBaseURL, "Override the web translation endpoint")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", cfg.LLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", cfg.LLMModel, "Model name for the openai engine")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", cfg.LLMAPIKey, "API key for the OpenAI-compatible server")
	fs.StringVar(&cfg.GeminiModel, "gemini.model", cfg.GeminiModel, "Model name for the gemini engine")
	fs.StringVar(&cfg.GeminiAPIKey, "gemini.key", cfg.GeminiAPIKey, "API key for the gemini engine")
	fs.StringVar(&cfg.UserAgent, "fetch.ua", cfg.UserAgent, "User-Agent for page and translation requests")
	fs.DurationVar(&cfg.FetchTimeout, "fetch.timeout", cfg.FetchTimeout, "Per-request timeout; 0 disables")
	fs.IntVar(&cfg.FetchAttempts, "fetch.attempts", cfg.FetchAttempts, "Attempts per page fetch, retrying only transient errors")
	fs.IntVar(&cfg.FetchMaxRedirects, "fetch.maxRedirects", cfg.FetchMaxRedirects, "Maximum redirects followed per page fetch")
	fs.StringVar(&cfg.ContentSelector, "fetch.selector", cfg.ContentSelector, "CSS selector of the page region holding quotations")
	fs.StringVar(&cfg.DataSource, "source.name", cfg.DataSource, "Name of the quotation site shown in the caption")
	fs.DurationVar(&cfg.ActionTimeout, "action.timeout", cfg.ActionTimeout, "Upper bound for one select or generate in the terminal UI")
	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "Persist pages and translations in this directory (disabled when empty)")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Purge cache entries older than this at startup; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear the cache directory and bypass cached pages")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&cfg.LogFile, "log.file", cfg.LogFile, "Write logs to this file; the terminal UI otherwise runs without logs")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.BoolVar(showVersion, "version", *showVersion, "Print version and exit")
}

// explicitFlags records the flags given on the command line with their values.
func explicitFlags(fs *flag.FlagSet) map[string]string {
	set := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = f.Value.String()
	})
	return set
}

// loadConfig layers dotenv files, environment and the config file under
// the parsed flags, then validates the result. Flags in explicit win even
// when their value equals the default.
func loadConfig(cfg *app.Config, explicit map[string]string) error {
	if err := app.LoadEnvFiles(cfg.EnvFiles...); err != nil {
		return err
	}
	app.ApplyEnvToConfig(cfg)
	if strings.TrimSpace(cfg.ConfigPath) != "" {
		fc, err := app.LoadConfigFile(cfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(cfg, fc)
	}
	if err := reapplyFlags(cfg, explicit); err != nil {
		return err
	}
	return app.ValidateConfig(*cfg)
}

func reapplyFlags(cfg *app.Config, explicit map[string]string) error {
	if len(explicit) == 0 {
		return nil
	}
	envFiles := strings.Join(cfg.EnvFiles, ",")
	var showVersion bool
	fs := flag.NewFlagSet("quotegen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bindFlags(fs, cfg, &envFiles, &showVersion)
	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("flag -%s: %w", name, err)
		}
	}
	return nil
}

// setupLogging keeps console logs for the print modes. The terminal UI owns
// the screen, so logs go to -log.file or nowhere.
func setupLogging(cfg app.Config) (func(), error) {
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return func() {}, err
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true})
		return func() { _ = f.Close() }, nil
	}
	if cfg.Interactive() {
		log.Logger = zerolog.New(io.Discard)
	}
	return func() {}, nil
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

// exitCode maps run errors to the exit code policy: 2 when there was
// nothing to show, 1 for everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, app.ErrUnavailable), errors.Is(err, session.ErrNoQuotations), errors.Is(err, subject.ErrUnknown):
		return 2
	default:
		return 1
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
