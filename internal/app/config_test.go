package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/quotegen/internal/subject"
)

const sampleYAML = `
subjects:
  - name: Ada Lovelace
    url: https://en.wikiquote.org/wiki/Ada_Lovelace
  - name: Alan Turing
    url: https://en.wikiquote.org/wiki/Alan_Turing
translate:
  engine: openai
  target: ja
  model: local-model
  baseURL: http://localhost:8081/v1
fetch:
  userAgent: quotegen-test
  timeout: 5s
  attempts: 3
  maxRedirects: 2
  selector: article#quotes
dataSource: Example Quotes
cache:
  dir: .quotegen-cache
  maxAge: 24h
log:
  verbose: true
`

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotegen.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)

	wantSubjects := []subject.Subject{
		{Name: "Ada Lovelace", URL: "https://en.wikiquote.org/wiki/Ada_Lovelace"},
		{Name: "Alan Turing", URL: "https://en.wikiquote.org/wiki/Alan_Turing"},
	}
	if diff := cmp.Diff(wantSubjects, cfg.Subjects); diff != "" {
		t.Fatalf("subjects mismatch (-want +got):\n%s", diff)
	}
	if cfg.Engine != "openai" || cfg.LLMModel != "local-model" || cfg.LLMBaseURL != "http://localhost:8081/v1" {
		t.Fatalf("translate section not applied: %+v", cfg)
	}
	if cfg.TargetLang != "ja" || cfg.SourceLang != DefaultSourceLang {
		t.Fatalf("languages=%q->%q", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.UserAgent != "quotegen-test" || cfg.FetchTimeout != 5*time.Second || cfg.FetchAttempts != 3 {
		t.Fatalf("fetch section not applied: %+v", cfg)
	}
	if cfg.FetchMaxRedirects != 2 || cfg.ContentSelector != "article#quotes" || cfg.DataSource != "Example Quotes" {
		t.Fatalf("redirects=%d selector=%q source=%q", cfg.FetchMaxRedirects, cfg.ContentSelector, cfg.DataSource)
	}
	if cfg.CacheDir != ".quotegen-cache" || cfg.CacheMaxAge != 24*time.Hour || !cfg.Verbose {
		t.Fatalf("cache/log section not applied: %+v", cfg)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotegen.json")
	body := `{"subjects":[{"name":"Ada","url":"https://en.wikiquote.org/wiki/Ada_Lovelace"}],"translate":{"engine":"gemini","key":"k"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	if cfg.Engine != "gemini" || cfg.GeminiAPIKey != "k" || len(cfg.Subjects) != 1 {
		t.Fatalf("json not applied: %+v", cfg)
	}
}

// Flags beat env, env beats the file.
func TestConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotegen.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("QUOTEGEN_TARGET_LANG", "")
	t.Setenv("USER_AGENT", "")

	cfg := DefaultConfig()
	cfg.FetchAttempts = 2 // as if passed on the command line
	ApplyEnvToConfig(&cfg)
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ApplyFileConfig(&cfg, fc)

	if cfg.LLMModel != "env-model" {
		t.Fatalf("env should win over file, got %q", cfg.LLMModel)
	}
	if cfg.FetchAttempts != 2 {
		t.Fatalf("flag should win over file, got %d", cfg.FetchAttempts)
	}
	if cfg.TargetLang != "ja" {
		t.Fatalf("file should fill unset values, got %q", cfg.TargetLang)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown engine", func(c *Config) { c.Engine = "babelfish" }, "unknown translation engine"},
		{"bad target", func(c *Config) { c.TargetLang = "not a tag!" }, "target language"},
		{"openai without model", func(c *Config) { c.Engine = "openai" }, "llm.model"},
		{"gemini without key", func(c *Config) { c.Engine = "gemini" }, "gemini.key"},
		{"bad subject", func(c *Config) { c.Subjects = []subject.Subject{{Name: "X", URL: "ftp://x"}} }, "config:"},
		{"negative attempts", func(c *Config) { c.FetchAttempts = -1 }, "negative"},
		{"once without subject", func(c *Config) { c.Once = true }, "-subject"},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v, want error containing %q", tc.name, err, tc.want)
		}
	}
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
