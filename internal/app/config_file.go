package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/quotegen/internal/subject"
	"github.com/hyperifyio/quotegen/internal/translate"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Subjects []subject.Subject `yaml:"subjects" json:"subjects"`

	Translate struct {
		Engine  string `yaml:"engine" json:"engine"`
		Source  string `yaml:"source" json:"source"`
		Target  string `yaml:"target" json:"target"`
		Model   string `yaml:"model" json:"model"`
		BaseURL string `yaml:"baseURL" json:"baseURL"`
		Key     string `yaml:"key" json:"key"`
	} `yaml:"translate" json:"translate"`

	// DataSource names the site the subject URLs point at.
	DataSource string `yaml:"dataSource" json:"dataSource"`

	Fetch struct {
		UserAgent    string        `yaml:"userAgent" json:"userAgent"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		Attempts     int           `yaml:"attempts" json:"attempts"`
		MaxRedirects int           `yaml:"maxRedirects" json:"maxRedirects"`
		Selector     string        `yaml:"selector" json:"selector"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Log struct {
		File    string `yaml:"file" json:"file"`
		Verbose bool   `yaml:"verbose" json:"verbose"`
	} `yaml:"log" json:"log"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset or at their flag default. The model and key go to whichever
// engine is selected.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if len(cfg.Subjects) == 0 && len(fc.Subjects) > 0 {
		cfg.Subjects = append([]subject.Subject{}, fc.Subjects...)
	}

	t := fc.Translate
	if unset(cfg.Engine, DefaultEngine) && t.Engine != "" {
		cfg.Engine = strings.ToLower(t.Engine)
	}
	if unset(cfg.SourceLang, DefaultSourceLang) && t.Source != "" {
		cfg.SourceLang = t.Source
	}
	if unset(cfg.TargetLang, DefaultTargetLang) && t.Target != "" {
		cfg.TargetLang = t.Target
	}
	switch cfg.Engine {
	case translate.EngineGemini:
		if cfg.GeminiModel == "" && t.Model != "" {
			cfg.GeminiModel = t.Model
		}
		if cfg.GeminiAPIKey == "" && t.Key != "" {
			cfg.GeminiAPIKey = t.Key
		}
	case translate.EngineOpenAI:
		if cfg.LLMModel == "" && t.Model != "" {
			cfg.LLMModel = t.Model
		}
		if cfg.LLMAPIKey == "" && t.Key != "" {
			cfg.LLMAPIKey = t.Key
		}
		if cfg.LLMBaseURL == "" && t.BaseURL != "" {
			cfg.LLMBaseURL = t.BaseURL
		}
	default:
		if cfg.GoogleBaseURL == "" && t.BaseURL != "" {
			cfg.GoogleBaseURL = t.BaseURL
		}
	}

	if unset(cfg.UserAgent, DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.FetchTimeout == 0 || cfg.FetchTimeout == DefaultFetchTimeout) && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if (cfg.FetchAttempts == 0 || cfg.FetchAttempts == DefaultFetchAttempts) && fc.Fetch.Attempts > 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if (cfg.FetchMaxRedirects == 0 || cfg.FetchMaxRedirects == DefaultMaxRedirects) && fc.Fetch.MaxRedirects > 0 {
		cfg.FetchMaxRedirects = fc.Fetch.MaxRedirects
	}
	if unset(cfg.ContentSelector, DefaultSelector) && fc.Fetch.Selector != "" {
		cfg.ContentSelector = fc.Fetch.Selector
	}
	if unset(cfg.DataSource, DefaultDataSource) && fc.DataSource != "" {
		cfg.DataSource = fc.DataSource
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if cfg.LogFile == "" && fc.Log.File != "" {
		cfg.LogFile = fc.Log.File
	}
	if !cfg.Verbose && fc.Log.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig checks the settings that would otherwise fail late, in the
// middle of an interactive session.
func ValidateConfig(cfg Config) error {
	if !slices.Contains(translate.Engines, cfg.Engine) {
		return fmt.Errorf("config: unknown translation engine %q (want one of %s)", cfg.Engine, strings.Join(translate.Engines, ", "))
	}
	if _, err := translate.ParseTag(cfg.SourceLang); err != nil {
		return fmt.Errorf("config: source language: %w", err)
	}
	if _, err := translate.ParseTag(cfg.TargetLang); err != nil {
		return fmt.Errorf("config: target language: %w", err)
	}
	switch cfg.Engine {
	case translate.EngineOpenAI:
		if strings.TrimSpace(cfg.LLMModel) == "" {
			return errors.New("config: llm.model is required for the openai engine (or set LLM_MODEL)")
		}
	case translate.EngineGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return errors.New("config: gemini.key is required for the gemini engine (or set GEMINI_API_KEY)")
		}
	}
	if len(cfg.Subjects) > 0 {
		if _, err := subject.NewTable(cfg.Subjects); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if cfg.FetchAttempts < 0 || cfg.FetchTimeout < 0 || cfg.FetchMaxRedirects < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if (cfg.Once || cfg.ExportPDFPath != "") && strings.TrimSpace(cfg.SubjectName) == "" {
		return errors.New("config: -subject is required with -once and -export.pdf")
	}
	return nil
}
