package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset or defaulted fields of cfg from
// environment variables. Values that differ from the flag defaults were set
// explicitly and take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, def, envKey string) {
		if !unset(*dst, def) {
			return
		}
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Engine, DefaultEngine, "QUOTEGEN_ENGINE")
	cfg.Engine = strings.ToLower(cfg.Engine)
	setString(&cfg.SourceLang, DefaultSourceLang, "QUOTEGEN_SOURCE_LANG")
	setString(&cfg.TargetLang, DefaultTargetLang, "QUOTEGEN_TARGET_LANG")
	setString(&cfg.LLMBaseURL, "", "LLM_BASE_URL")
	setString(&cfg.LLMModel, "", "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "", "LLM_API_KEY")
	setString(&cfg.GeminiAPIKey, "", "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "", "GEMINI_MODEL")
	setString(&cfg.CacheDir, "", "CACHE_DIR")
	setString(&cfg.UserAgent, DefaultUserAgent, "USER_AGENT")

	if cfg.CacheMaxAge == 0 {
		if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheMaxAge = d
			}
		}
	}
	if cfg.FetchAttempts == 0 || cfg.FetchAttempts == DefaultFetchAttempts {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("FETCH_ATTEMPTS"))); err == nil && n > 0 {
			cfg.FetchAttempts = n
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
