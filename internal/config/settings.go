// Package config turns viper configuration into typed application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/llm"
	"github.com/spf13/viper"
)

// Defaults for settings that have one.
const (
	DefaultDatabasePath = "$HOME/.local/share/kharcha/audit.db"
	DefaultServerAddr   = "127.0.0.1:8080"
	DefaultLLMTimeout   = llm.DefaultTimeout
	DefaultCacheTTL     = 15 * time.Minute
	DefaultRateLimit    = 60
)

// Settings is the typed view of the application configuration.
type Settings struct {
	LogLevel     string
	LogFormat    string
	LocalePath   string
	DatabasePath string
	ServerAddr   string
	LLM          llm.Config
	LocaleWatch  bool
	AuditEnabled bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", DefaultLLMTimeout)
	v.SetDefault("llm.cache_ttl", DefaultCacheTTL)
	v.SetDefault("llm.rate_limit", DefaultRateLimit)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 500*time.Millisecond)
	v.SetDefault("locale.watch", false)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("audit.enabled", true)
	v.SetDefault("server.addr", DefaultServerAddr)
}

// Load reads Settings from v. API keys fall back to the provider's usual
// environment variable when not configured.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		LocalePath:   ExpandPath(v.GetString("locale.path")),
		LocaleWatch:  v.GetBool("locale.watch"),
		DatabasePath: ExpandPath(v.GetString("database.path")),
		AuditEnabled: v.GetBool("audit.enabled"),
		ServerAddr:   v.GetString("server.addr"),
		LLM: llm.Config{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
			CacheTTL:    v.GetDuration("llm.cache_ttl"),
			CacheSize:   v.GetInt("llm.cache_size"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
		},
	}

	switch s.LLM.Provider {
	case "openai":
		s.LLM.APIKey = firstNonEmpty(v.GetString("llm.openai_api_key"), os.Getenv("OPENAI_API_KEY"))
	case "anthropic":
		s.LLM.APIKey = firstNonEmpty(v.GetString("llm.anthropic_api_key"), os.Getenv("ANTHROPIC_API_KEY"))
	case "", "none":
		s.LLM.Provider = ""
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, s.LLM.Provider)
	}

	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return nil, err
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return nil, fmt.Errorf("%w: llm.temperature must be between 0 and 2", common.ErrInvalidConfig)
	}

	return s, nil
}

// AIEnabled reports whether a provider is selected and has credentials.
func (s *Settings) AIEnabled() bool {
	return s.LLM.Provider != "" && s.LLM.APIKey != ""
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
