package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	s, err := Load(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
	assert.Equal(t, "/home/tester/.local/share/kharcha/audit.db", s.DatabasePath)
	assert.Equal(t, DefaultServerAddr, s.ServerAddr)
	assert.True(t, s.AuditEnabled)
	assert.False(t, s.LocaleWatch)
	assert.Empty(t, s.LocalePath)
	assert.Empty(t, s.LLM.Provider)
	assert.Equal(t, 15*time.Second, s.LLM.Timeout)
	assert.Equal(t, DefaultRateLimit, s.LLM.RateLimit)
	assert.False(t, s.AIEnabled())
}

func TestLoad_Provider(t *testing.T) {
	tests := []struct {
		env         map[string]string
		values      map[string]any
		name        string
		wantKey     string
		wantEnabled bool
	}{
		{
			name:        "openai key from config",
			values:      map[string]any{"llm.provider": "OpenAI", "llm.openai_api_key": "sk-config"},
			env:         map[string]string{"OPENAI_API_KEY": "sk-env"},
			wantKey:     "sk-config",
			wantEnabled: true,
		},
		{
			name:        "openai key from environment",
			values:      map[string]any{"llm.provider": "openai"},
			env:         map[string]string{"OPENAI_API_KEY": "sk-env"},
			wantKey:     "sk-env",
			wantEnabled: true,
		},
		{
			name:        "anthropic key from environment",
			values:      map[string]any{"llm.provider": "anthropic"},
			env:         map[string]string{"ANTHROPIC_API_KEY": "ant-env"},
			wantKey:     "ant-env",
			wantEnabled: true,
		},
		{
			name:   "provider without key",
			values: map[string]any{"llm.provider": "anthropic"},
			env:    map[string]string{"ANTHROPIC_API_KEY": ""},
		},
		{
			name:   "provider none",
			values: map[string]any{"llm.provider": "none", "llm.openai_api_key": "sk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			s, err := Load(newViper(tt.values))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, s.LLM.APIKey)
			assert.Equal(t, tt.wantEnabled, s.AIEnabled())
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		values map[string]any
		name   string
	}{
		{name: "unknown provider", values: map[string]any{"llm.provider": "bard"}},
		{name: "bad log level", values: map[string]any{"logging.level": "loud"}},
		{name: "temperature out of range", values: map[string]any{"llm.temperature": 3.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(tt.values))
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoad_Durations(t *testing.T) {
	s, err := Load(newViper(map[string]any{
		"llm.timeout":     "3s",
		"llm.retry_delay": "250ms",
		"llm.cache_ttl":   "1h",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, s.LLM.Timeout)
	assert.Equal(t, 250*time.Millisecond, s.LLM.RetryDelay)
	assert.Equal(t, time.Hour, s.LLM.CacheTTL)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("KHARCHA_TEST_DIR", "/srv/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/audit.db", want: filepath.Join(home, "audit.db")},
		{name: "env var", in: "$KHARCHA_TEST_DIR/audit.db", want: "/srv/data/audit.db"},
		{name: "absolute", in: "/var/lib/kharcha.db", want: "/var/lib/kharcha.db"},
		{name: "tilde in middle untouched", in: "/tmp/~/x", want: "/tmp/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
