package locale

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default pack source.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Default parses the embedded default pack.
func Default() (*Pack, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default locale pack: %w", err)
	}
	return decode(v)
}

// MustDefault is Default for tests and package initialisation; it panics on a broken embed.
func MustDefault() *Pack {
	p, err := Default()
	if err != nil {
		panic(err)
	}
	return p
}

// Load reads a pack from a YAML, JSON or TOML file.
func Load(path string) (*Pack, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read locale pack %s: %w", common.ErrInvalidConfig, path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Pack, error) {
	var p Pack
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("%w: failed to decode locale pack: %w", common.ErrInvalidConfig, err)
	}

	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
