package localization

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// AliasDir is the directory name that stands in for the default language
// when no directory named after it exists.
const AliasDir = "default"

// Config selects the localization root and the default language.
type Config struct {
	Dir             string `env:"TRANSLATION_DIR" envDefault:"localizations"`
	DefaultLanguage string `env:"DEFAULT_LANG" envDefault:"en_US"`
}

// ConfigFromEnv reads Config from TRANSLATION_DIR and DEFAULT_LANG.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing localization environment: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads a holder described by cfg.
func LoadConfig(cfg Config, opts ...Option) (*Holder, error) {
	return Load(cfg.Dir, cfg.DefaultLanguage, opts...)
}

// LoadFromEnv loads a holder configured by the environment.
func LoadFromEnv(opts ...Option) (*Holder, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return LoadConfig(cfg, opts...)
}
