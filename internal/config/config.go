// Package config loads CLI configuration from environment variables.
package config

import (
	"github.com/caarlos0/env/v10"
)

// Config holds the settings the CLI needs to talk to the ledger service.
type Config struct {
	BaseURL   string `env:"STACKCOIN_BASE_URL" envDefault:"https://stackcoin.world"`
	Token     string `env:"STACKCOIN_TOKEN,required,notEmpty"`
	UserAgent string `env:"STACKCOIN_USER_AGENT" envDefault:"stackcoin-cli/1.0"`
	LogLevel  string `env:"STACKCOIN_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"STACKCOIN_LOG_PRETTY" envDefault:"true"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
