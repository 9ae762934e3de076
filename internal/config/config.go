// Package config provides configuration loading for topicd.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/topicd/internal/embeddings"
	"github.com/fyrsmithlabs/topicd/internal/logging"
	"github.com/fyrsmithlabs/topicd/internal/router"
	"github.com/fyrsmithlabs/topicd/internal/summarizer"
)

// envPrefix namespaces the environment variables that override config.
const envPrefix = "TOPICD_"

// Config is the full topicd configuration.
type Config struct {
	Embedding  embeddings.Config          `koanf:"embedding"`
	Summarizer summarizer.AnthropicConfig `koanf:"summarizer"`
	Router     router.Config              `koanf:"router"`
	Logging    logging.Config             `koanf:"logging"`

	// Projects are directories scanned into folder structures at startup.
	Projects []string `koanf:"projects"`
}

// Load builds configuration from defaults, an optional YAML file, and
// environment variables, in ascending precedence.
//
// Environment variables use the TOPICD_ prefix with underscores mapping
// to section separators on the first underscore:
//
//	TOPICD_EMBEDDING_BASE_URL   -> embedding.base_url
//	TOPICD_ROUTER_QUEUE_SIZE    -> router.queue_size
//	TOPICD_LOGGING_LEVEL        -> logging.level
//
// configPath may be empty, in which case only defaults and environment
// variables apply. A configPath that exists but fails to parse is an
// error; a missing file is not.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		default:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(trimmed, "_", 2)
		if len(parts) == 1 {
			return trimmed
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// defaults returns the configuration used when neither file nor
// environment provides a value.
func defaults() Config {
	return Config{
		Embedding:  embeddings.ConfigFromEnv(),
		Summarizer: summarizer.AnthropicConfig{APIKey: os.Getenv("ANTHROPIC_API_KEY")},
		Router:     router.DefaultConfig(),
		Logging:    logging.DefaultConfig(),
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
