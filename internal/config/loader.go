package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GAL_CONFIG is set
//  3. env (prefix GAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GAL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GAL_ADDR, GAL_BATCH_WINDOW_SECONDS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("GAL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gal_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BatchWindowSeconds <= 0:
		return fmt.Errorf("%w: batch_window_seconds must be positive", ErrInvalidConfig)
	case c.MaxConcurrentExtractions <= 0:
		return fmt.Errorf("%w: max_concurrent_extractions must be positive", ErrInvalidConfig)
	case c.ExtractionTimeoutSeconds <= 0:
		return fmt.Errorf("%w: extraction_timeout_seconds must be positive", ErrInvalidConfig)
	case c.ExtractionMaxRetries < 0:
		return fmt.Errorf("%w: extraction_max_retries must not be negative", ErrInvalidConfig)
	case c.ClassificationThreshold < 0 || c.ClassificationThreshold > 1:
		return fmt.Errorf("%w: classification_threshold must be in [0,1]", ErrInvalidConfig)
	case c.MatchMinFloor < 0 || c.MatchMinFloor > 1:
		return fmt.Errorf("%w: match_min_floor must be in [0,1]", ErrInvalidConfig)
	case c.MatchTieMarginPercent < 0 || c.MatchTieMarginPercent > 100:
		return fmt.Errorf("%w: match_tie_margin_percent must be in [0,100]", ErrInvalidConfig)
	case c.AutoApproveConfidenceThreshold < 0 || c.AutoApproveConfidenceThreshold > 1:
		return fmt.Errorf("%w: auto_approve_confidence_threshold must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}
