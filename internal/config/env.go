package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the keys that may be set from the environment.
// Values go through Set, so they are validated like the config command.
type envOverrides struct {
	Formats       string `env:"ICONFILTER_FORMATS"`
	DefaultFormat string `env:"ICONFILTER_DEFAULT_FORMAT"`
	Language      string `env:"ICONFILTER_LANGUAGE"`
	BaseURL       string `env:"ICONFILTER_BASE_URL"`
	SiteURL       string `env:"ICONFILTER_SITE_URL"`
	CacheTTL      string `env:"ICONFILTER_CACHE_TTL"`
	RuleStore     string `env:"ICONFILTER_RULE_STORE"`
}

// ApplyEnv overlays ICONFILTER_* environment variables on cfg. The file on
// disk is not touched.
func ApplyEnv(cfg *Config) error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	for _, kv := range []struct{ key, val string }{
		{"formats", raw.Formats},
		{"default_format", raw.DefaultFormat},
		{"language", raw.Language},
		{"base_url", raw.BaseURL},
		{"site_url", raw.SiteURL},
		{"cache_ttl", raw.CacheTTL},
		{"rule_store", raw.RuleStore},
	} {
		if kv.val == "" {
			continue
		}

		if err := cfg.Set(kv.key, kv.val); err != nil {
			return fmt.Errorf("ICONFILTER_%s: %w", strings.ToUpper(kv.key), err)
		}
	}

	return nil
}
