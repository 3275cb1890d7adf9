package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedene/iconfilter-cli/internal/config"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("ICONFILTER_LANGUAGE", "de-CH")
	t.Setenv("ICONFILTER_RULE_STORE", "sqlite")
	t.Setenv("ICONFILTER_SITE_URL", "https://moodle.example.edu/")

	cfg := &config.Config{Language: "es", DefaultFormat: "moodle"}
	require.NoError(t, config.ApplyEnv(cfg))

	assert.Equal(t, "de-CH", cfg.Language)
	assert.Equal(t, "sqlite", cfg.RuleStore)
	assert.Equal(t, "https://moodle.example.edu", cfg.SiteURL)
	assert.Equal(t, "moodle", cfg.DefaultFormat, "unset variables keep file values")
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("ICONFILTER_CACHE_TTL", "forever")

	err := config.ApplyEnv(&config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ICONFILTER_CACHE_TTL")
	assert.Contains(t, err.Error(), "invalid duration")
}
