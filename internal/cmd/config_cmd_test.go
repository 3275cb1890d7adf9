package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
)

// loadedCtx loads the config written under dir, as Execute would.
func loadedCtx(t *testing.T, dir string, jsonMode bool) context.Context {
	t.Helper()

	cfg, err := config.Load(filepath.Join(dir, "iconfilter", "config.json"))
	require.NoError(t, err)

	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, outfmt.Mode{JSON: jsonMode})
	ctx = config.WithConfig(ctx, cfg)

	return ctx
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := &ConfigPathCmd{}
	output := captureStdout(t, func() {
		require.NoError(t, cmd.Run(context.Background()))
	})

	assert.Contains(t, output, "iconfilter")
	assert.Contains(t, output, "config.json")
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	setCmd := &ConfigSetCmd{Key: "language", Value: "de-AT"}
	require.NoError(t, setCmd.Run(context.Background()))

	getCmd := &ConfigGetCmd{Key: "language"}
	output := captureStdout(t, func() {
		require.NoError(t, getCmd.Run(loadedCtx(t, dir, false)))
	})

	assert.Equal(t, "de-AT\n", output)
}

func TestConfigList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, (&ConfigSetCmd{Key: "default_format", Value: "moodle"}).Run(context.Background()))
	require.NoError(t, (&ConfigAliasCmd{Token: "grin", Icon: "bigsmile"}).Run(context.Background()))

	listCmd := &ConfigListCmd{}
	output := captureStdout(t, func() {
		require.NoError(t, listCmd.Run(loadedCtx(t, dir, false)))
	})

	assert.Contains(t, output, "default_format = moodle")
	assert.Contains(t, output, "sanitize = (unset)")
	assert.Contains(t, output, "alias (grin) = bigsmile")
}

func TestConfigUnset(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, (&ConfigSetCmd{Key: "sanitize", Value: "true"}).Run(context.Background()))
	require.NoError(t, (&ConfigUnsetCmd{Key: "sanitize"}).Run(context.Background()))

	getCmd := &ConfigGetCmd{Key: "sanitize"}
	output := captureStdout(t, func() {
		require.NoError(t, getCmd.Run(loadedCtx(t, dir, false)))
	})

	assert.Equal(t, "(unset)\n", output)
}

func TestConfigSetInvalidKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := (&ConfigSetCmd{Key: "invalid_key", Value: "foo"}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestConfigSetInvalidValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := (&ConfigSetCmd{Key: "site_url", Value: "moodle.example.edu"}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute http(s) URL")
}

func TestConfigListJSON(t *testing.T) {
	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, outfmt.Mode{JSON: true})
	ctx = config.WithConfig(ctx, &config.Config{DefaultFormat: "markdown"})

	output := captureStdout(t, func() {
		require.NoError(t, (&ConfigListCmd{}).Run(ctx))
	})

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
	assert.Equal(t, "markdown", parsed["default_format"])
}

func TestConfigGetWithoutConfig(t *testing.T) {
	output := captureStdout(t, func() {
		require.NoError(t, (&ConfigGetCmd{Key: "class"}).Run(context.Background()))
	})

	assert.Equal(t, "(unset)\n", output)
}

func TestConfigUnsetInvalidKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := (&ConfigUnsetCmd{Key: "nope"}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestConfigFileCreated(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, (&ConfigSetCmd{Key: "class", Value: "icon"}).Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "iconfilter", "config.json"))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "icon", parsed["class"])
}

func TestConfigAlias(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, (&ConfigAliasCmd{Token: "grin", Icon: "bigsmile"}).Run(context.Background()))
	assert.Equal(t, map[string]string{"grin": "bigsmile"}, config.FromContext(loadedCtx(t, dir, false)).Aliases)

	require.NoError(t, (&ConfigAliasCmd{Token: "grin"}).Run(context.Background()))
	assert.Empty(t, config.FromContext(loadedCtx(t, dir, false)).Aliases)
}

func TestConfigAliasErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name  string
		cmd   ConfigAliasCmd
		errRe string
	}{
		{"unknown icon", ConfigAliasCmd{Token: "grin", Icon: "nosuchicon"}, "unknown icon"},
		{"bad token", ConfigAliasCmd{Token: "(grin)", Icon: "smile"}, "parentheses"},
		{"remove missing", ConfigAliasCmd{Token: "grin"}, `no alias "grin"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errRe)
		})
	}
}
