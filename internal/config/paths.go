// Package config manages user preferences stored as JSON5/JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "iconfilter"

// xdgDir returns $envVar/iconfilter, or $HOME/fallback/iconfilter when the
// variable is unset.
func xdgDir(envVar, fallback string) (string, error) {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, fallback, appName), nil
}

// Dir returns the config directory, ~/.config/iconfilter by default.
func Dir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

// RulesDir holds compiled rule tables: JSON files or rules.db.
// Defaults to ~/.cache/iconfilter/rules.
func RulesDir() (string, error) {
	dir, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "rules"), nil
}
