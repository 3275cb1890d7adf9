// Package cache persists compiled rule tables with TTL support. Tables live
// in JSON files, a SQLite database or Redis.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dedene/iconfilter-cli/internal/phrases"
)

// RuleFile is the on-disk representation of one compiled rule table.
type RuleFile struct {
	Key        string         `json:"key"`
	Rules      []phrases.Rule `json:"rules"`
	CompiledAt time.Time      `json:"compiled_at"`
}

// RuleCache stores rule tables as one JSON file per key under Dir.
type RuleCache struct {
	Dir string
	TTL time.Duration
}

// Path returns the file used for key.
func (c RuleCache) Path(key string) string {
	return filepath.Join(c.Dir, fileName(key)+".json")
}

// Load returns the cached rules for key if fresh.
// Returns (nil, nil) when: file missing, JSON corrupt, key mismatch or TTL expired.
// Only returns a non-nil error for unexpected read failures.
func (c RuleCache) Load(key string) ([]phrases.Rule, error) {
	data, err := os.ReadFile(c.Path(key)) //nolint:gosec // path is internal cache, not untrusted input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading rule cache: %w", err)
	}

	return decode(data, key, c.TTL), nil
}

// Save writes rules for key atomically.
func (c RuleCache) Save(key string, rules []phrases.Rule) error {
	data, err := encode(key, rules)
	if err != nil {
		return err
	}

	return atomicWrite(c.Path(key), data)
}

// Clear removes every cached rule file.
func (c RuleCache) Clear() error {
	paths, err := filepath.Glob(filepath.Join(c.Dir, "*.json"))
	if err != nil {
		return fmt.Errorf("listing rule cache: %w", err)
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}

	return nil
}

// Close implements Store. Files need no closing.
func (c RuleCache) Close() error { return nil }

// Location implements Store.
func (c RuleCache) Location() string { return c.Dir }

// fileName maps a key to a safe file name.
func fileName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)

	if name == "" || strings.Trim(name, ".") == "" {
		return "_"
	}

	return name
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpPath = ""

	return nil
}
