package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dedene/iconfilter-cli/internal/phrases"
)

// Backend names accepted by Open. Redis stores are named by URL.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Store is a rule table backend. Load returns (nil, nil) on a miss.
type Store interface {
	Load(key string) ([]phrases.Rule, error)
	Save(key string, rules []phrases.Rule) error
	Clear() error
	Close() error
	Location() string
}

// Open returns the backend for name (a Backend* constant or a redis URL).
// File and SQLite data live under dir.
// BackendNone returns a nil Store.
func Open(name, dir string, ttl time.Duration) (Store, error) {
	switch {
	case name == "" || name == BackendFile:
		return RuleCache{Dir: dir, TTL: ttl}, nil
	case name == BackendSQLite:
		s, err := OpenSQLite(filepath.Join(dir, "rules.db"), ttl)
		if err != nil {
			return nil, err
		}

		return s, nil
	case IsRedisURL(name):
		s, err := OpenRedis(name, ttl)
		if err != nil {
			return nil, err
		}

		return s, nil
	case name == BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown rule store %q (use file, sqlite, none or a redis:// URL)", name)
	}
}

// IsRedisURL reports whether name is a redis:// or rediss:// URL.
func IsRedisURL(name string) bool {
	return strings.HasPrefix(name, "redis://") || strings.HasPrefix(name, "rediss://")
}

func encode(key string, rules []phrases.Rule) ([]byte, error) {
	if rules == nil {
		rules = []phrases.Rule{}
	}

	data, err := json.MarshalIndent(RuleFile{Key: key, Rules: rules, CompiledAt: time.Now()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling rule cache: %w", err)
	}

	return append(data, '\n'), nil
}

// decode returns nil when data is corrupt, stored under another key or
// older than ttl.
func decode(data []byte, key string, ttl time.Duration) []phrases.Rule {
	var rf RuleFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil
	}

	if rf.Key != key || rf.Rules == nil {
		return nil
	}

	if time.Since(rf.CompiledAt) > ttl {
		return nil
	}

	return rf.Rules
}
