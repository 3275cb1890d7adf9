package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/titanous/json5"
	"golang.org/x/text/language"

	"github.com/dedene/iconfilter-cli/internal/icons"
)

const defaultCacheTTL = 7 * 24 * time.Hour

// Config holds user preferences.
type Config struct {
	Formats         string            `json:"formats,omitempty"`
	DefaultFormat   string            `json:"default_format,omitempty"`
	Language        string            `json:"language,omitempty"`
	BaseURL         string            `json:"base_url,omitempty"`
	SiteURL         string            `json:"site_url,omitempty"`
	Extension       *string           `json:"extension,omitempty"`
	Class           string            `json:"class,omitempty"`
	Markup          string            `json:"markup,omitempty"`
	CaseInsensitive *bool             `json:"case_insensitive,omitempty"`
	LinkException   *bool             `json:"link_exception,omitempty"`
	Sanitize        *bool             `json:"sanitize,omitempty"`
	AutoCopy        *bool             `json:"auto_copy,omitempty"`
	Preview         *bool             `json:"preview,omitempty"`
	CacheTTL        string            `json:"cache_ttl,omitempty"`
	RuleStore       string            `json:"rule_store,omitempty"`
	Aliases         map[string]string `json:"aliases,omitempty"`
}

// knownKey describes a config key and its optional validator.
type knownKey struct {
	validate func(string) error
}

// aliases is file-only.
var knownKeys = map[string]knownKey{
	"formats":          {validate: validateFormats},
	"default_format":   {validate: validateFormat},
	"language":         {validate: validateLanguage},
	"base_url":         {validate: nil},
	"site_url":         {validate: validateSiteURL},
	"extension":        {validate: validateExtension},
	"class":            {validate: nil},
	"markup":           {validate: validateMarkup},
	"case_insensitive": {validate: validateBool},
	"link_exception":   {validate: validateBool},
	"sanitize":         {validate: validateBool},
	"auto_copy":        {validate: validateBool},
	"preview":          {validate: validateBool},
	"cache_ttl":        {validate: validateDuration},
	"rule_store":       {validate: validateRuleStore},
}

func validateFormat(val string) error {
	if strings.TrimSpace(val) == "" || strings.ContainsAny(val, ", \t") {
		return fmt.Errorf("must be a single format name")
	}

	return nil
}

func validateFormats(val string) error {
	if len(splitList(val)) == 0 {
		return fmt.Errorf("must list at least one format")
	}

	return nil
}

func validateLanguage(val string) error {
	if _, err := language.Parse(val); err != nil {
		return fmt.Errorf("invalid language tag: %w", err)
	}

	return nil
}

func validateSiteURL(val string) error {
	u, err := url.Parse(val)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}

	return nil
}

func validateExtension(val string) error {
	if val != "" && !strings.HasPrefix(val, ".") {
		return fmt.Errorf("must be empty or start with a dot")
	}

	return nil
}

func validateMarkup(val string) error {
	if !strings.Contains(val, "{key}") && !strings.Contains(val, "{src}") {
		return fmt.Errorf("must contain {key} or {src}")
	}

	return nil
}

func validateBool(val string) error {
	if val != "true" && val != "false" {
		return fmt.Errorf("must be true or false")
	}

	return nil
}

func validateDuration(val string) error {
	_, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	return nil
}

// validateRuleStore accepts file, sqlite, none or a redis URL.
func validateRuleStore(val string) error {
	switch val {
	case "file", "sqlite", "none":
		return nil
	}

	u, err := url.Parse(val)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") || u.Host == "" {
		return fmt.Errorf("must be file, sqlite, none or a redis:// URL")
	}

	return nil
}

func splitList(val string) []string {
	var out []string

	for _, part := range strings.Split(val, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// FormatList returns the configured format allow-list, or nil when unset.
func (cfg *Config) FormatList() []string {
	return splitList(cfg.Formats)
}

// AliasList returns the configured aliases sorted by token.
func (cfg *Config) AliasList() []icons.Alias {
	out := make([]icons.Alias, 0, len(cfg.Aliases))
	for token, icon := range cfg.Aliases {
		out = append(out, icons.Alias{Token: token, Icon: icon})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })

	return out
}

// CacheTTLDuration parses CacheTTL as a time.Duration.
// Returns 7 days on empty or invalid values.
func (cfg *Config) CacheTTLDuration() time.Duration {
	if cfg.CacheTTL == "" {
		return defaultCacheTTL
	}

	d, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		return defaultCacheTTL
	}

	return d
}

// Fingerprint identifies every setting that changes rendered markup.
// Compiled rules cached under one fingerprint are valid for it only.
func (cfg *Config) Fingerprint() string {
	h := sha256.New()

	ext := ""
	if cfg.Extension != nil {
		ext = *cfg.Extension
	}

	fmt.Fprintf(h, "base_url=%s\nextension=%t:%s\nclass=%s\nmarkup=%s\n",
		cfg.BaseURL, cfg.Extension != nil, ext, cfg.Class, cfg.Markup)

	for _, a := range cfg.AliasList() {
		fmt.Fprintf(h, "alias=%s:%s\n", a.Token, a.Icon)
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Load reads config from the JSON5 file at path.
// Returns an empty Config if the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user config path
	if os.IsNotExist(err) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes config as pretty-printed JSON atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	data = append(data, '\n')

	return atomicWrite(path, data)
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

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

func boolString(b *bool) (string, bool) {
	if b == nil {
		return "", false
	}

	return fmt.Sprintf("%t", *b), true
}

// Get returns the string value for a config key and whether it is set.
func (cfg *Config) Get(key string) (string, bool) {
	switch key {
	case "formats":
		return cfg.Formats, cfg.Formats != ""
	case "default_format":
		return cfg.DefaultFormat, cfg.DefaultFormat != ""
	case "language":
		return cfg.Language, cfg.Language != ""
	case "base_url":
		return cfg.BaseURL, cfg.BaseURL != ""
	case "site_url":
		return cfg.SiteURL, cfg.SiteURL != ""
	case "extension":
		if cfg.Extension == nil {
			return "", false
		}

		return *cfg.Extension, true
	case "class":
		return cfg.Class, cfg.Class != ""
	case "markup":
		return cfg.Markup, cfg.Markup != ""
	case "case_insensitive":
		return boolString(cfg.CaseInsensitive)
	case "link_exception":
		return boolString(cfg.LinkException)
	case "sanitize":
		return boolString(cfg.Sanitize)
	case "auto_copy":
		return boolString(cfg.AutoCopy)
	case "preview":
		return boolString(cfg.Preview)
	case "cache_ttl":
		return cfg.CacheTTL, cfg.CacheTTL != ""
	case "rule_store":
		return cfg.RuleStore, cfg.RuleStore != ""
	default:
		return "", false
	}
}

// Set sets a config key to a value after validation.
func (cfg *Config) Set(key, value string) error {
	kk, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	if kk.validate != nil {
		if err := kk.validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	b := value == "true"

	switch key {
	case "formats":
		cfg.Formats = strings.Join(splitList(value), ",")
	case "default_format":
		cfg.DefaultFormat = strings.ToLower(value)
	case "language":
		cfg.Language = value
	case "base_url":
		cfg.BaseURL = value
	case "site_url":
		cfg.SiteURL = strings.TrimRight(value, "/")
	case "extension":
		cfg.Extension = &value
	case "class":
		cfg.Class = value
	case "markup":
		cfg.Markup = value
	case "case_insensitive":
		cfg.CaseInsensitive = &b
	case "link_exception":
		cfg.LinkException = &b
	case "sanitize":
		cfg.Sanitize = &b
	case "auto_copy":
		cfg.AutoCopy = &b
	case "preview":
		cfg.Preview = &b
	case "cache_ttl":
		cfg.CacheTTL = value
	case "rule_store":
		cfg.RuleStore = value
	}

	return nil
}

// Unset removes a config key (resets to zero/nil).
func (cfg *Config) Unset(key string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	switch key {
	case "formats":
		cfg.Formats = ""
	case "default_format":
		cfg.DefaultFormat = ""
	case "language":
		cfg.Language = ""
	case "base_url":
		cfg.BaseURL = ""
	case "site_url":
		cfg.SiteURL = ""
	case "extension":
		cfg.Extension = nil
	case "class":
		cfg.Class = ""
	case "markup":
		cfg.Markup = ""
	case "case_insensitive":
		cfg.CaseInsensitive = nil
	case "link_exception":
		cfg.LinkException = nil
	case "sanitize":
		cfg.Sanitize = nil
	case "auto_copy":
		cfg.AutoCopy = nil
	case "preview":
		cfg.Preview = nil
	case "cache_ttl":
		cfg.CacheTTL = ""
	case "rule_store":
		cfg.RuleStore = ""
	}

	return nil
}

// KnownKeys returns a sorted list of valid config key names.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// --- Context helpers ---

type ctxKey struct{}

// WithConfig stores a Config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	if v := ctx.Value(ctxKey{}); v != nil {
		if cfg, ok := v.(*Config); ok {
			return cfg
		}
	}

	return nil
}
