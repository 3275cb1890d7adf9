// Package filter applies the emoticon scanner to rendered content.
//
// A Filter owns the compiled rule tables for each label locale. Tables are
// built on first use, at most once per locale, and reused until Invalidate
// is called or the memo TTL runs out.
package filter

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dedene/iconfilter-cli/internal/icons"
	"github.com/dedene/iconfilter-cli/internal/phrases"
)

// DefaultFormats is the format allow-list used when none is configured.
var DefaultFormats = []string{"html", "markdown", "moodle"}

// RuleStore persists compiled rules between processes.
// Load returns nil rules on a miss.
type RuleStore interface {
	Load(key string) ([]phrases.Rule, error)
	Save(key string, rules []phrases.Rule) error
}

// RendererFactory builds the renderer for one locale's labels.
type RendererFactory func(labels icons.LabelSource) icons.Renderer

// Request describes the context a block of text is rendered in.
type Request struct {
	// Format names the text format. Empty or unlisted formats pass through.
	Format string
	// Lang is a BCP 47 tag or Accept-Language list used to pick labels.
	Lang string
}

// Result is the outcome of Process.
type Result struct {
	Text         string
	Replacements int
	Applied      bool
	Lang         string
}

// Option configures a Filter at construction time.
type Option func(*Filter)

// WithFormats sets the format allow-list. Formats are matched case-insensitively.
func WithFormats(formats ...string) Option {
	return func(f *Filter) {
		f.formats = make(map[string]bool, len(formats))
		for _, name := range formats {
			if name = normalizeFormat(name); name != "" {
				f.formats[name] = true
			}
		}
	}
}

// WithLabels replaces the shipped label bundle.
func WithLabels(b *icons.LabelBundle) Option {
	return func(f *Filter) {
		f.labels = b
	}
}

// WithRenderer sets how icon markup is produced.
func WithRenderer(fn RendererFactory) Option {
	return func(f *Filter) {
		if fn != nil {
			f.newRenderer = fn
		}
	}
}

// WithIgnoreZones replaces the default ignore-zone markers.
func WithIgnoreZones(z phrases.IgnoreZones) Option {
	return func(f *Filter) {
		f.zones = &z
	}
}

// WithLinkException controls whether link text is scanned. Enabled by default.
func WithLinkException(on bool) Option {
	return func(f *Filter) {
		f.linkException = on
	}
}

// WithCaseInsensitive makes token matching ignore case.
func WithCaseInsensitive(on bool) Option {
	return func(f *Filter) {
		f.caseInsensitive = on
	}
}

// WithSanitizer cleans input HTML with p before scanning. A nil policy
// disables sanitizing.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(f *Filter) {
		f.sanitizer = p
	}
}

// WithStore persists compiled rules in s. Keys are namespace plus locale;
// namespace must change whenever rendered markup would.
func WithStore(s RuleStore, namespace string) Option {
	return func(f *Filter) {
		f.store = s
		f.namespace = namespace
	}
}

// WithTTL bounds how long a compiled table is reused. A non-positive
// duration keeps tables until Invalidate.
func WithTTL(ttl time.Duration) Option {
	return func(f *Filter) {
		f.ttl = ttl
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// SanitizePolicy returns the UGC policy extended to keep the nolink markers
// the scanner honours.
func SanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^nolink$`)).OnElements("span")
	p.AllowElements("nolink")

	return p
}

type entry struct {
	table   *phrases.RuleTable
	scanner *phrases.Scanner
}

// Filter replaces icon tokens in text. It is safe for concurrent use.
type Filter struct {
	catalog     *icons.Catalog
	labels      *icons.LabelBundle
	newRenderer RendererFactory
	formats     map[string]bool

	zones           *phrases.IgnoreZones
	linkException   bool
	caseInsensitive bool

	sanitizer *bluemonday.Policy
	store     RuleStore
	namespace string
	ttl       time.Duration
	logger    *slog.Logger

	mu   sync.Mutex // serializes builds
	memo *gocache.Cache
}

// New returns a Filter over catalog. A nil catalog means icons.Default().
func New(catalog *icons.Catalog, opts ...Option) *Filter {
	if catalog == nil {
		catalog = icons.Default()
	}

	f := &Filter{
		catalog: catalog,
		labels:  icons.DefaultLabels(),
		newRenderer: func(labels icons.LabelSource) icons.Renderer {
			return icons.ImageRenderer{Labels: labels}
		},
		linkException: true,
		logger:        slog.New(slog.DiscardHandler),
	}

	WithFormats(DefaultFormats...)(f)

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)

	if f.ttl > 0 {
		expiration = f.ttl
		cleanup = 2 * f.ttl
	}

	f.memo = gocache.New(expiration, cleanup)

	return f
}

// Enabled reports whether format is on the allow-list.
func (f *Filter) Enabled(format string) bool {
	name := normalizeFormat(format)

	return name != "" && f.formats[name]
}

// Formats returns the allow-list, sorted.
func (f *Filter) Formats() []string {
	out := make([]string, 0, len(f.formats))
	for name := range f.formats {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Apply returns text with icon tokens replaced, or text unchanged when the
// request's format is not enabled.
func (f *Filter) Apply(text string, req Request) string {
	return f.Process(text, req).Text
}

// Process is Apply with details about what happened.
func (f *Filter) Process(text string, req Request) Result {
	if !f.Enabled(req.Format) {
		return Result{Text: text}
	}

	if f.sanitizer != nil {
		text = f.sanitizer.Sanitize(text)
	}

	locale, e := f.lookup(req.Lang)
	out, n := e.scanner.Replace(text)

	return Result{Text: out, Replacements: n, Applied: true, Lang: locale}
}

// Rules returns the resolved locale and the compiled rules for lang.
func (f *Filter) Rules(lang string) (string, []phrases.Rule) {
	locale, e := f.lookup(lang)

	return locale, e.table.Rules()
}

// Invalidate drops every compiled table. The next request rebuilds.
func (f *Filter) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.memo.Flush()
}

func (f *Filter) lookup(lang string) (string, *entry) {
	locale, labels := f.labels.Resolve(lang)

	if v, ok := f.memo.Get(locale); ok {
		return locale, v.(*entry)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.memo.Get(locale); ok {
		return locale, v.(*entry)
	}

	table := f.build(locale, labels)

	opts := []phrases.Option{
		phrases.WithLinkException(f.linkException),
		phrases.WithCaseInsensitive(f.caseInsensitive),
	}
	if f.zones != nil {
		opts = append(opts, phrases.WithIgnoreZones(*f.zones))
	}

	e := &entry{table: table, scanner: phrases.NewScanner(table, opts...)}
	f.memo.Set(locale, e, gocache.DefaultExpiration)

	return locale, e
}

func (f *Filter) build(locale string, labels icons.Labels) *phrases.RuleTable {
	key := f.namespace + "." + locale

	if f.store != nil {
		rules, err := f.store.Load(key)
		if err != nil {
			f.logger.Warn("loading cached rules", "key", key, "error", err)
		} else if rules != nil {
			f.logger.Debug("rule cache hit", "key", key, "rules", len(rules))

			return phrases.NewRuleTable(rules...)
		}
	}

	table, errs := icons.Compile(f.catalog, f.newRenderer(labels))
	for _, err := range errs {
		f.logger.Warn("dropping icon rule", "locale", locale, "error", err)
	}

	f.logger.Debug("compiled icon rules", "locale", locale, "rules", table.Len(), "dropped", len(errs))

	if f.store != nil {
		if err := f.store.Save(key, table.Rules()); err != nil {
			f.logger.Warn("saving cached rules", "key", key, "error", err)
		}
	}

	return table
}

func normalizeFormat(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
