package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dedene/iconfilter-cli/internal/cache"
	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/filter"
	"github.com/dedene/iconfilter-cli/internal/icons"
)

// filterOverrides are per-command flags that take precedence over config.
type filterOverrides struct {
	CaseInsensitive *bool
	LinkException   *bool
	Sanitize        *bool
}

// configFrom returns the context config or an empty one.
func configFrom(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}

	return &config.Config{}
}

// catalogFor extends the stock catalog with configured aliases.
func catalogFor(cfg *config.Config) (*icons.Catalog, error) {
	catalog, err := icons.Default().WithAliases(cfg.AliasList())
	if err != nil {
		return nil, fmt.Errorf("config aliases: %w", err)
	}

	return catalog, nil
}

// imageRenderer builds the stock renderer from config.
func imageRenderer(cfg *config.Config, labels icons.LabelSource) icons.ImageRenderer {
	ext := ""
	if cfg.Extension != nil {
		ext = *cfg.Extension
	}

	return icons.ImageRenderer{
		BaseURL:   cfg.BaseURL,
		Extension: ext,
		Class:     cfg.Class,
		Labels:    labels,
	}
}

// rendererFor honours a configured markup template.
func rendererFor(cfg *config.Config) filter.RendererFactory {
	return func(labels icons.LabelSource) icons.Renderer {
		img := imageRenderer(cfg, labels)
		if cfg.Markup != "" {
			return icons.TemplateRenderer{Template: cfg.Markup, Image: img}
		}

		return img
	}
}

// ruleStore opens the configured rule store. A nil Store means caching is off.
func ruleStore(cfg *config.Config) (cache.Store, error) {
	dir, err := config.RulesDir()
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(cfg.RuleStore, dir, cfg.CacheTTLDuration())
	if err != nil {
		return nil, fmt.Errorf("rule store: %w", err)
	}

	return store, nil
}

// newFilter builds a Filter from config. Flag overrides win. The returned
// func releases the rule store and is never nil.
func newFilter(cfg *config.Config, ov filterOverrides) (*filter.Filter, func(), error) {
	catalog, err := catalogFor(cfg)
	if err != nil {
		return nil, func() {}, err
	}

	opts := []filter.Option{
		filter.WithRenderer(rendererFor(cfg)),
		filter.WithLogger(slog.Default()),
	}

	if formats := cfg.FormatList(); len(formats) > 0 {
		opts = append(opts, filter.WithFormats(formats...))
	}

	if v := pickBool(ov.CaseInsensitive, cfg.CaseInsensitive); v != nil {
		opts = append(opts, filter.WithCaseInsensitive(*v))
	}

	if v := pickBool(ov.LinkException, cfg.LinkException); v != nil {
		opts = append(opts, filter.WithLinkException(*v))
	}

	if v := pickBool(ov.Sanitize, cfg.Sanitize); v != nil && *v {
		opts = append(opts, filter.WithSanitizer(filter.SanitizePolicy()))
	}

	release := func() {}

	store, err := ruleStore(cfg)
	switch {
	case err != nil:
		slog.Warn("rule cache disabled", "error", err)
	case store != nil:
		opts = append(opts, filter.WithStore(store, cfg.Fingerprint()))
		release = func() {
			if err := store.Close(); err != nil {
				slog.Debug("closing rule store", "error", err)
			}
		}
	}

	return filter.New(catalog, opts...), release, nil
}

func pickBool(flag, cfg *bool) *bool {
	if flag != nil {
		return flag
	}

	return cfg
}

// effectiveFormat returns: explicit flag > config default > "html".
func effectiveFormat(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}

	if cfg.DefaultFormat != "" {
		return cfg.DefaultFormat
	}

	return "html"
}

// effectiveLang returns: explicit flag > config language > LC_ALL/LANG.
func effectiveLang(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}

	if cfg.Language != "" {
		return cfg.Language
	}

	return envLang()
}

// envLang converts a POSIX locale such as de_DE.UTF-8 into a language tag.
func envLang() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}

		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}

		if v == "C" || v == "POSIX" || v == "" {
			return ""
		}

		return strings.ReplaceAll(v, "_", "-")
	}

	return ""
}

// effectiveCopy returns: explicit --copy flag > config auto_copy > false.
func effectiveCopy(flag bool, cfg *config.Config) bool {
	if flag {
		return true
	}

	return cfg.AutoCopy != nil && *cfg.AutoCopy
}

// siteBase returns the <base href> used when opening output in a browser.
func siteBase(cfg *config.Config) string {
	if cfg.SiteURL == "" {
		return ""
	}

	return strings.TrimRight(cfg.SiteURL, "/") + "/"
}

// iconRow describes one token for listings.
type iconRow struct {
	Token string `json:"token"`
	Icon  string `json:"icon"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// iconRows lists canonical tokens then aliases. Shadowed aliases are marked.
func iconRows(catalog *icons.Catalog, labels icons.LabelSource) []iconRow {
	rows := make([]iconRow, 0, len(catalog.IDs())+len(catalog.Aliases()))

	for _, id := range catalog.IDs() {
		rows = append(rows, iconRow{Token: icons.Token(id), Icon: id, Kind: "icon", Label: icons.LabelFor(labels, id)})
	}

	for _, a := range catalog.Aliases() {
		kind := "alias"
		if catalog.Shadowed(a) {
			kind = "shadowed"
		}

		rows = append(rows, iconRow{Token: icons.Token(a.Token), Icon: a.Icon, Kind: kind, Label: icons.LabelFor(labels, a.Icon)})
	}

	return rows
}
