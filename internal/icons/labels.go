package icons

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/titanous/json5"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no requested locale matches.
const DefaultLocale = "en"

// LabelSource supplies the alt/title text for an icon key.
type LabelSource interface {
	Label(key string) (string, bool)
}

// Labels is a LabelSource backed by a map.
type Labels map[string]string

// Label implements LabelSource.
func (l Labels) Label(key string) (string, bool) {
	v, ok := l[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return v, true
}

// LabelFor returns the label for key, or key itself when src has none.
func LabelFor(src LabelSource, key string) string {
	if src == nil {
		return key
	}

	if v, ok := src.Label(key); ok {
		return v
	}

	return key
}

//go:embed labels/*.json5
var embeddedLabels embed.FS

// LabelBundle holds labels for several locales and picks the best one for a
// requested language.
type LabelBundle struct {
	locales map[string]Labels
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// DefaultLabels returns the labels shipped with the binary.
func DefaultLabels() *LabelBundle {
	b, err := LoadLabels(embeddedLabels)
	if err != nil {
		panic(err)
	}

	return b
}

// LoadLabels reads labels/<locale>.json5 files from fsys.
// The default locale must be present.
func LoadLabels(fsys fs.FS) (*LabelBundle, error) {
	paths, err := fs.Glob(fsys, "labels/*.json5")
	if err != nil {
		return nil, fmt.Errorf("glob label files: %w", err)
	}

	sort.Strings(paths)

	b := &LabelBundle{locales: make(map[string]Labels, len(paths))}

	for _, p := range paths {
		locale := strings.TrimSuffix(path.Base(p), path.Ext(p))

		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("label file %s: parsing locale: %w", p, err)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		var labels Labels
		if err := json5.Unmarshal(data, &labels); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}

		b.locales[tag.String()] = labels
	}

	if _, ok := b.locales[DefaultLocale]; !ok {
		return nil, fmt.Errorf("label file for default locale %q is missing", DefaultLocale)
	}

	// The matcher falls back to its first tag.
	b.names = append(b.names, DefaultLocale)
	for name := range b.locales {
		if name != DefaultLocale {
			b.names = append(b.names, name)
		}
	}

	sort.Strings(b.names[1:])

	for _, name := range b.names {
		b.tags = append(b.tags, language.MustParse(name))
	}

	b.matcher = language.NewMatcher(b.tags)

	return b, nil
}

// Locales returns the available locale names, default first.
func (b *LabelBundle) Locales() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)

	return out
}

// Resolve picks the best locale for lang (a BCP 47 tag or Accept-Language
// style list) and returns its name and labels. Unknown or empty input
// resolves to the default locale.
func (b *LabelBundle) Resolve(lang string) (string, Labels) {
	if b == nil {
		return DefaultLocale, nil
	}

	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLocale, b.locales[DefaultLocale]
	}

	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return DefaultLocale, b.locales[DefaultLocale]
	}

	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale, b.locales[DefaultLocale]
	}

	name := b.names[idx]

	return name, b.locales[name]
}
