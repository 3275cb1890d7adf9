package icons

import (
	"fmt"
	"strings"

	"github.com/dedene/iconfilter-cli/internal/phrases"
)

// RenderError reports markup that does not contain its icon key.
// The affected token produces no rule.
type RenderError struct {
	Icon   string
	Token  string
	Markup string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendered markup for %s does not contain icon key %q: %q", e.Token, e.Icon, e.Markup)
}

type split struct {
	prefix, suffix string
	ok             bool
}

// Compile builds the rule table for catalog using r.
//
// Canonical icons come first in catalog order, then aliases. An alias whose
// token is a canonical identifier is skipped. Markup is split around the
// first occurrence of the icon key; markup without the key is reported as a
// *RenderError and skipped. The returned table is always usable.
func Compile(catalog *Catalog, r Renderer) (*phrases.RuleTable, []error) {
	table := phrases.NewRuleTable()

	var errs []error

	rendered := make(map[string]split)
	render := func(icon string) split {
		if s, ok := rendered[icon]; ok {
			return s
		}

		markup := r.Render(icon)

		var s split
		if i := strings.Index(markup, icon); i >= 0 {
			s = split{prefix: markup[:i], suffix: markup[i+len(icon):], ok: true}
		}

		rendered[icon] = s

		if !s.ok {
			errs = append(errs, &RenderError{Icon: icon, Token: Token(icon), Markup: markup})
		}

		return s
	}

	for _, id := range catalog.ids {
		s := render(id)
		if !s.ok {
			continue
		}

		table.Add(phrases.Rule{Pattern: Token(id), Prefix: s.prefix, IconKey: id, Suffix: s.suffix})
	}

	for _, a := range catalog.aliases {
		if catalog.Shadowed(a) {
			continue
		}

		s := render(a.Icon)
		if !s.ok {
			continue
		}

		table.Add(phrases.Rule{Pattern: Token(a.Token), Prefix: s.prefix, IconKey: a.Icon, Suffix: s.suffix})
	}

	return table, errs
}
