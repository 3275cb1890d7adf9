// Package icons holds the emoticon catalog and compiles it into phrase rules.
package icons

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog is returned for catalogs that break their invariants.
var ErrInvalidCatalog = errors.New("invalid icon catalog")

// Alias maps an alternate token to a canonical icon identifier.
type Alias struct {
	Token string `json:"token"`
	Icon  string `json:"icon"`
}

// Catalog is an ordered set of canonical icon identifiers plus aliases.
// It is immutable once built.
type Catalog struct {
	ids     []string
	known   map[string]bool
	aliases []Alias
}

var defaultIDs = []string{
	"angel", "angry", "bandit", "beer", "bigsmile", "blush", "bow", "brokenheart",
	"bug", "cake", "call", "cash", "clapping", "coffee", "cool", "crying", "dance",
	"devil", "doh", "drink", "drunk", "dull", "envy", "evilgrin", "flower", "giggle",
	"handshake", "headbang", "heidy", "heart", "hi", "hug", "inlove", "itwasntme",
	"kiss", "lipssealed", "mail", "makeup", "middlefinger", "mmm", "mooning", "movie",
	"muscle", "music", "nerd", "ninja", "no", "party", "phone", "pizza", "puke",
	"rain", "rock", "sadsmile", "skype", "sleepy", "smile", "smoke", "speechless",
	"star", "sun", "surprised", "sweating", "talking", "thinking", "time", "toivo",
	"tongueout", "wait", "wink", "wondering", "worried", "yawn",
}

var defaultAliases = []Alias{
	{Token: "bear", Icon: "hug"},
	{Token: "wave", Icon: "hi"},
	{Token: "flex", Icon: "muscle"},
	{Token: "squirrel", Icon: "heidy"},
	{Token: "hiedy", Icon: "heidy"},
	{Token: "banghead", Icon: "headbang"},
	{Token: "mm", Icon: "mmm"},
	{Token: "pi", Icon: "pizza"},
}

// Default returns the stock catalog with its stock aliases.
func Default() *Catalog {
	c, err := NewCatalog(defaultIDs, defaultAliases)
	if err != nil {
		panic(err)
	}

	return c
}

// NewCatalog validates ids and aliases and returns a catalog.
//
// Identifiers must be non-empty, unique and free of parentheses. Aliases
// must point at a canonical identifier. An alias whose token is itself a
// canonical identifier is kept here but never compiled.
func NewCatalog(ids []string, aliases []Alias) (*Catalog, error) {
	c := &Catalog{
		ids:   make([]string, 0, len(ids)),
		known: make(map[string]bool, len(ids)),
	}

	for _, id := range ids {
		if err := validToken(id); err != nil {
			return nil, fmt.Errorf("%w: icon %q: %w", ErrInvalidCatalog, id, err)
		}

		if c.known[id] {
			return nil, fmt.Errorf("%w: duplicate icon %q", ErrInvalidCatalog, id)
		}

		c.known[id] = true
		c.ids = append(c.ids, id)
	}

	return c.WithAliases(aliases)
}

// WithAliases returns a copy of c with extra aliases appended.
func (c *Catalog) WithAliases(extra []Alias) (*Catalog, error) {
	out := &Catalog{
		ids:     c.ids,
		known:   c.known,
		aliases: make([]Alias, 0, len(c.aliases)+len(extra)),
	}

	out.aliases = append(out.aliases, c.aliases...)

	for _, a := range extra {
		if err := validToken(a.Token); err != nil {
			return nil, fmt.Errorf("%w: alias %q: %w", ErrInvalidCatalog, a.Token, err)
		}

		if !c.known[a.Icon] {
			return nil, fmt.Errorf("%w: alias %q points at unknown icon %q", ErrInvalidCatalog, a.Token, a.Icon)
		}

		out.aliases = append(out.aliases, a)
	}

	return out, nil
}

func validToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("empty identifier")
	}

	if strings.ContainsAny(s, "()") {
		return errors.New("identifier must not contain parentheses")
	}

	return nil
}

// IDs returns the canonical identifiers in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)

	return out
}

// Aliases returns the alias table in registration order.
func (c *Catalog) Aliases() []Alias {
	out := make([]Alias, len(c.aliases))
	copy(out, c.aliases)

	return out
}

// Has reports whether id is a canonical identifier.
func (c *Catalog) Has(id string) bool { return c.known[id] }

// Shadowed reports whether an alias token collides with a canonical identifier.
func (c *Catalog) Shadowed(a Alias) bool { return c.known[a.Token] }

// Resolve maps a token (canonical or alias, without parentheses) to its icon.
// Canonical identifiers take precedence over aliases.
func (c *Catalog) Resolve(token string) (string, bool) {
	if c.known[token] {
		return token, true
	}

	for _, a := range c.aliases {
		if a.Token == token {
			return a.Icon, true
		}
	}

	return "", false
}

// Token wraps an identifier in the parentheses used in text.
func Token(id string) string {
	return "(" + id + ")"
}
