package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

// RulesCmd shows the compiled replacement rules or clears the rule cache.
type RulesCmd struct {
	Lang  string `help:"Language the rules are compiled for" short:"l"`
	Clear bool   `help:"Remove cached rule tables and exit"`
}

// Run executes the rules command.
func (c *RulesCmd) Run(ctx context.Context) error {
	cfg := configFrom(ctx)

	if c.Clear {
		return clearRules(ctx, cfg)
	}

	f, release, err := newFilter(cfg, filterOverrides{})
	if err != nil {
		return err
	}

	defer release()

	lang, rules := f.Rules(effectiveLang(c.Lang, cfg))

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"lang":  lang,
			"rules": rules,
		})
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.Pattern, r.Replacement()})
	}

	colorEnabled := false
	if u := ui.FromContext(ctx); u != nil {
		colorEnabled = u.Out().ColorEnabled()
	}

	fmt.Fprint(os.Stdout, ui.RenderTable([]string{"Pattern", "Replacement"}, rows, colorEnabled))
	fmt.Fprintf(os.Stdout, "\n%d rules (%s)\n", len(rules), lang)

	return nil
}

func clearRules(ctx context.Context, cfg *config.Config) error {
	store, err := ruleStore(cfg)
	if err != nil {
		return err
	}

	if store == nil {
		return errors.New("rule cache is disabled (rule_store = none)")
	}

	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}

	if u := ui.FromContext(ctx); u != nil {
		u.Err().Successf("Cleared %s", store.Location())
	}

	return nil
}
