package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/dedene/iconfilter-cli/internal/actions"
	"github.com/dedene/iconfilter-cli/internal/filter"
	"github.com/dedene/iconfilter-cli/internal/icons"
	"github.com/dedene/iconfilter-cli/internal/tui"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

// PickCmd picks icon tokens interactively and prints the composed text.
type PickCmd struct {
	Lang   string `help:"Language for labels" short:"l"`
	Format string `help:"Format used to filter the composed text" short:"f"`
	Raw    bool   `help:"Print the composed text without filtering"`
	Copy   bool   `help:"Copy result to clipboard" short:"c"`
}

// Run launches the bubbletea picker.
func (c *PickCmd) Run(ctx context.Context, root *RootFlags) error {
	if root.NoInput || !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stderr.Fd()) {
		return errors.New("pick needs an interactive terminal")
	}

	cfg := configFrom(ctx)

	f, release, err := newFilter(cfg, filterOverrides{})
	if err != nil {
		return err
	}

	defer release()

	catalog, err := catalogFor(cfg)
	if err != nil {
		return err
	}

	req := filter.Request{
		Format: effectiveFormat(c.Format, cfg),
		Lang:   effectiveLang(c.Lang, cfg),
	}

	_, labels := icons.DefaultLabels().Resolve(req.Lang)

	m := tui.NewPicker(pickerItems(iconRows(catalog, labels)))
	if !c.Raw {
		m = m.WithPreview(func(s string) string { return f.Apply(s, req) })
	}

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInputTTY())

	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("interactive picker: %w", err)
	}

	picker, ok := result.(tui.Model)
	if !ok {
		return errors.New("unexpected picker result type")
	}

	if picker.Cancelled() || picker.Text() == "" {
		return nil
	}

	out := picker.Text()
	if !c.Raw {
		out = f.Apply(out, req)
	}

	fmt.Fprintln(os.Stdout, out)

	if effectiveCopy(c.Copy, cfg) {
		if err := actions.CopyToClipboard(out); err != nil {
			if u := ui.FromContext(ctx); u != nil {
				u.Err().Warnf("clipboard: %v", err)
			}
		}
	}

	return nil
}

// pickerItems converts listing rows to picker items. Shadowed aliases are
// left out since they never match as aliases.
func pickerItems(rows []iconRow) []list.Item {
	items := make([]list.Item, 0, len(rows))

	for _, r := range rows {
		if r.Kind == "shadowed" {
			continue
		}

		items = append(items, tui.IconItem{
			Token: r.Token,
			Icon:  r.Icon,
			Label: r.Label,
			Alias: r.Kind == "alias",
		})
	}

	return items
}
