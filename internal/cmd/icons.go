package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/dedene/iconfilter-cli/internal/actions"
	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/icons"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
	"github.com/dedene/iconfilter-cli/internal/pix"
	"github.com/dedene/iconfilter-cli/internal/preview"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

// IconsCmd lists icon tokens or shows one of them.
type IconsCmd struct {
	Name   string `arg:"" optional:"" help:"Icon name, alias or token for detail view"`
	Filter string `help:"Filter tokens by name or label" name:"filter"`
	Lang   string `help:"Language for labels" short:"l"`
	Output string `help:"Download the icon image to a file or directory" short:"o"`

	Preview *bool `help:"Show inline image preview" name:"preview" negatable:""`
}

// iconDetail is the detail view of one token.
type iconDetail struct {
	Token  string `json:"token"`
	Icon   string `json:"icon"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Lang   string `json:"lang"`
	Markup string `json:"markup"`
	Src    string `json:"src"`
}

// shouldPreview determines if inline preview should be shown.
// Cascade: explicit flag > config preview > true (default ON for TTY).
// Always false when stderr is not a TTY or --no-input is set.
func shouldPreview(flag *bool, cfg *config.Config, root *RootFlags) bool {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return false
	}

	if root != nil && root.NoInput {
		return false
	}

	if flag != nil {
		return *flag
	}

	if cfg != nil && cfg.Preview != nil {
		return *cfg.Preview
	}

	return true
}

// Run executes the icons command, dispatching to detail or list view.
func (c *IconsCmd) Run(ctx context.Context, root *RootFlags) error {
	if c.Name != "" {
		return c.runDetail(ctx, root)
	}

	if c.Output != "" {
		return errors.New("--output needs an icon name")
	}

	return c.runList(ctx)
}

func (c *IconsCmd) runList(ctx context.Context) error {
	cfg := configFrom(ctx)

	catalog, err := catalogFor(cfg)
	if err != nil {
		return err
	}

	_, labels := icons.DefaultLabels().Resolve(effectiveLang(c.Lang, cfg))

	rows := filterRows(iconRows(catalog, labels), c.Filter)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, rows)
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{r.Token, r.Icon, r.Kind, r.Label})
	}

	u := ui.FromContext(ctx)

	colorEnabled := false
	if u != nil {
		colorEnabled = u.Out().ColorEnabled()
	}

	fmt.Fprint(os.Stdout, ui.RenderTable(
		[]string{"Token", "Icon", "Kind", "Label"},
		table,
		colorEnabled,
	))
	fmt.Fprintln(os.Stdout)

	if u != nil {
		u.Out().Dimf("%d tokens", len(rows))
	} else {
		fmt.Fprintf(os.Stdout, "%d tokens\n", len(rows))
	}

	return nil
}

// filterRows keeps rows whose token, icon or label contains q, ignoring case.
func filterRows(rows []iconRow, q string) []iconRow {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}

	out := make([]iconRow, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Token+" "+r.Icon+" "+r.Label), q) {
			out = append(out, r)
		}
	}

	return out
}

func (c *IconsCmd) runDetail(ctx context.Context, root *RootFlags) error {
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

	token := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(c.Name), "("), ")")

	icon, ok := catalog.Resolve(token)
	if !ok {
		return fmt.Errorf("unknown icon %q; run 'iconfilter icons' to list tokens", c.Name)
	}

	lang, rules := f.Rules(effectiveLang(c.Lang, cfg))
	_, labels := icons.DefaultLabels().Resolve(lang)

	d := iconDetail{
		Token: icons.Token(token),
		Icon:  icon,
		Kind:  "icon",
		Label: icons.LabelFor(labels, icon),
		Lang:  lang,
		Src:   imageRenderer(cfg, labels).Src(icon),
	}

	if token != icon {
		d.Kind = "alias"
	}

	for _, r := range rules {
		if r.Pattern == d.Token {
			d.Markup = r.Replacement()

			break
		}
	}

	client := pix.ClientFromContext(ctx)

	if c.Output != "" {
		if err := c.download(ctx, client, d); err != nil {
			return err
		}
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, d)
	}

	colorEnabled := false
	if u := ui.FromContext(ctx); u != nil {
		colorEnabled = u.Out().ColorEnabled()
	}

	markup := d.Markup
	if markup == "" {
		markup = "(none; the renderer rejected this icon)"
	}

	fmt.Fprint(os.Stdout, ui.RenderFields([][2]string{
		{"Token", d.Token},
		{"Icon", d.Icon},
		{"Kind", d.Kind},
		{"Label", d.Label},
		{"Lang", d.Lang},
		{"Src", d.Src},
		{"Markup", markup},
	}, colorEnabled))

	if shouldPreview(c.Preview, cfg, root) {
		_ = preview.Show(ctx, client, d.Src, preview.Options{
			Writer: os.Stderr,
		})
	}

	return nil
}

// download saves the icon image. A directory output gets an automatic name.
func (c *IconsCmd) download(ctx context.Context, client *pix.Client, d iconDetail) error {
	if client == nil {
		return errors.New("icon client not found in context")
	}

	dest := c.Output
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, actions.AutoFilename(d.Src, d.Icon+icons.DefaultExtension))
	}

	if err := client.Download(ctx, d.Src, dest); err != nil {
		return fmt.Errorf("downloading %s: %w", d.Icon, err)
	}

	if u := ui.FromContext(ctx); u != nil {
		u.Err().Successf("Saved %s", dest)
	}

	return nil
}
