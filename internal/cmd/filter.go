package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dedene/iconfilter-cli/internal/actions"
	"github.com/dedene/iconfilter-cli/internal/filter"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
	"github.com/dedene/iconfilter-cli/internal/render"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

// FilterCmd replaces icon tokens in files or stdin. It is the default
// command when invoked with positional args (default:"withargs" in CLI struct).
type FilterCmd struct {
	Files []string `arg:"" optional:"" help:"Files to filter ('-' or none for stdin)"`

	Format          string `help:"Text format of the input (must be in the formats allow-list)" short:"f"`
	Lang            string `help:"Language for alt/title labels (BCP 47 tag or Accept-Language list)" short:"l"`
	CaseInsensitive *bool  `help:"Match tokens regardless of case" name:"case-insensitive" negatable:""`
	LinkException   *bool  `help:"Replace tokens inside link text" name:"link-exception" negatable:""`
	Sanitize        *bool  `help:"Sanitize HTML before filtering" name:"sanitize" negatable:""`
	Render          bool   `help:"Render markdown, moodle or plain input to HTML before filtering" short:"r"`

	Output string `help:"Write result to file instead of stdout" short:"o"`
	Copy   bool   `help:"Copy result to clipboard" short:"c"`
	Open   bool   `help:"Open result in browser"`
}

// filterOutput is one JSON object per source.
type filterOutput struct {
	Source       string `json:"source"`
	Format       string `json:"format"`
	Lang         string `json:"lang,omitempty"`
	Applied      bool   `json:"applied"`
	Replacements int    `json:"replacements"`
	Text         string `json:"text"`
}

// Run executes the filter command.
func (c *FilterCmd) Run(ctx context.Context) error {
	cfg := configFrom(ctx)

	f, release, err := newFilter(cfg, filterOverrides{
		CaseInsensitive: c.CaseInsensitive,
		LinkException:   c.LinkException,
		Sanitize:        c.Sanitize,
	})
	if err != nil {
		return err
	}

	defer release()

	req := filter.Request{
		Format: effectiveFormat(c.Format, cfg),
		Lang:   effectiveLang(c.Lang, cfg),
	}

	if !f.Enabled(req.Format) {
		if u := ui.FromContext(ctx); u != nil {
			u.Err().Warnf("format %q is not enabled (formats: %s); text left unchanged",
				req.Format, strings.Join(f.Formats(), ","))
		}
	}

	sources := c.Files
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	var out strings.Builder

	for _, src := range sources {
		text, err := readSource(src)
		if err != nil {
			return err
		}

		if c.Render {
			if text, err = render.ToHTML(req.Format, text); err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
		}

		res := f.Process(text, req)

		if outfmt.IsJSON(ctx) {
			if err := outfmt.WriteJSONLine(os.Stdout, filterOutput{
				Source:       src,
				Format:       req.Format,
				Lang:         res.Lang,
				Applied:      res.Applied,
				Replacements: res.Replacements,
				Text:         res.Text,
			}); err != nil {
				return err
			}
		}

		out.WriteString(res.Text)
	}

	result := out.String()

	if !outfmt.IsJSON(ctx) {
		if err := c.write(result); err != nil {
			return err
		}
	}

	c.runActions(ctx, result, siteBase(cfg), effectiveCopy(c.Copy, cfg))

	return nil
}

func (c *FilterCmd) write(result string) error {
	if c.Output == "" {
		_, err := io.WriteString(os.Stdout, result)

		return err
	}

	if err := os.WriteFile(c.Output, []byte(result), 0o644); err != nil { //nolint:gosec // user-chosen output path
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// runActions fires post-filter actions (clipboard, browser).
// Errors are non-fatal warnings to stderr.
func (c *FilterCmd) runActions(ctx context.Context, result, baseHref string, copyResult bool) {
	u := ui.FromContext(ctx)

	warn := func(format string, args ...any) {
		if u != nil {
			u.Err().Warnf(format, args...)

			return
		}

		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}

	if copyResult {
		if err := actions.CopyToClipboard(result); err != nil {
			warn("clipboard: %v", err)
		}
	}

	if c.Open {
		if _, err := actions.OpenHTML(result, baseHref); err != nil {
			warn("browser: %v", err)
		}
	}
}

// readSource reads a file, or stdin for "-".
func readSource(src string) (string, error) {
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(src) //nolint:gosec // user-supplied input path
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}

	return string(data), nil
}
