package cmd

import (
	"fmt"

	"github.com/alecthomas/kong"
)

const helpFooter = `
Examples:
  iconfilter page.html                 filter a file to stdout
  echo '<p>hi (wave)</p>' | iconfilter filter a pipe
  iconfilter --lang de -o out.html in.html
  iconfilter icons --filter hug        find a token
  iconfilter pick                      compose text interactively
  iconfilter filter -r -f markdown notes.md
  iconfilter config set rule_store sqlite
`

func helpOptions() kong.HelpOptions {
	return kong.HelpOptions{
		Compact:             true,
		Summary:             true,
		NoExpandSubcommands: true,
		WrapUpperBound:      100,
	}
}

// helpPrinter adds usage examples to the root help page.
func helpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}

	if ctx.Selected() == nil {
		_, _ = fmt.Fprint(ctx.Stdout, helpFooter)
	}

	return nil
}
