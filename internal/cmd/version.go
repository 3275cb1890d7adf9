package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dedene/iconfilter-cli/internal/icons"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
)

// Set by the linker: -X github.com/dedene/iconfilter-cli/internal/cmd.version=...
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// VersionString returns a human-readable version string.
func VersionString() string {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}

	var meta []string
	for _, s := range []string{commit, date} {
		if s = strings.TrimSpace(s); s != "" {
			meta = append(meta, s)
		}
	}

	if len(meta) == 0 {
		return v
	}

	return fmt.Sprintf("%s (%s)", v, strings.Join(meta, " "))
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	catalog := icons.Default()
	locales := icons.DefaultLabels().Locales()

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"version": strings.TrimSpace(version),
			"commit":  strings.TrimSpace(commit),
			"date":    strings.TrimSpace(date),
			"go":      runtime.Version(),
			"icons":   len(catalog.IDs()),
			"aliases": len(catalog.Aliases()),
			"locales": locales,
		})
	}

	fmt.Fprintf(os.Stdout, "iconfilter %s\n", VersionString())
	fmt.Fprintf(os.Stdout, "  icons:   %d (+%d aliases)\n", len(catalog.IDs()), len(catalog.Aliases()))
	fmt.Fprintf(os.Stdout, "  locales: %s\n", strings.Join(locales, ", "))
	fmt.Fprintf(os.Stdout, "  go:      %s\n", runtime.Version())

	return nil
}
