package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
	"github.com/dedene/iconfilter-cli/internal/pix"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

const angelImg = `<img class="emoticon" alt="angel" title="angel" src="/filter/skypeicons/pix/angel"/>`

// isolate points config, cache and locale lookups away from the real environment.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")

	for _, name := range []string{"FORMATS", "DEFAULT_FORMAT", "LANGUAGE", "BASE_URL", "SITE_URL", "CACHE_TTL", "RULE_STORE"} {
		t.Setenv("ICONFILTER_"+name, "")
	}
}

// testCtx returns a context with output mode and the given config.
func testCtx(t *testing.T, cfg *config.Config, jsonMode bool) context.Context {
	t.Helper()

	isolate(t)

	if cfg == nil {
		cfg = &config.Config{}
	}

	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, outfmt.Mode{JSON: jsonMode})
	ctx = config.WithConfig(ctx, cfg)

	return ctx
}

// withUI adds a no-color UI writing into the returned buffers.
func withUI(t *testing.T, ctx context.Context) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer

	u, err := ui.New(ui.Options{Stdout: &out, Stderr: &errOut, Color: "never"})
	require.NoError(t, err)

	return ui.WithUI(ctx, u), &out, &errOut
}

// withClient adds an icon client resolving relative sources against siteURL.
func withClient(ctx context.Context, siteURL string) context.Context {
	return pix.WithClient(ctx, pix.NewClient(pix.ClientOptions{
		SiteURL:   siteURL,
		UserAgent: "iconfilter-cli/test",
	}))
}

// captureStdout runs fn while capturing os.Stdout and returns the output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	origStdout := os.Stdout
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	buf, _ := io.ReadAll(r)
	_ = r.Close()

	return string(buf)
}

// withStdin replaces os.Stdin with a file holding input for the duration of the test.
func withStdin(t *testing.T, input string) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)

	_, err = f.WriteString(input)
	require.NoError(t, err)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	orig := os.Stdin
	os.Stdin = f

	t.Cleanup(func() {
		os.Stdin = orig
		_ = f.Close()
	})
}

func boolPtr(b bool) *bool { return &b }
