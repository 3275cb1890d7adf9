// Package actions provides output actions for filtered text: clipboard
// copy, browser preview and output file naming.
package actions

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
	"golang.org/x/net/html"
)

// ErrClipboardUnsupported indicates the platform has no clipboard support.
var ErrClipboardUnsupported = errors.New("clipboard not supported on this platform")

// ClipboardWrite is a function variable for clipboard writes (swappable in tests).
var ClipboardWrite = clipboard.WriteAll

// ClipboardUnsupported mirrors clipboard.Unsupported (swappable in tests).
var ClipboardUnsupported = clipboard.Unsupported

// BrowserOpen is a function variable for opening URLs (swappable in tests).
var BrowserOpen = browser.OpenURL

// BrowserOpenFile is a function variable for opening local files (swappable in tests).
var BrowserOpenFile = browser.OpenFile

// TempDir is where OpenHTML writes its page. Empty means os.TempDir().
var TempDir = ""

// CopyToClipboard copies text to the system clipboard.
// Returns a descriptive error if clipboard is unsupported on the platform.
func CopyToClipboard(text string) error {
	if ClipboardUnsupported {
		return ErrClipboardUnsupported
	}

	return ClipboardWrite(text)
}

// OpenInBrowser opens the given URL in the default browser.
func OpenInBrowser(rawURL string) error {
	return BrowserOpen(rawURL)
}

// OpenHTML writes fragment to a temporary page and opens it in the browser.
// baseHref, when set, lets relative icon sources load from the site.
// It returns the page path.
func OpenHTML(fragment, baseHref string) (string, error) {
	f, err := os.CreateTemp(TempDir, "iconfilter-*.html")
	if err != nil {
		return "", fmt.Errorf("creating preview page: %w", err)
	}

	if _, err := f.WriteString(Page(fragment, baseHref)); err != nil {
		_ = f.Close()

		return "", fmt.Errorf("writing preview page: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing preview page: %w", err)
	}

	if err := BrowserOpenFile(f.Name()); err != nil {
		return f.Name(), fmt.Errorf("opening preview page: %w", err)
	}

	return f.Name(), nil
}

// Page wraps fragment in a minimal HTML document. Input that already is a
// document is returned unchanged.
func Page(fragment, baseHref string) string {
	lower := strings.ToLower(fragment)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") {
		return fragment
	}

	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")

	if baseHref != "" {
		fmt.Fprintf(&b, "<base href=\"%s\">\n", html.EscapeString(baseHref))
	}

	b.WriteString("<title>iconfilter preview</title>\n</head>\n<body>\n")
	b.WriteString(fragment)
	b.WriteString("\n</body>\n</html>\n")

	return b.String()
}

// AutoFilename derives a file name from an icon source URL or path.
// Falls back to fallback when src has no usable base name.
func AutoFilename(src, fallback string) string {
	if src == "" {
		return fallback
	}

	u, err := url.Parse(src)
	if err != nil {
		return fallback
	}

	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallback
	}

	return base
}
