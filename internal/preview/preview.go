// Package preview renders inline terminal previews of icon images.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	// Register image format decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	termimg "github.com/blacktop/go-termimg"
	"golang.org/x/term"

	"github.com/dedene/iconfilter-cli/internal/pix"
)

// Options configures image preview rendering.
type Options struct {
	// Width in character cells. 0 = auto-detect from terminal.
	Width int
	// Writer receives rendered escape sequences. Typically os.Stderr.
	Writer io.Writer
}

// Icons are small; previews stay narrow.
const (
	minPreviewWidth = 4
	maxPreviewWidth = 16
)

// Show fetches the icon at src through client and renders it to opts.Writer.
// Returns nil on any error (fetch, decode, render); a preview never fails a command.
func Show(ctx context.Context, client *pix.Client, src string, opts Options) error {
	if client == nil || opts.Writer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	img, err := client.Fetch(ctx, src)
	if err != nil {
		return nil
	}

	return Render(img.Data, opts)
}

// Render draws already downloaded image data. Undecodable data is ignored.
func Render(data []byte, opts Options) error {
	ti, err := termimg.From(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	width := opts.Width
	if width <= 0 {
		w, _, sizeErr := term.GetSize(int(os.Stderr.Fd()))
		if sizeErr != nil || w <= 0 {
			width = 8
		} else {
			width = w / 10
		}

		width = max(minPreviewWidth, min(maxPreviewWidth, width))
	}

	rendered, err := ti.Width(width).Scale(termimg.ScaleFit).Render()
	if err != nil {
		return nil
	}

	fmt.Fprintln(opts.Writer, rendered)

	return nil
}
