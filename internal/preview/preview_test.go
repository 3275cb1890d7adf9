package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dedene/iconfilter-cli/internal/pix"
)

// tinyGIF generates a valid 1x1 GIF in memory.
func tinyGIF(t *testing.T) []byte {
	t.Helper()

	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.RGBA{R: 255, A: 255}})

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}

	return buf.Bytes()
}

func serve(t *testing.T, h http.HandlerFunc) *pix.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return pix.NewClient(pix.ClientOptions{SiteURL: srv.URL})
}

func TestShow_Success(t *testing.T) {
	data := tinyGIF(t)
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(data)
	})

	var out bytes.Buffer
	err := Show(context.Background(), client, "/pix/angel.gif", Options{
		Width:  8,
		Writer: &out,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.Bytes(), "expected rendered output")
}

func TestShow_HTTPError(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	var out bytes.Buffer
	err := Show(context.Background(), client, "/pix/angel.gif", Options{
		Width:  8,
		Writer: &out,
	})

	assert.NoError(t, err)
	assert.Empty(t, out.Bytes(), "expected no output on HTTP error")
}

func TestShow_RelativeWithoutSite(t *testing.T) {
	var out bytes.Buffer
	err := Show(context.Background(), pix.NewClient(pix.ClientOptions{}), "/pix/angel.gif", Options{
		Width:  8,
		Writer: &out,
	})

	assert.NoError(t, err)
	assert.Empty(t, out.Bytes(), "expected no output for unresolvable source")
}

func TestShow_NilClient(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, Show(context.Background(), nil, "https://x/angel.gif", Options{Writer: &out}))
	assert.Empty(t, out.Bytes())
}

func TestShow_CancelledContext(t *testing.T) {
	data := tinyGIF(t)
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	var out bytes.Buffer
	err := Show(ctx, client, "/pix/angel.gif", Options{
		Width:  8,
		Writer: &out,
	})

	assert.NoError(t, err)
	assert.Empty(t, out.Bytes(), "expected no output on cancelled context")
}

func TestRender_Undecodable(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, Render([]byte("not an image"), Options{Width: 8, Writer: &out}))
	assert.Empty(t, out.Bytes())
}
