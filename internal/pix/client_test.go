package pix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func newTestClient(siteURL string) *Client {
	return &Client{
		http: &http.Client{
			Transport: &retryTransport{
				base:       http.DefaultTransport,
				maxRetries: 3,
				baseDelay:  1 * time.Millisecond,
			},
		},
		siteURL:   siteURL,
		userAgent: "iconfilter-cli/test",
		maxBytes:  1024,
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		site    string
		src     string
		want    string
		wantErr error
	}{
		{"absolute", "", "https://cdn.example.com/pix/angel.gif", "https://cdn.example.com/pix/angel.gif", nil},
		{"relative with site", "https://moodle.example.com/", "/filter/skypeicons/pix/angel.gif", "https://moodle.example.com/filter/skypeicons/pix/angel.gif", nil},
		{"site with path", "https://example.com/moodle/", "pix/angel", "https://example.com/moodle/pix/angel", nil},
		{"relative without site", "", "/filter/skypeicons/pix/angel", "", ErrNotFetchable},
		{"data url", "", "data:image/gif;base64,R0lG", "", ErrNotFetchable},
		{"file url", "", "file:///etc/passwd", "", ErrNotFetchable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestClient(tt.site).Resolve(tt.src)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch(t *testing.T) {
	var gotUA, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(gifBytes)
	}))
	defer srv.Close()

	img, err := newTestClient(srv.URL).Fetch(context.Background(), "/pix/angel.gif")
	require.NoError(t, err)

	assert.Equal(t, "iconfilter-cli/test", gotUA)
	assert.Equal(t, "/pix/angel.gif", gotPath)
	assert.Equal(t, srv.URL+"/pix/angel.gif", img.URL)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.Equal(t, gifBytes, img.Data)
}

func TestFetch_SniffsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(gifBytes)
	}))
	defer srv.Close()

	img, err := newTestClient(srv.URL).Fetch(context.Background(), "/angel")
	require.NoError(t, err)
	assert.Equal(t, "image/gif", img.ContentType)
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), "/big")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), "/missing")
	require.Error(t, err)

	var pixErr *Error
	require.ErrorAs(t, err, &pixErr)
	assert.Equal(t, http.StatusNotFound, pixErr.StatusCode)
	assert.Equal(t, "icon not found", pixErr.Message)
	assert.Equal(t, srv.URL+"/missing", pixErr.URL)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(gifBytes)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "angel.gif")
	require.NoError(t, newTestClient(srv.URL).Download(context.Background(), "/angel.gif", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, gifBytes, data)
}

// --- Retry transport tests ---

func TestRetryTransport_RetryOn5xx(t *testing.T) {
	var callCount atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if callCount.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		_, _ = w.Write(gifBytes)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), "/retry")
	require.NoError(t, err)
	assert.Equal(t, int32(3), callCount.Load())
}

func TestRetryTransport_NoRetryOn4xx(t *testing.T) {
	var callCount atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), "/denied")
	require.Error(t, err)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestRetryTransport_MaxRetries(t *testing.T) {
	var callCount atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), "/down")
	require.Error(t, err)

	// initial + 3 retries = 4 calls
	assert.Equal(t, int32(4), callCount.Load())
}

func TestRetryTransport_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.http.Transport = &retryTransport{
		base:       http.DefaultTransport,
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Fetch(ctx, "/cancel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestRetryDelay(t *testing.T) {
	withHeader := func(v string) *http.Response {
		resp := &http.Response{Header: http.Header{}}
		if v != "" {
			resp.Header.Set("Retry-After", v)
		}

		return resp
	}

	base := 100 * time.Millisecond

	assert.Equal(t, base, retryDelay(withHeader(""), base, 0))
	assert.Equal(t, 4*base, retryDelay(withHeader(""), base, 2))
	assert.Equal(t, 2*time.Second, retryDelay(withHeader("2"), base, 0))
	assert.Equal(t, maxRetryAfter, retryDelay(withHeader("3600"), base, 0))
	assert.Equal(t, 2*base, retryDelay(withHeader("Wed, 21 Oct 2015 07:28:00 GMT"), base, 1))
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
		{504, true},
		{505, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldRetry(tt.code), "status %d", tt.code)
	}
}

func TestLoggingTransport_WrapsBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(gifBytes)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{SiteURL: srv.URL, Verbose: true})

	_, ok := c.http.Transport.(*loggingTransport)
	require.True(t, ok)

	img, err := c.Fetch(context.Background(), "/log")
	require.NoError(t, err)
	assert.Equal(t, gifBytes, img.Data)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientOptions{})
	assert.Equal(t, "iconfilter-cli/dev", c.userAgent)
	assert.Equal(t, int64(DefaultMaxBytes), c.maxBytes)
}

func TestWithClient_RoundTrip(t *testing.T) {
	c := NewClient(ClientOptions{})
	ctx := WithClient(context.Background(), c)

	assert.Same(t, c, ClientFromContext(ctx))
	assert.Nil(t, ClientFromContext(context.Background()))
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 404, URL: "https://x/angel.gif", Message: "icon not found"}
	assert.Equal(t, "fetching https://x/angel.gif: icon not found (HTTP 404)", e.Error())
}
