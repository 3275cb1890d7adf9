// Package pix fetches icon images from the host that serves them.
package pix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultMaxBytes bounds a single image download.
const DefaultMaxBytes = 4 << 20

// ClientOptions configures a new Client.
type ClientOptions struct {
	// SiteURL resolves relative icon sources, e.g. https://moodle.example.com.
	SiteURL   string
	Verbose   bool
	UserAgent string
	MaxBytes  int64
	Logger    *slog.Logger
}

// Client downloads icon images with retries.
type Client struct {
	http      *http.Client
	siteURL   string
	userAgent string
	maxBytes  int64
}

// Image is a downloaded icon.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
}

// NewClient builds a Client with retry transport and optional verbose logging.
func NewClient(opts ClientOptions) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = "iconfilter-cli/dev"
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	var transport http.RoundTripper = &retryTransport{
		base:       http.DefaultTransport,
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
	}

	if opts.Verbose {
		transport = &loggingTransport{base: transport, logger: opts.Logger}
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
		siteURL:   opts.SiteURL,
		userAgent: ua,
		maxBytes:  maxBytes,
	}
}

// Resolve turns an icon src attribute into an absolute http(s) URL.
func (c *Client) Resolve(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing icon source %q: %w", src, err)
	}

	if !u.IsAbs() {
		if c.siteURL == "" {
			return "", fmt.Errorf("%w: %s is relative and no site URL is set", ErrNotFetchable, src)
		}

		base, err := url.Parse(c.siteURL)
		if err != nil {
			return "", fmt.Errorf("parsing site URL %q: %w", c.siteURL, err)
		}

		u = base.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrNotFetchable, u)
	}

	return u.String(), nil
}

// Fetch downloads the image at src.
func (c *Client) Fetch(ctx context.Context, src string) (*Image, error) {
	target, err := c.Resolve(src)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, target); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}

	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, target, c.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &Image{URL: target, ContentType: contentType, Data: data}, nil
}

// Download fetches src and writes it to destPath.
func (c *Client) Download(ctx context.Context, src, destPath string) error {
	img, err := c.Fetch(ctx, src)
	if err != nil {
		return err
	}

	if err := os.WriteFile(destPath, img.Data, 0o644); err != nil { //nolint:gosec // user-chosen output path
		return fmt.Errorf("writing %s: %w", destPath, err)
	}

	return nil
}

type clientCtxKey struct{}

// WithClient stores a Client in the context.
func WithClient(ctx context.Context, cl *Client) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, cl)
}

// ClientFromContext retrieves the Client from the context.
func ClientFromContext(ctx context.Context) *Client {
	if v := ctx.Value(clientCtxKey{}); v != nil {
		if cl, ok := v.(*Client); ok {
			return cl
		}
	}

	return nil
}
