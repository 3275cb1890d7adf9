package pix

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFetchable is returned for icon sources that cannot be turned into an
// http(s) URL, such as a relative path with no site URL configured.
var ErrNotFetchable = errors.New("icon source is not fetchable")

// ErrTooLarge is returned when an image exceeds the client's size limit.
var ErrTooLarge = errors.New("icon image too large")

// Error is a non-2xx response from the image host.
type Error struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s: %s (HTTP %d)", e.URL, e.Message, e.StatusCode)
}

func checkResponse(resp *http.Response, target string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &Error{
		StatusCode: resp.StatusCode,
		URL:        target,
		Message:    statusMessage(resp.StatusCode),
	}
}

func statusMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "icon not found"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusTooManyRequests:
		return "rate limited, try again later"
	default:
		return fmt.Sprintf("unexpected error (HTTP %d)", code)
	}
}
