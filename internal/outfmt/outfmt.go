// Package outfmt selects between human and JSON output. Filtered HTML is
// written without HTML escaping in both.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode is the output mode for one invocation.
type Mode struct {
	JSON bool
}

type ctxKey struct{}

// WithMode stores mode in ctx.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, ctxKey{}, mode)
}

// FromContext returns the stored mode; human output when none is set.
func FromContext(ctx context.Context) Mode {
	m, _ := ctx.Value(ctxKey{}).(Mode)

	return m
}

// IsJSON reports whether ctx asks for JSON output.
func IsJSON(ctx context.Context) bool { return FromContext(ctx).JSON }

// WriteJSON writes v indented by two spaces.
func WriteJSON(w io.Writer, v any) error { return encode(w, v, "  ") }

// WriteJSONLine writes v on a single line, one value per filtered source.
func WriteJSONLine(w io.Writer, v any) error { return encode(w, v, "") }

func encode(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}
