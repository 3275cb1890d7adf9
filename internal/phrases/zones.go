package phrases

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

var (
	// ErrMarkerMismatch is returned when open and close marker lists differ in length.
	ErrMarkerMismatch = errors.New("open and close markers must pair up")

	// ErrEmptyMarker is returned for an open marker that can match no text.
	ErrEmptyMarker = errors.New("open marker must not match empty text")
)

// Span is a half-open byte range [Start, End) of the input text.
type Span struct {
	Start int
	End   int
}

// IgnoreZones pairs open and close markers: Open[i] is closed by Close[i].
// Text between a marker pair is never scanned for tokens.
type IgnoreZones struct {
	Open  []*regexp.Regexp
	Close []*regexp.Regexp
}

var (
	// tagPattern matches a single HTML tag. An unterminated tag runs to end of text.
	tagPattern = regexp.MustCompile(`<[a-zA-Z/!?][^>]*(?:>|$)`)

	linkOpenPattern = regexp.MustCompile(`(?i)^<a(?:\s|>)`)

	defaultOpen = []string{
		`<head\b`,
		`<nolink\b`,
		`<span\s[^>]*class\s*=\s*["']?nolink["']?[^>]*>`,
		`<script\b`,
		`<textarea\b`,
		`<select\b`,
		`<a\s[^>]*>`,
	}

	defaultClose = []string{
		`</head>`,
		`</nolink>`,
		`</span>`,
		`</script>`,
		`</textarea>`,
		`</select>`,
		`</a>`,
	}
)

// NewIgnoreZones compiles parallel open/close marker expressions.
// Markers match case-insensitively and across newlines. Open markers that
// match the empty string are rejected.
func NewIgnoreZones(openMarkers, closeMarkers []string) (IgnoreZones, error) {
	if len(openMarkers) != len(closeMarkers) {
		return IgnoreZones{}, fmt.Errorf("%w: %d open, %d close", ErrMarkerMismatch, len(openMarkers), len(closeMarkers))
	}

	z := IgnoreZones{
		Open:  make([]*regexp.Regexp, len(openMarkers)),
		Close: make([]*regexp.Regexp, len(closeMarkers)),
	}

	for i := range openMarkers {
		o, err := regexp.Compile("(?is)" + openMarkers[i])
		if err != nil {
			return IgnoreZones{}, fmt.Errorf("compiling open marker %q: %w", openMarkers[i], err)
		}

		if o.MatchString("") {
			return IgnoreZones{}, fmt.Errorf("%w: %q", ErrEmptyMarker, openMarkers[i])
		}

		c, err := regexp.Compile("(?is)" + closeMarkers[i])
		if err != nil {
			return IgnoreZones{}, fmt.Errorf("compiling close marker %q: %w", closeMarkers[i], err)
		}

		z.Open[i] = o
		z.Close[i] = c
	}

	return z, nil
}

// DefaultIgnoreZones returns the standard markers: head, nolink,
// span.nolink, script, textarea, select and a.
func DefaultIgnoreZones() IgnoreZones {
	z, err := NewIgnoreZones(defaultOpen, defaultClose)
	if err != nil {
		panic(err)
	}

	return z
}

// Spans returns the sorted, merged ranges of text that must not be scanned.
//
// Each marker kind is matched independently, left to right: an open match
// pairs with the next close match of the same kind, and an open match with
// no close extends to end of text. With linkException set, an <a> start tag
// never opens a zone, whichever marker matched it. Zero-width matches open
// nothing. Every HTML tag is a zone on its own.
func (z IgnoreZones) Spans(text string, linkException bool) []Span {
	var spans []Span

	n := min(len(z.Open), len(z.Close))
	for k := range n {
		spans = append(spans, markerSpans(text, z.Open[k], z.Close[k], linkException)...)
	}

	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}

	return mergeSpans(spans)
}

func markerSpans(text string, openRe, closeRe *regexp.Regexp, linkException bool) []Span {
	var spans []Span

	pos := 0
	for pos < len(text) {
		loc := openRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		start, openEnd := pos+loc[0], pos+loc[1]
		if openEnd == start {
			pos = start + 1

			continue
		}

		if linkException && linkOpenPattern.MatchString(text[start:]) {
			pos = openEnd

			continue
		}

		end := len(text)
		if c := closeRe.FindStringIndex(text[openEnd:]); c != nil {
			end = openEnd + c[1]
		}

		spans = append(spans, Span{Start: start, End: end})
		pos = end
	}

	return spans
}

func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}

		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)

			continue
		}

		merged = append(merged, s)
	}

	return merged
}
