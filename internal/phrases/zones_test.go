package phrases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIgnoreZones_Mismatch(t *testing.T) {
	_, err := NewIgnoreZones([]string{"<x>", "<y>"}, []string{"</x>"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarkerMismatch)
}

func TestNewIgnoreZones_BadExpression(t *testing.T) {
	_, err := NewIgnoreZones([]string{"<x("}, []string{"</x>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling open marker")

	_, err = NewIgnoreZones([]string{"<x>"}, []string{"</x("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling close marker")
}

func TestNewIgnoreZones_EmptyOpenMarker(t *testing.T) {
	for _, marker := range []string{"", "x*", "(?:<b>)?", "^"} {
		t.Run(marker, func(t *testing.T) {
			_, err := NewIgnoreZones([]string{marker}, []string{"</b>"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyMarker)
		})
	}
}

func TestSpans_ZeroWidthMatchOpensNothing(t *testing.T) {
	// \b can only match zero-width but does not match empty text.
	z, err := NewIgnoreZones([]string{`\b`}, []string{"z"})
	require.NoError(t, err)

	assert.Nil(t, z.Spans("ab cd", true))
}

func TestSpans_CustomLinkMarker(t *testing.T) {
	for _, open := range []string{`<a\b`, `<a`} {
		t.Run(open, func(t *testing.T) {
			z, err := NewIgnoreZones([]string{open}, []string{"</a>"})
			require.NoError(t, err)

			text := `<a href="h">(angel)</a>`
			assert.Equal(t, []Span{{0, 12}, {19, 23}}, z.Spans(text, true))
			assert.Equal(t, []Span{{0, 23}}, z.Spans(text, false))

			// <a-x> is not a link start tag and still opens the zone.
			assert.Equal(t, []Span{{0, 12}}, z.Spans("<a-x>(x)</a>!", true))
		})
	}
}

func TestDefaultIgnoreZones_Paired(t *testing.T) {
	z := DefaultIgnoreZones()
	assert.Len(t, z.Open, 7)
	assert.Len(t, z.Close, 7)
}

func TestSpans(t *testing.T) {
	z := DefaultIgnoreZones()

	tests := []struct {
		name          string
		text          string
		linkException bool
		want          []Span
	}{
		{"plain text", "hello (angel)", true, nil},
		{"single tags", "<b>x</b>", true, []Span{{0, 3}, {4, 8}}},
		{"script block", "a<script>x</script>b", true, []Span{{1, 19}}},
		{"unterminated script", "a<script>x", true, []Span{{1, 10}}},
		{"link tags only", `<a href="h">t</a>`, true, []Span{{0, 12}, {13, 17}}},
		{"link block", `<a href="h">t</a>!`, false, []Span{{0, 17}}},
		{"unterminated tag", "x <p id=", true, []Span{{2, 8}}},
		{"comment", "<!-- (angel) -->y", true, []Span{{0, 16}}},
		{"two scripts", "<script>1</script>-<script>2</script>", true, []Span{{0, 18}, {19, 37}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, z.Spans(tt.text, tt.linkException))
		})
	}
}

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]Span{{10, 12}, {0, 5}, {3, 8}, {8, 9}, {20, 30}, {21, 22}})
	assert.Equal(t, []Span{{0, 9}, {10, 12}, {20, 30}}, got)
}
