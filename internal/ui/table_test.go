package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable_NoColor(t *testing.T) {
	headers := []string{"Token", "Icon"}
	rows := [][]string{
		{"(angel)", "angel"},
		{"(bear)", "hug"},
	}

	out := RenderTable(headers, rows, false)
	assert.Contains(t, out, "(angel)")
	assert.Contains(t, out, "(bear)")
	assert.Contains(t, out, "hug")
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, "Icon")
}

func TestRenderTable_WithColor(t *testing.T) {
	out := RenderTable([]string{"Token", "Icon"}, [][]string{{"(yawn)", "yawn"}}, true)
	assert.Contains(t, out, "(yawn)")
}

func TestRenderTable_Empty(t *testing.T) {
	out := RenderTable([]string{"Token", "Icon"}, nil, false)
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, "Icon")
}

func TestRenderTable_HasBorders(t *testing.T) {
	out := RenderTable([]string{"Col"}, [][]string{{"val"}}, false)
	assert.True(t, strings.Contains(out, "│") || strings.Contains(out, "|"),
		"expected border character in output")
}

func TestRenderFields(t *testing.T) {
	out := RenderFields([][2]string{
		{"Token", "(yawn)"},
		{"Label", "yawn!"},
		{"Src", "/filter/skypeicons/pix/yawn.gif"},
	}, false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Token: (yawn)", lines[0])
	assert.Equal(t, "Label: yawn!", lines[1])
	assert.Equal(t, "Src:   /filter/skypeicons/pix/yawn.gif", lines[2])
}
