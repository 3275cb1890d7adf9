// Package tui provides the interactive Bubbletea picker for icon tokens.
package tui

import "fmt"

// IconItem is one token in the picker. It implements list.DefaultItem.
type IconItem struct {
	Token string
	Icon  string
	Label string
	Alias bool
}

// Title returns the token as typed in text, e.g. "(angel)".
func (i IconItem) Title() string { return i.Token }

// Description shows the icon label, and the target for aliases.
func (i IconItem) Description() string {
	if i.Alias {
		return fmt.Sprintf("alias of %s | %s", i.Icon, i.Label)
	}

	return i.Label
}

// FilterValue is matched by the fuzzy filter.
func (i IconItem) FilterValue() string {
	return i.Token + " " + i.Icon + " " + i.Label
}
