// Package ui writes status lines to the terminal. Colors follow the
// --color flag, NO_COLOR and the detected terminal profile.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ErrInvalidColor is returned when an unsupported --color value is given.
var ErrInvalidColor = errors.New("invalid --color value")

// ColorMode is the parsed --color value.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode normalizes s. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected auto|always|never)", ErrInvalidColor, string(m))
	}
}

// Options configures the UI. Nil writers mean the process streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string
}

// UI holds one Printer per output stream.
type UI struct {
	out *Printer
	err *Printer
}

// New resolves the color mode and builds both printers.
func New(opts Options) (*UI, error) {
	mode, err := ParseColorMode(opts.Color)
	if err != nil {
		return nil, err
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &UI{out: newPrinter(opts.Stdout, mode), err: newPrinter(opts.Stderr, mode)}, nil
}

// Out is the stdout printer, used for tables and results.
func (u *UI) Out() *Printer { return u.out }

// Err is the stderr printer, used for warnings and progress.
func (u *UI) Err() *Printer { return u.err }

// tone is a line style. The zero tone is plain.
type tone int

const (
	tonePlain tone = iota
	toneWarn
	toneMuted
	toneOK
)

var toneColor = map[tone]string{
	toneWarn: "#f59e0b",
	toneOK:   "#22c55e",
}

var tonePrefix = map[tone]string{
	toneWarn: "Warning: ",
}

// Printer writes styled lines to one stream.
type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

func newPrinter(w io.Writer, mode ColorMode) *Printer {
	profile := termenv.NewOutput(w, termenv.WithProfile(termenv.EnvColorProfile())).Profile

	switch {
	case termenv.EnvNoColor(), mode == ColorNever:
		profile = termenv.Ascii
	case mode == ColorAlways:
		profile = termenv.TrueColor
	}

	return &Printer{w: w, profile: profile}
}

// ColorEnabled reports whether lines are styled.
func (p *Printer) ColorEnabled() bool { return p.profile != termenv.Ascii }

func (p *Printer) emit(t tone, format string, args ...any) {
	msg := tonePrefix[t] + fmt.Sprintf(format, args...)

	if p.ColorEnabled() {
		s := termenv.String(msg)
		if c, ok := toneColor[t]; ok {
			s = s.Foreground(p.profile.Color(c))
		}

		if t == toneMuted {
			s = s.Faint()
		}

		msg = s.String()
	}

	_, _ = io.WriteString(p.w, msg+"\n")
}

// Warnf writes a "Warning: " line, amber when colored.
func (p *Printer) Warnf(format string, args ...any) { p.emit(toneWarn, format, args...) }

// Dimf writes a faint line for counts and hints.
func (p *Printer) Dimf(format string, args ...any) { p.emit(toneMuted, format, args...) }

// Successf writes a green line.
func (p *Printer) Successf(format string, args ...any) { p.emit(toneOK, format, args...) }

type uiCtxKey struct{}

// WithUI stores the UI in the context.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, uiCtxKey{}, u)
}

// FromContext returns the UI stored by WithUI, or nil.
func FromContext(ctx context.Context) *UI {
	u, _ := ctx.Value(uiCtxKey{}).(*UI)

	return u
}
