// Package statuscolor colours severities and HTTP status codes for terminal
// output. Colour is always decided by the caller, never by terminal
// detection, so rendered reports stay byte-identical for identical input.
package statuscolor

import (
	"fmt"
	"net/http"

	"github.com/fatih/color"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// Palette wraps text in ANSI colours when enabled.
type Palette struct {
	enabled bool
	red     *color.Color
	yellow  *color.Color
	green   *color.Color
	cyan    *color.Color
	gray    *color.Color
	bold    *color.Color
}

// New returns a palette that colours when enabled is true and is a no-op
// otherwise.
func New(enabled bool) Palette {
	p := Palette{
		enabled: enabled,
		red:     color.New(color.FgRed, color.Bold),
		yellow:  color.New(color.FgYellow),
		green:   color.New(color.FgGreen),
		cyan:    color.New(color.FgCyan),
		gray:    color.New(color.FgHiBlack),
		bold:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.red, p.yellow, p.green, p.cyan, p.gray, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Enabled reports whether the palette emits escape codes.
func (p Palette) Enabled() bool { return p.enabled }

// Severity colours text by severity: fail red, warn yellow, info cyan.
func (p Palette) Severity(sev model.Severity, text string) string {
	switch sev {
	case model.SeverityFail:
		return p.red.Sprint(text)
	case model.SeverityWarn:
		return p.yellow.Sprint(text)
	case model.SeverityInfo:
		return p.cyan.Sprint(text)
	}
	return text
}

func (p Palette) forStatus(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return p.green
	case status >= 300 && status < 400:
		return p.yellow
	default:
		return p.red
	}
}

// Status returns a colourised status code; 0 renders as a gray dash.
func (p Palette) Status(status int) string {
	if status == 0 {
		return p.gray.Sprint("-")
	}
	return p.forStatus(status).Sprint(fmt.Sprintf("%d %s", status, http.StatusText(status)))
}

// Gray dims text.
func (p Palette) Gray(text string) string {
	return p.gray.Sprint(text)
}

// Bold emphasises text.
func (p Palette) Bold(text string) string {
	return p.bold.Sprint(text)
}

// OK marks a pass line.
func (p Palette) OK(text string) string {
	return p.green.Sprint(text)
}
