package banner

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Print writes the start-up banner to w. Callers send it to stderr so it
// never mixes with a report on stdout.
func Print(w io.Writer) {
	fig := figure.NewFigure("HHUNTER", "doom", true)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = red.Fprintln(w, fig.String())
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintln(w, "    Security Header Audit | Author: https://github.com/selimozcann")
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}
