package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/shapeshift/internal/diagnostics"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// colorEnabled reports whether w is a terminal that accepts ANSI colors.
func colorEnabled(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, color: colorEnabled(w)}
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// diagnostics prints err. Aggregated diagnostics get one line each.
func (p *printer) diagnostics(union string, err error) {
	agg, ok := diagnostics.AsAggregate(err)
	if !ok {
		fmt.Fprintf(p.w, "%s: %v\n", p.paint(ansiBold, union), err)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", p.paint(ansiBold, union), p.paint(ansiRed, plural(len(agg.Errors), "error")))
	for _, e := range agg.Errors {
		fmt.Fprintf(p.w, "  %s: %s %s\n",
			e.Location(),
			p.paint(ansiRed, "["+string(e.Code)+"]"),
			e.Message)
	}
}

func (p *printer) ok(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiGreen, "ok"), fmt.Sprintf(format, args...))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
