package renamer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter prints human-readable progress lines.
type Reporter struct {
	out     io.Writer
	verbose bool

	phase   *color.Color
	detail  *color.Color
	success *color.Color
	warn    *color.Color
}

// NewReporter returns a Reporter writing to w. Detail lines are only printed when verbose is set.
func NewReporter(w io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:     w,
		verbose: verbose,
		phase:   color.New(color.FgCyan, color.Bold),
		detail:  color.New(color.FgHiBlack),
		success: color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
	}
}

// Phase announces the start of a step.
func (r *Reporter) Phase(format string, args ...any) {
	if r == nil {
		return
	}
	r.line(r.phase, format, args...)
}

// Detail prints per-file information in verbose mode.
func (r *Reporter) Detail(format string, args ...any) {
	if r == nil || !r.verbose {
		return
	}
	r.line(r.detail, format, args...)
}

// Item prints a plain, uncolored line.
func (r *Reporter) Item(format string, args ...any) {
	if r == nil || r.out == nil {
		return
	}
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// Success prints the final line of a completed run.
func (r *Reporter) Success(format string, args ...any) {
	if r == nil {
		return
	}
	r.line(r.success, format, args...)
}

// Warn prints something the user should look at but that does not stop the run.
func (r *Reporter) Warn(format string, args ...any) {
	if r == nil {
		return
	}
	r.line(r.warn, format, args...)
}

func (r *Reporter) line(c *color.Color, format string, args ...any) {
	if r.out == nil {
		return
	}
	_, _ = c.Fprintln(r.out, fmt.Sprintf(format, args...))
}
