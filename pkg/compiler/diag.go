package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Diag is a structural validation error. It is fatal to the whole unit:
// the pipeline stops before any later pass runs and no output is emitted.
type Diag struct {
	File string
	Line int
	Msg  string
}

func (d *Diag) Error() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Msg)
}

// errAt builds a Diag for the token at index i of the unit.
func errAt(ctx *Context, t *Token, format string, args ...any) error {
	return &Diag{File: ctx.File, Line: t.Line, Msg: fmt.Sprintf(format, args...)}
}

// Reporter emits non-fatal diagnostics. Warnings never block compilation.
type Reporter struct {
	Out      io.Writer
	File     string
	Lines    []string // source split by line, for the offending-line echo
	Warnings int
}

// NewReporter builds a reporter for one unit. out may be nil to discard.
func NewReporter(out io.Writer, file, src string) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{Out: out, File: file, Lines: strings.Split(src, "\n")}
}

// Warnf prints one warning in the fixed diagnostic format, followed by a
// trimmed echo of the offending source line when it is available.
func (r *Reporter) Warnf(line int, format string, args ...any) {
	r.Warnings++
	fmt.Fprintf(r.Out, "[CZAR] WARNING at %s:%d: %s\n", r.File, line, fmt.Sprintf(format, args...))
	if line >= 1 && line <= len(r.Lines) {
		if echo := strings.TrimSpace(r.Lines[line-1]); echo != "" {
			fmt.Fprintf(r.Out, "  %s\n", echo)
		}
	}
}
