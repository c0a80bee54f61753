package compiler

import (
	"io"
	"strings"
)

// Run executes the lowering pipeline over one translation unit, in the fixed
// pass order: declaration scan, struct and method lowering, mutability and
// cast enforcement, enum and switch validation, loop and access desugaring.
// Each pass completes fully before the next starts; the first structural
// error aborts the run, since later passes assume earlier invariants hold.
func Run(u *Unit, ctx *Context) error {
	scanPragmas(u, ctx)
	if err := ScanDeclarations(u, ctx); err != nil {
		return err
	}
	passes := []func(*Unit, *Context) error{
		LowerStructs,
		EnforceMutability,
		CheckSwitches,
		DesugarLoops,
	}
	for _, pass := range passes {
		if err := pass(u, ctx); err != nil {
			return err
		}
	}
	return nil
}

// scanPragmas reads "#pragma czar debug true|false" directives into the
// context. The directives themselves are left untouched in the stream; only
// the surrounding code is rewritten.
func scanPragmas(u *Unit, ctx *Context) {
	for _, t := range u.Tokens {
		if t.Kind != KindDirective {
			continue
		}
		fields := strings.Fields(t.Text)
		if len(fields) == 4 && fields[0] == "#pragma" && fields[1] == "czar" && fields[2] == "debug" {
			ctx.Debug = fields[3] == "true"
		}
	}
}

// Transpile is the whole front-to-back path for one unit: lex, run the
// pipeline, emit C. Warnings go to the given writer; a structural error
// returns with no output, partial or otherwise.
func Transpile(file, src string, cfg Config, warnings io.Writer) (string, error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", err
	}
	u := NewUnit(file, tokens)
	ctx := NewContext(file, src, cfg, warnings)
	if err := Run(u, ctx); err != nil {
		return "", err
	}
	return Emit(u, ctx), nil
}
