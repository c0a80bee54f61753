package compiler

import "strings"

// storageSuffix is the struct storage-type naming convention: a declaration
// spelled "struct Point_s" registers the logical base name "Point" as well,
// so later method lookups work regardless of which spelling was declared.
const storageSuffix = "_s"

// ScanDeclarations forward-scans the unit once per kind of declaration and
// populates the context registries. It performs no rewriting; its only
// observable effect is the registry state consumed by the later passes.
func ScanDeclarations(u *Unit, ctx *Context) error {
	scanStructTypes(u, ctx)
	if err := scanEnums(u, ctx); err != nil {
		return err
	}
	scanMethods(u, ctx)
	return nil
}

// scanStructTypes records every "struct <name> {" definition. A struct
// keyword introducing a variable declarator ("struct Point p = {...}") is
// not a definition: the next solid token after the name must be "{".
func scanStructTypes(u *Unit, ctx *Context) {
	for i := 0; i < len(u.Tokens); i++ {
		if !u.Tokens[i].Is("struct") {
			continue
		}
		name := NextSolid(u, i+1)
		if name < 0 || u.Tokens[name].Kind != KindIdentifier {
			continue
		}
		open := NextSolid(u, name+1)
		if !solidIs(u, open, "{") {
			continue
		}
		text := u.Tokens[name].Text
		ctx.AddStructType(text, u.Tokens[name].Line)
		if base := strings.TrimSuffix(text, storageSuffix); base != text && base != "" {
			ctx.AddStructType(base, u.Tokens[name].Line)
		}
		if end := MatchDelim(u, open); end > 0 {
			i = end
		}
	}
}

// scanEnums records every enum definition with its members in declaration
// order. Member spellings must be upper-case-only; violations are style
// warnings, or hard errors under StrictEnumCase.
func scanEnums(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		if !u.Tokens[i].Is("enum") {
			continue
		}
		name := NextSolid(u, i+1)
		if name < 0 || u.Tokens[name].Kind != KindIdentifier {
			continue
		}
		open := NextSolid(u, name+1)
		if !solidIs(u, open, "{") {
			continue
		}
		end := MatchDelim(u, open)
		if end < 0 {
			return errAt(ctx, u.Tokens[open], "unterminated enum %q", u.Tokens[name].Text)
		}

		def := &EnumDef{Name: u.Tokens[name].Text}
		for j := NextSolid(u, open+1); j >= 0 && j < end; j = NextSolid(u, j+1) {
			t := u.Tokens[j]
			if t.Kind != KindIdentifier {
				return errAt(ctx, t, "expected enum member name, got %q", t.Text)
			}
			if t.Text != strings.ToUpper(t.Text) {
				if ctx.Config.StrictEnumCase {
					return errAt(ctx, t, "enum member %q must be upper-case", t.Text)
				}
				ctx.Reporter.Warnf(t.Line, "enum member %q should be upper-case", t.Text)
			}
			def.Members = append(def.Members, EnumMember{
				Name:     t.Text,
				Prefixed: prefixedMember(def.Name, t.Text),
			})

			// Skip an optional "= value" and stop at the separating comma.
			next := NextSolid(u, j+1)
			if solidIs(u, next, "=") {
				next = findSolid(u, next+1, end, ",")
			}
			if next < 0 || next >= end {
				break
			}
			j = next
		}
		ctx.AddEnum(def, u.Tokens[name].Line)
		i = end
	}
	return nil
}

// scanMethods records every "Type.method(params) {" declaration for a
// registered struct type. Call sites do not match: the token after the
// closing paren must be "{".
func scanMethods(u *Unit, ctx *Context) {
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.Kind != KindIdentifier || !ctx.HasStructType(t.Text) {
			continue
		}
		dot := NextSolid(u, i+1)
		if !solidIs(u, dot, ".") {
			continue
		}
		method := NextSolid(u, dot+1)
		if method < 0 || u.Tokens[method].Kind != KindIdentifier {
			continue
		}
		open := NextSolid(u, method+1)
		if !solidIs(u, open, "(") {
			continue
		}
		close := MatchDelim(u, open)
		if close < 0 {
			continue
		}
		body := NextSolid(u, close+1)
		if !solidIs(u, body, "{") {
			continue
		}
		ctx.AddMethod(strings.TrimSuffix(t.Text, storageSuffix), u.Tokens[method].Text, u.Tokens[method].Line)
		i = open
	}
}
