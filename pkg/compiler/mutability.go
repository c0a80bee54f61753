package compiler

import "strings"

// castMaxima maps a czar primitive to the <stdint.h> macro naming its
// maximum value, used by the bounds-checked two-argument cast form.
var castMaxima = map[string]string{
	"i8":    "INT8_MAX",
	"i16":   "INT16_MAX",
	"i32":   "INT32_MAX",
	"i64":   "INT64_MAX",
	"u8":    "UINT8_MAX",
	"u16":   "UINT16_MAX",
	"u32":   "UINT32_MAX",
	"u64":   "UINT64_MAX",
	"usize": "SIZE_MAX",
}

// EnforceMutability is the mutability and cast safety pass: it rejects the
// output language's immutability qualifier and legacy casts in source,
// lowers cast<T>() syntax, synthesizes const on every declaration not marked
// mut, strips the marker, and validates writable parameters.
func EnforceMutability(u *Unit, ctx *Context) error {
	if err := validateCastSource(u, ctx); err != nil {
		return err
	}
	if err := lowerCasts(u, ctx); err != nil {
		return err
	}
	return applyConstDefault(u, ctx)
}

// validateCastSource rejects constructs the rest of the pass would otherwise
// generate itself: a literal "const" in source, and legacy C-style casts
// "(T)value" on recognized primitives. All casts go through cast<T>().
func validateCastSource(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.Is("const") {
			return errAt(ctx, t, "const is implicit; mark writable declarations with mut instead")
		}
		if !t.Is("(") {
			continue
		}
		typ := NextSolid(u, i+1)
		if typ < 0 || !typeKeywords[u.Tokens[typ].Text] {
			continue
		}
		close := NextSolid(u, typ+1)
		if !solidIs(u, close, ")") {
			continue
		}
		// "(u8)x" is a cast only when a value follows; "(void)" parameter
		// lists and the like are left alone.
		after := NextSolid(u, close+1)
		if after < 0 {
			continue
		}
		switch u.Tokens[after].Kind {
		case KindIdentifier, KindNumber, KindString:
			return errAt(ctx, t, "legacy cast (%s) is not allowed; use cast<%s>(value, fallback)",
				u.Tokens[typ].Text, u.Tokens[typ].Text)
		case KindPunct:
			if u.Tokens[after].Is("(") {
				return errAt(ctx, t, "legacy cast (%s) is not allowed; use cast<%s>(value, fallback)",
					u.Tokens[typ].Text, u.Tokens[typ].Text)
			}
		}
	}
	return nil
}

// cloneSolid copies the solid tokens of [from, to) for re-insertion
// elsewhere in the stream, separated by single spaces.
func cloneSolid(u *Unit, from, to int) []*Token {
	var out []*Token
	for i := from; i < to && i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.trivia() {
			continue
		}
		if len(out) > 0 {
			out = append(out, space(t.Line, t.Col))
		}
		out = append(out, tok(t.Kind, t.Text, t.Line, t.Col))
	}
	return out
}

// lowerCasts rewrites the explicit cast syntax.
//
// The two-argument form cast<T>(v, fallback) lowers to the bounds-checked
// ternary (v > T_MAX ? fallback : (T)v). The one-argument form lowers to a
// plain parenthesized cast and earns a warning recommending the fallback
// form.
func lowerCasts(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if !t.Is("cast") {
			continue
		}
		lt := NextSolid(u, i+1)
		if !solidIs(u, lt, "<") {
			return errAt(ctx, t, "malformed cast; expected cast<type>(value, fallback)")
		}
		typ := NextSolid(u, lt+1)
		if typ < 0 || !typeKeywords[u.Tokens[typ].Text] {
			return errAt(ctx, t, "cast requires a primitive target type")
		}
		gt := NextSolid(u, typ+1)
		if !solidIs(u, gt, ">") {
			return errAt(ctx, t, "malformed cast; expected cast<type>(value, fallback)")
		}
		open := NextSolid(u, gt+1)
		if !solidIs(u, open, "(") {
			return errAt(ctx, t, "malformed cast; expected cast<type>(value, fallback)")
		}
		close := MatchDelim(u, open)
		if close < 0 {
			return errAt(ctx, t, "unterminated cast")
		}

		typeName := u.Tokens[typ].Text
		ln, cl := t.Line, t.Col
		comma := findSolid(u, open+1, close, ",")

		var repl []*Token
		if comma >= 0 {
			max, ok := castMaxima[typeName]
			if !ok {
				return errAt(ctx, t, "cast<%s> has no maximum value; fallback form unsupported for this type", typeName)
			}
			value := cloneSolid(u, open+1, comma)
			fallback := cloneSolid(u, comma+1, close)
			if len(value) == 0 || len(fallback) == 0 {
				return errAt(ctx, t, "cast<%s> needs a value and a fallback", typeName)
			}
			repl = append(repl, tok(KindPunct, "(", ln, cl))
			repl = append(repl, value...)
			repl = append(repl, space(ln, cl), tok(KindOperator, ">", ln, cl), space(ln, cl),
				tok(KindIdentifier, max, ln, cl), space(ln, cl),
				tok(KindOperator, "?", ln, cl), space(ln, cl))
			repl = append(repl, fallback...)
			repl = append(repl, space(ln, cl), tok(KindPunct, ":", ln, cl), space(ln, cl),
				tok(KindPunct, "(", ln, cl), tok(KindKeyword, typeName, ln, cl), tok(KindPunct, ")", ln, cl))
			repl = append(repl, value...)
			repl = append(repl, tok(KindPunct, ")", ln, cl))
		} else {
			ctx.Reporter.Warnf(t.Line, "cast<%s> without a fallback is unchecked; prefer cast<%s>(value, fallback)",
				typeName, typeName)
			value := cloneSolid(u, open+1, close)
			if len(value) == 0 {
				return errAt(ctx, t, "cast<%s> needs a value", typeName)
			}
			repl = append(repl, tok(KindPunct, "(", ln, cl), tok(KindKeyword, typeName, ln, cl),
				tok(KindPunct, ")", ln, cl), tok(KindPunct, "(", ln, cl))
			repl = append(repl, value...)
			repl = append(repl, tok(KindPunct, ")", ln, cl))
		}

		for j := i; j <= close; j++ {
			Blank(u.Tokens[j])
		}
		Insert(u, i, repl...)
		i += len(repl)
	}
	return nil
}

// typeStarter reports whether the token can open a declaration: a primitive
// type keyword, or an identifier naming a registered struct or enum type
// (under either the base or the storage spelling).
func typeStarter(ctx *Context, t *Token) bool {
	if t.Kind == KindKeyword && typeKeywords[t.Text] {
		return true
	}
	if t.Kind != KindIdentifier {
		return false
	}
	name := t.Text
	if ctx.HasStructType(name) || ctx.EnumByName(name) != nil {
		return true
	}
	base := strings.TrimSuffix(name, storageSuffix)
	return base != name && ctx.HasStructType(base)
}

// declStarters are the solid tokens a declaration may directly follow.
var declStarters = map[string]bool{
	"(": true, ",": true, ";": true, "{": true, "}": true, "mut": true,
}

// applyConstDefault walks every declaration site. Declarations marked mut
// keep their writability (the marker itself is stripped); everything else
// gets the output immutability qualifier synthesized in front of its type.
// Struct bodies, typedef lines, receiver parameters and range-loop headers
// are exempt. A mut parameter that is not a pointer is a hard error, and a
// local or global variable without an initializer is a hard error.
func applyConstDefault(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.trivia() {
			continue
		}

		switch t.Text {
		case "typedef":
			// Covers the generated struct typedefs, body included.
			if end := findSolid(u, i+1, len(u.Tokens), ";"); end > 0 {
				i = end
			}
			continue
		case "struct", "enum":
			// A bare definition body holds fields/members, never
			// const-qualified declarations.
			name := NextSolid(u, i+1)
			open := NextSolid(u, name+1)
			if name >= 0 && solidIs(u, open, "{") {
				if end := MatchDelim(u, open); end > 0 {
					i = end
				}
			}
			continue
		case "for":
			// Range and collection headers are desugared later and their
			// induction variables are implicitly writable.
			open := NextSolid(u, i+1)
			if solidIs(u, open, "(") {
				if close := MatchDelim(u, open); close > 0 {
					if findSolid(u, open+1, close, ":") >= 0 {
						i = close
						continue
					}
				}
			}
			continue
		}

		if !typeStarter(ctx, t) {
			continue
		}
		prev := PrevSolid(u, i-1)
		if prev >= 0 && !declStarters[u.Tokens[prev].Text] {
			continue
		}

		writable := prev >= 0 && u.Tokens[prev].Is("mut")

		// Skim pointer stars to the declared name.
		ptr := false
		k := NextSolid(u, i+1)
		for solidIs(u, k, "*") {
			ptr = true
			k = NextSolid(u, k+1)
		}
		if k < 0 || u.Tokens[k].Kind != KindIdentifier {
			continue // not a declaration (cast operand, sizeof, ...)
		}
		name := u.Tokens[k]

		after := NextSolid(u, k+1)
		if solidIs(u, after, "(") {
			// Function declarator: the return type is neither const- nor
			// mut-qualified. Empty parameter lists are a style issue,
			// auto-corrected to (void).
			close := MatchDelim(u, after)
			inner := NextSolid(u, after+1)
			if close >= 0 && inner == close {
				ctx.Reporter.Warnf(name.Line, "empty parameter list on %q; use (void)", name.Text)
				Insert(u, after+1, tok(KindKeyword, "void", name.Line, name.Col))
			}
			i = after
			continue
		}

		if name.Is("self") {
			// Receiver parameter: always writable, never qualified.
			i = k
			continue
		}

		// Skim array suffixes.
		for solidIs(u, after, "[") {
			end := MatchDelim(u, after)
			if end < 0 {
				break
			}
			after = NextSolid(u, end+1)
		}

		if solidIs(u, after, ";") {
			return errAt(ctx, name, "declaration of %q has no initializer", name.Text)
		}
		isParam := solidIs(u, after, ",") || solidIs(u, after, ")")
		if writable {
			if isParam && !ptr {
				return errAt(ctx, name, "mut parameter %q must be a pointer; writability needs indirection", name.Text)
			}
			Blank(u.Tokens[prev])
		} else {
			Insert(u, i, tok(KindKeyword, "const", t.Line, t.Col), space(t.Line, t.Col))
			k += 2
		}
		i = k
	}
	return nil
}
