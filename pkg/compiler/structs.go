package compiler

import "strings"

// LowerStructs is the struct and method lowering pass. The typedef rewrite
// runs first: the method rewrite references the renamed storage type.
func LowerStructs(u *Unit, ctx *Context) error {
	if err := lowerTypedefs(u, ctx); err != nil {
		return err
	}
	return lowerMethods(u, ctx)
}

// lowerTypedefs rewrites every struct definition
//
//	struct Point { ... };
//
// into a storage-type declaration aliased under two public names,
//
//	typedef struct Point_s { ... } Point_s;
//	typedef struct Point_s Point;
//
// so call sites keep working under either spelling. Re-running the pass is a
// no-op: a definition already preceded by "typedef" is skipped.
func lowerTypedefs(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		if !u.Tokens[i].Is("struct") {
			continue
		}
		if prev := PrevSolid(u, i-1); solidIs(u, prev, "typedef") {
			continue
		}
		name := NextSolid(u, i+1)
		if name < 0 || u.Tokens[name].Kind != KindIdentifier {
			continue
		}
		open := NextSolid(u, name+1)
		if !solidIs(u, open, "{") {
			// "struct Point p = {...}" declares a variable, not a type.
			continue
		}
		close := MatchDelim(u, open)
		if close < 0 {
			return errAt(ctx, u.Tokens[open], "unterminated struct %q", u.Tokens[name].Text)
		}
		semi := NextSolid(u, close+1)
		if !solidIs(u, semi, ";") {
			return errAt(ctx, u.Tokens[close], "missing ';' after struct %q", u.Tokens[name].Text)
		}

		base := strings.TrimSuffix(u.Tokens[name].Text, storageSuffix)
		storage := base + storageSuffix
		ln, cl := u.Tokens[name].Line, u.Tokens[name].Col
		Relabel(u.Tokens[name], KindIdentifier, storage)

		// Rightmost edits first so earlier indices stay valid.
		Insert(u, semi+1,
			tok(KindSpace, "\n", ln, cl),
			tok(KindKeyword, "typedef", ln, cl), space(ln, cl),
			tok(KindKeyword, "struct", ln, cl), space(ln, cl),
			tok(KindIdentifier, storage, ln, cl), space(ln, cl),
			tok(KindIdentifier, base, ln, cl),
			tok(KindPunct, ";", ln, cl))
		Insert(u, semi, space(ln, cl), tok(KindIdentifier, storage, ln, cl))
		Insert(u, i, tok(KindKeyword, "typedef", u.Tokens[i].Line, u.Tokens[i].Col), space(u.Tokens[i].Line, u.Tokens[i].Col))

		// The array grew out from under us; resume after the shifted "{".
		i = open + 2
	}
	return nil
}

// lowerMethods rewrites dotted method syntax into direct calls.
//
// Declarations "Type.m(params) {" become "Type_m(Type* self, params) {".
// Call sites "v.m(args)" resolve through the method registry and become
// "Type_m(&v, args)"; when the receiver is itself a registered struct type
// the call is static, "Type.m(args)" → "Type_m(args)", with the built-in
// logging facility renamed to its runtime symbol (Log.info → czar_log_info).
// A dotted call whose method name is in no registry entry is left alone
// (it may be a call through a struct field; the access pass sorts it out).
func lowerMethods(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		recv := u.Tokens[i]
		if recv.Kind != KindIdentifier {
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
		if ctx.EnumByName(recv.Text) != nil {
			// Scoped enum reference; the enum pass rewrites those.
			continue
		}
		close := MatchDelim(u, open)
		if close < 0 {
			return errAt(ctx, u.Tokens[open], "unterminated call to %q", u.Tokens[method].Text)
		}
		m := u.Tokens[method].Text
		ln, cl := recv.Line, recv.Col

		if solidIs(u, NextSolid(u, close+1), "{") {
			// Declaration position: insert the receiver parameter.
			base := strings.TrimSuffix(recv.Text, storageSuffix)
			Relabel(recv, KindIdentifier, base+"_"+m)
			Blank(u.Tokens[dot])
			Blank(u.Tokens[method])
			receiver := []*Token{
				tok(KindIdentifier, base, ln, cl),
				tok(KindOperator, "*", ln, cl), space(ln, cl),
				tok(KindIdentifier, "self", ln, cl),
			}
			first := NextSolid(u, open+1)
			if solidIs(u, first, "void") && solidIs(u, NextSolid(u, first+1), ")") {
				// "(void)" means no parameters; the receiver replaces it.
				Blank(u.Tokens[first])
				first = NextSolid(u, first+1)
			}
			if !solidIs(u, first, ")") {
				receiver = append(receiver, tok(KindPunct, ",", ln, cl), space(ln, cl))
			}
			Insert(u, open+1, receiver...)
			i = open
			continue
		}

		if ctx.HasStructType(recv.Text) {
			// Static call on the type itself: no receiver argument.
			base := strings.TrimSuffix(recv.Text, storageSuffix)
			lowered := base + "_" + m
			if base == "Log" {
				lowered = "czar_log_" + m
			}
			Relabel(recv, KindIdentifier, lowered)
			Blank(u.Tokens[dot])
			Blank(u.Tokens[method])
			i = open
			continue
		}

		owner, ok := ctx.MethodOwner(m)
		if !ok {
			continue
		}
		// First struct type exposing the method name wins; there is no
		// receiver-type disambiguation between same-named methods.
		recvName := recv.Text
		Relabel(recv, KindIdentifier, owner+"_"+m)
		Blank(u.Tokens[dot])
		Blank(u.Tokens[method])
		arg := []*Token{
			tok(KindOperator, "&", ln, cl),
			tok(KindIdentifier, recvName, ln, cl),
		}
		if !solidIs(u, NextSolid(u, open+1), ")") {
			arg = append(arg, tok(KindPunct, ",", ln, cl), space(ln, cl))
		}
		Insert(u, open+1, arg...)
		i = open
	}
	return nil
}
