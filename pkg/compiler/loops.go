package compiler

import "fmt"

// DesugarLoops is the loop and access desugaring pass: range and collection
// for-loops lower to counted C loops, then pointer member access is rewritten
// from the single surface spelling "p.f" to "p->f" where p is known to be a
// pointer.
func DesugarLoops(u *Unit, ctx *Context) error {
	if err := desugarForLoops(u, ctx); err != nil {
		return err
	}
	return rewritePointerAccess(u, ctx)
}

// desugarForLoops lowers the two sugar forms:
//
//	for (T v : a..b)        → for (mut T v = a; v <= b; v++)
//	for (iT i, vT v : arr)  → for (mut usize i = 0;
//	                               i < sizeof(arr) / sizeof(arr[0]); i++)
//	                          with "vT v = arr[i];" injected as the first
//	                          statement of the body
//
// The induction variable must be writable, so the marker is inserted whether
// or not the source spelled it; the emitter elides it on output. An index
// spelled "_" gets a generated name that is never exposed.
func desugarForLoops(u *Unit, ctx *Context) error {
	hidden := 0
	for i := 0; i < len(u.Tokens); i++ {
		if !u.Tokens[i].Is("for") {
			continue
		}
		open := NextSolid(u, i+1)
		if !solidIs(u, open, "(") {
			continue
		}
		close := MatchDelim(u, open)
		if close < 0 {
			return errAt(ctx, u.Tokens[i], "unterminated for header")
		}
		colon := findSolid(u, open+1, close, ":")
		if colon < 0 {
			continue // classic counted loop, nothing to do
		}

		comma := findSolid(u, open+1, colon, ",")
		var err error
		if comma < 0 {
			err = lowerRangeLoop(u, ctx, open, colon, close)
		} else {
			err = lowerCollectionLoop(u, ctx, open, comma, colon, close, &hidden)
		}
		if err != nil {
			return err
		}
		i = open
	}
	return nil
}

// lowerRangeLoop rewrites the header between open and close:
// "[mut] T v : a..b" becomes "mut T v = a; v <= b; v++".
func lowerRangeLoop(u *Unit, ctx *Context, open, colon, close int) error {
	decl := cloneSolid(u, open+1, colon)
	if len(decl) > 0 && decl[0].Is("mut") {
		decl = decl[1:]
		if len(decl) > 0 && decl[0].Kind == KindSpace {
			decl = decl[1:]
		}
	}
	if len(decl) < 2 {
		return errAt(ctx, u.Tokens[open], "range loop needs a typed induction variable")
	}
	name := decl[len(decl)-1]
	if name.Kind != KindIdentifier {
		return errAt(ctx, name, "range loop needs a typed induction variable")
	}
	typ := decl[:len(decl)-1]

	dots := findSolid(u, colon+1, close, "..")
	if dots < 0 {
		return errAt(ctx, u.Tokens[colon], "range loop needs start..end bounds")
	}
	start := cloneSolid(u, colon+1, dots)
	end := cloneSolid(u, dots+1, close)
	if len(start) == 0 || len(end) == 0 {
		return errAt(ctx, u.Tokens[dots], "range loop needs start..end bounds")
	}

	ln, cl := u.Tokens[open].Line, u.Tokens[open].Col
	for j := open + 1; j < close; j++ {
		Blank(u.Tokens[j])
	}
	var repl []*Token
	repl = append(repl, tok(KindKeyword, "mut", ln, cl), space(ln, cl))
	repl = append(repl, typ...)
	repl = append(repl, space(ln, cl), tok(KindIdentifier, name.Text, ln, cl), space(ln, cl),
		tok(KindOperator, "=", ln, cl), space(ln, cl))
	repl = append(repl, start...)
	repl = append(repl, tok(KindPunct, ";", ln, cl), space(ln, cl),
		tok(KindIdentifier, name.Text, ln, cl), space(ln, cl),
		tok(KindOperator, "<=", ln, cl), space(ln, cl))
	repl = append(repl, end...)
	repl = append(repl, tok(KindPunct, ";", ln, cl), space(ln, cl),
		tok(KindIdentifier, name.Text, ln, cl), tok(KindOperator, "++", ln, cl))
	Insert(u, open+1, repl...)
	return nil
}

// lowerCollectionLoop rewrites "iT i, vT v : arr" into an index-counted loop
// over the array's element count, binding the value as the body's first
// statement. The loop body must be braced for the binding to have somewhere
// to go.
func lowerCollectionLoop(u *Unit, ctx *Context, open, comma, colon, close int, hidden *int) error {
	idxDecl := cloneSolid(u, open+1, comma)
	valDecl := cloneSolid(u, comma+1, colon)
	arr := cloneSolid(u, colon+1, close)
	if len(arr) == 0 {
		return errAt(ctx, u.Tokens[colon], "collection loop needs a collection expression")
	}

	idxName := ""
	switch {
	case len(idxDecl) == 1 && idxDecl[0].Is("_"):
		idxName = fmt.Sprintf("czar_idx%d", *hidden)
		*hidden++
	case len(idxDecl) >= 2 && idxDecl[len(idxDecl)-1].Kind == KindIdentifier:
		idxName = idxDecl[len(idxDecl)-1].Text
	default:
		return errAt(ctx, u.Tokens[open], "collection loop needs an index declaration or _")
	}
	if len(valDecl) < 2 || valDecl[len(valDecl)-1].Kind != KindIdentifier {
		return errAt(ctx, u.Tokens[comma], "collection loop needs a typed value binding")
	}
	valName := valDecl[len(valDecl)-1]
	valType := valDecl[:len(valDecl)-1]

	bodyOpen := NextSolid(u, close+1)
	if !solidIs(u, bodyOpen, "{") {
		return errAt(ctx, u.Tokens[open], "collection loop requires a braced body")
	}

	ln, cl := u.Tokens[open].Line, u.Tokens[open].Col

	// Body binding first: it sits after the header, so the header edit
	// below cannot shift it.
	var bind []*Token
	bind = append(bind, tok(KindSpace, "\n", ln, cl))
	bind = append(bind, valType...)
	bind = append(bind, space(ln, cl), tok(KindIdentifier, valName.Text, ln, cl), space(ln, cl),
		tok(KindOperator, "=", ln, cl), space(ln, cl))
	bind = append(bind, arr...)
	bind = append(bind, tok(KindPunct, "[", ln, cl), tok(KindIdentifier, idxName, ln, cl),
		tok(KindPunct, "]", ln, cl), tok(KindPunct, ";", ln, cl))
	Insert(u, bodyOpen+1, bind...)

	for j := open + 1; j < close; j++ {
		Blank(u.Tokens[j])
	}
	count := func(out []*Token) []*Token {
		out = append(out, tok(KindKeyword, "sizeof", ln, cl), tok(KindPunct, "(", ln, cl))
		out = append(out, cloneTokens(arr)...)
		return append(out, tok(KindPunct, ")", ln, cl))
	}
	var repl []*Token
	repl = append(repl, tok(KindKeyword, "mut", ln, cl), space(ln, cl),
		tok(KindKeyword, "usize", ln, cl), space(ln, cl),
		tok(KindIdentifier, idxName, ln, cl), space(ln, cl),
		tok(KindOperator, "=", ln, cl), space(ln, cl),
		tok(KindNumber, "0", ln, cl), tok(KindPunct, ";", ln, cl), space(ln, cl),
		tok(KindIdentifier, idxName, ln, cl), space(ln, cl),
		tok(KindOperator, "<", ln, cl), space(ln, cl))
	repl = count(repl)
	repl = append(repl, space(ln, cl), tok(KindOperator, "/", ln, cl), space(ln, cl))
	repl = append(repl, tok(KindKeyword, "sizeof", ln, cl), tok(KindPunct, "(", ln, cl))
	repl = append(repl, cloneTokens(arr)...)
	repl = append(repl, tok(KindPunct, "[", ln, cl), tok(KindNumber, "0", ln, cl), tok(KindPunct, "]", ln, cl))
	repl = append(repl, tok(KindPunct, ")", ln, cl))
	repl = append(repl, tok(KindPunct, ";", ln, cl), space(ln, cl),
		tok(KindIdentifier, idxName, ln, cl), tok(KindOperator, "++", ln, cl))
	Insert(u, open+1, repl...)
	return nil
}

// cloneTokens deep-copies a synthesized token run so the same expression can
// be spliced into the stream more than once.
func cloneTokens(ts []*Token) []*Token {
	out := make([]*Token, len(ts))
	for i, t := range ts {
		out[i] = tok(t.Kind, t.Text, t.Line, t.Col)
	}
	return out
}

// pointerDecl records where a name was declared and whether that declaration
// made it a pointer. The earliest declaration for a name wins, and a usage
// only resolves against a declaration that precedes it.
type pointerDecl struct {
	pos     int
	pointer bool
}

// rewritePointerAccess builds the pointer-tracking table in one forward scan
// over declarations, then rewrites "p.f" to "p->f" for every tracked
// pointer p. Value member access keeps the dot.
func rewritePointerAccess(u *Unit, ctx *Context) error {
	table := make(map[string]pointerDecl)
	full := false
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.trivia() || !typeStarter(ctx, t) {
			continue
		}
		ptr := false
		k := NextSolid(u, i+1)
		for solidIs(u, k, "*") {
			ptr = true
			k = NextSolid(u, k+1)
		}
		if k < 0 || u.Tokens[k].Kind != KindIdentifier {
			continue
		}
		name := u.Tokens[k].Text
		if _, seen := table[name]; seen {
			continue
		}
		if len(table) >= ctx.Config.MaxTracked {
			if !full {
				full = true
				ctx.Reporter.Warnf(t.Line, "pointer tracking table full (%d entries); member access may keep '.'", ctx.Config.MaxTracked)
			}
			continue
		}
		table[name] = pointerDecl{pos: k, pointer: ptr}
	}

	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.Kind != KindIdentifier {
			continue
		}
		decl, ok := table[t.Text]
		if !ok || !decl.pointer || decl.pos >= i {
			continue
		}
		dot := NextSolid(u, i+1)
		if !solidIs(u, dot, ".") {
			continue
		}
		field := NextSolid(u, dot+1)
		if field < 0 || u.Tokens[field].Kind != KindIdentifier {
			continue
		}
		Relabel(u.Tokens[dot], KindOperator, "->")
		i = field
	}
	return nil
}
