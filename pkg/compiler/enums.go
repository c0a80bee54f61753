package compiler

// CheckSwitches is the enum and switch pass: it renames enum members to
// their prefixed output spellings, rewrites scoped references, validates
// exhaustiveness of switches over enum-typed variables, synthesizes missing
// default cases, and enforces explicit control transfer at the end of every
// case body.
func CheckSwitches(u *Unit, ctx *Context) error {
	renameEnumDeclarations(u, ctx)
	if err := rewriteScopedRefs(u, ctx); err != nil {
		return err
	}
	return checkSwitchBodies(u, ctx, collectEnumVars(u, ctx))
}

// renameEnumDeclarations rewrites the members of every registered enum
// definition to their prefixed spellings, matching the references rewritten
// elsewhere in the stream.
func renameEnumDeclarations(u *Unit, ctx *Context) {
	for i := 0; i < len(u.Tokens); i++ {
		if !u.Tokens[i].Is("enum") {
			continue
		}
		name := NextSolid(u, i+1)
		if name < 0 || u.Tokens[name].Kind != KindIdentifier {
			continue
		}
		def := ctx.EnumByName(u.Tokens[name].Text)
		open := NextSolid(u, name+1)
		if def == nil || !solidIs(u, open, "{") {
			continue
		}
		end := MatchDelim(u, open)
		if end < 0 {
			continue
		}
		for j := open + 1; j < end; j++ {
			t := u.Tokens[j]
			if t.Kind != KindIdentifier {
				continue
			}
			if idx, ok := def.Member(t.Text); ok {
				Relabel(t, KindIdentifier, def.Members[idx].Prefixed)
			}
		}

		// Alias the definition under its bare name, same as the struct
		// rewrite, so "Color c" is a valid declaration in the output.
		if prev := PrevSolid(u, i-1); !solidIs(u, prev, "typedef") {
			if semi := NextSolid(u, end+1); solidIs(u, semi, ";") {
				ln, cl := u.Tokens[name].Line, u.Tokens[name].Col
				Insert(u, semi, space(ln, cl), tok(KindIdentifier, def.Name, ln, cl))
				Insert(u, i, tok(KindKeyword, "typedef", ln, cl), space(ln, cl))
				end += 2
			}
		}
		i = end
	}
}

// rewriteScopedRefs rewrites every scoped reference "Enum.MEMBER" in the
// stream to the member's prefixed output name.
func rewriteScopedRefs(u *Unit, ctx *Context) error {
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.Kind != KindIdentifier {
			continue
		}
		def := ctx.EnumByName(t.Text)
		if def == nil {
			continue
		}
		dot := NextSolid(u, i+1)
		if !solidIs(u, dot, ".") {
			continue
		}
		member := NextSolid(u, dot+1)
		if member < 0 || u.Tokens[member].Kind != KindIdentifier {
			continue
		}
		idx, ok := def.Member(u.Tokens[member].Text)
		if !ok {
			return errAt(ctx, t, "%q is not a member of enum %s", u.Tokens[member].Text, def.Name)
		}
		Relabel(t, KindIdentifier, def.Members[idx].Prefixed)
		Blank(u.Tokens[dot])
		Blank(u.Tokens[member])
		i = member
	}
	return nil
}

// enumVarDecl records one typed declaration of a name: where the name sits
// in the stream, the extent of its enclosing brace scope, and the enum type
// when the declaring type was an enum. def is nil for non-enum types, so a
// later declaration reusing the name shadows an earlier enum one.
type enumVarDecl struct {
	pos int
	end int // index just past the enclosing scope; file scope runs to the stream end
	def *EnumDef
}

// collectEnumVars records every typed declaration of a name, tracking brace
// scopes along the way. A switch condition resolves against the nearest
// preceding declaration whose scope still covers it, the same
// declaration-before-use discipline the pointer table uses.
func collectEnumVars(u *Unit, ctx *Context) map[string][]enumVarDecl {
	vars := make(map[string][]enumVarDecl)
	var scopes []int // close index of each open brace
	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.trivia() {
			continue
		}
		switch t.Text {
		case "{":
			end := MatchDelim(u, i)
			if end < 0 {
				end = len(u.Tokens)
			}
			scopes = append(scopes, end)
			continue
		case "}":
			if len(scopes) > 0 {
				scopes = scopes[:len(scopes)-1]
			}
			continue
		}
		if !typeStarter(ctx, t) {
			continue
		}
		def := ctx.EnumByName(t.Text)
		k := NextSolid(u, i+1)
		for solidIs(u, k, "*") {
			def = nil // a pointer to an enum is not an enum value
			k = NextSolid(u, k+1)
		}
		if k < 0 || u.Tokens[k].Kind != KindIdentifier {
			continue
		}
		end := len(u.Tokens)
		if len(scopes) > 0 {
			end = scopes[len(scopes)-1]
		}
		name := u.Tokens[k].Text
		vars[name] = append(vars[name], enumVarDecl{pos: k, end: end, def: def})
		i = k
	}
	return vars
}

// caseLabel is one "case X:" or "default:" of a switch body, with the
// half-open statement region that follows it.
type caseLabel struct {
	keyword   int // index of the case/default token
	label     int // index of the single label token; -1 for default
	stmtStart int
	stmtEnd   int
}

// checkSwitchBodies walks the unit once, tracking whether the current
// position is inside a loop body, and validates every switch it meets.
func checkSwitchBodies(u *Unit, ctx *Context, vars map[string][]enumVarDecl) error {
	type frame struct{ loop bool }
	var stack []frame
	pendingLoop := false

	for i := 0; i < len(u.Tokens); i++ {
		t := u.Tokens[i]
		if t.trivia() {
			continue
		}
		switch t.Text {
		case "for", "while", "do":
			pendingLoop = true
		case "(":
			// Skip condition/header groups whole, so the semicolons of a
			// classic for header cannot clear the pending loop marker.
			if end := MatchDelim(u, i); end > 0 {
				i = end
			}
		case ";":
			pendingLoop = false
		case "{":
			stack = append(stack, frame{loop: pendingLoop})
			pendingLoop = false
		case "}":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case "switch":
			// pendingLoop covers a switch that is itself the unbraced
			// statement body of a loop.
			inLoop := pendingLoop
			for _, f := range stack {
				inLoop = inLoop || f.loop
			}
			next, err := checkOneSwitch(u, ctx, vars, i, inLoop)
			if err != nil {
				return err
			}
			i = next
		}
	}
	return nil
}

// checkOneSwitch validates and rewrites the switch whose keyword sits at
// index sw. It returns the index scanning should resume from: the switch
// body opener, so nested switches are visited by the caller's walk.
func checkOneSwitch(u *Unit, ctx *Context, vars map[string][]enumVarDecl, sw int, inLoop bool) (int, error) {
	open := NextSolid(u, sw+1)
	if !solidIs(u, open, "(") {
		return sw, errAt(ctx, u.Tokens[sw], "malformed switch")
	}
	close := MatchDelim(u, open)
	if close < 0 {
		return sw, errAt(ctx, u.Tokens[sw], "unterminated switch condition")
	}
	body := NextSolid(u, close+1)
	if !solidIs(u, body, "{") {
		return sw, errAt(ctx, u.Tokens[sw], "switch requires a braced body")
	}
	bodyEnd := MatchDelim(u, body)
	if bodyEnd < 0 {
		return sw, errAt(ctx, u.Tokens[sw], "unterminated switch body")
	}

	// The switch is enum-typed when its condition is a lone variable whose
	// nearest preceding in-scope declaration used a registered enum type.
	var def *EnumDef
	if v := NextSolid(u, open+1); v >= 0 && u.Tokens[v].Kind == KindIdentifier && NextSolid(u, v+1) == close {
		for _, d := range vars[u.Tokens[v].Text] {
			if d.pos < v && v < d.end {
				def = d.def
			}
		}
	}

	labels, hasDefault, err := collectCaseLabels(u, ctx, body, bodyEnd)
	if err != nil {
		return sw, err
	}

	if def != nil {
		if !hasDefault {
			return sw, errAt(ctx, u.Tokens[sw], "switch on enum %s must declare a default case", def.Name)
		}
		covered := make([]bool, len(def.Members))
		for _, c := range labels {
			if c.label < 0 {
				continue
			}
			lt := u.Tokens[c.label]
			idx, ok := def.Member(lt.Text)
			if !ok {
				return sw, errAt(ctx, lt, "%q is not a member of enum %s", lt.Text, def.Name)
			}
			if lt.Text == def.Members[idx].Name && lt.Text != def.Members[idx].Prefixed {
				ctx.Reporter.Warnf(lt.Line, "unscoped reference to %s.%s; use the scoped form", def.Name, def.Members[idx].Name)
				Relabel(lt, KindIdentifier, def.Members[idx].Prefixed)
			}
			covered[idx] = true
		}
		for idx, ok := range covered {
			if !ok {
				return sw, errAt(ctx, u.Tokens[sw], "switch on enum %s does not cover %s.%s; default is a safety net, not a substitute",
					def.Name, def.Name, def.Members[idx].Name)
			}
		}
	}

	for _, c := range labels {
		if err := checkControlTransfer(u, ctx, c, inLoop); err != nil {
			return sw, err
		}
	}

	if !hasDefault && def == nil {
		synthesizeDefault(u, bodyEnd)
	}
	// Resume just before the body brace so the caller's walk pushes it and
	// visits any switch nested inside.
	return body - 1, nil
}

// collectCaseLabels gathers the case/default labels at the switch body's own
// nesting level, with the statement region each label governs. Only
// single-token labels are supported; scoped enum labels have already been
// collapsed to one prefixed token by rewriteScopedRefs.
func collectCaseLabels(u *Unit, ctx *Context, body, bodyEnd int) ([]caseLabel, bool, error) {
	var labels []caseLabel
	hasDefault := false
	for j := body + 1; j < bodyEnd; j++ {
		t := u.Tokens[j]
		if t.trivia() {
			continue
		}
		if t.Is("{") {
			if end := MatchDelim(u, j); end > 0 {
				j = end
			}
			continue
		}
		if !t.Is("case") && !t.Is("default") {
			continue
		}
		c := caseLabel{keyword: j, label: -1}
		colon := findSolid(u, j+1, bodyEnd, ":")
		if colon < 0 {
			return nil, false, errAt(ctx, t, "case label without ':'")
		}
		if t.Is("case") {
			lab := NextSolid(u, j+1)
			if lab < 0 || NextSolid(u, lab+1) != colon {
				return nil, false, errAt(ctx, t, "unsupported case label expression")
			}
			c.label = lab
		} else {
			hasDefault = true
		}
		c.stmtStart = colon + 1
		if len(labels) > 0 {
			labels[len(labels)-1].stmtEnd = c.keyword
		}
		labels = append(labels, c)
		j = colon
	}
	if len(labels) > 0 {
		labels[len(labels)-1].stmtEnd = bodyEnd
	}
	return labels, hasDefault, nil
}

// transferKeywords end a case body legitimately.
var transferKeywords = map[string]bool{
	"break": true, "continue": true, "return": true, "goto": true,
}

// checkControlTransfer enforces that a case's statement list ends in an
// explicit control transfer. An empty body is deliberate fallthrough and is
// allowed. "continue" inside a switch that is not itself inside a loop has
// no loop to continue; it is reinterpreted as intentional fallthrough and
// rewritten to an annotation instead of being flagged.
func checkControlTransfer(u *Unit, ctx *Context, c caseLabel, inLoop bool) error {
	last, cur := -1, -1
	for j := c.stmtStart; j < c.stmtEnd; j++ {
		t := u.Tokens[j]
		if t.trivia() {
			continue
		}
		if cur == -1 {
			cur = j
		}
		switch t.Text {
		case "(", "[":
			if end := MatchDelim(u, j); end > 0 && end < c.stmtEnd {
				j = end
			}
		case "{":
			if end := MatchDelim(u, j); end > 0 && end < c.stmtEnd {
				j = end
			}
			last, cur = cur, -1
		case ";":
			if cur != -1 {
				last, cur = cur, -1
			}
		}
	}
	if last == -1 {
		return nil // empty case body: fallthrough
	}
	first := u.Tokens[last]
	if first.Is("czar_trap") {
		return nil
	}
	if !transferKeywords[first.Text] {
		return errAt(ctx, u.Tokens[c.keyword], "case does not end in break, continue, return or goto")
	}
	if first.Is("continue") && !inLoop {
		Relabel(first, KindComment, "/* fallthrough */")
		if semi := NextSolid(u, last+1); solidIs(u, semi, ";") {
			Blank(u.Tokens[semi])
		}
	}
	return nil
}

// synthesizeDefault appends an unreachable-trap default case just before the
// switch body's closing brace.
func synthesizeDefault(u *Unit, bodyEnd int) {
	ln, cl := u.Tokens[bodyEnd].Line, u.Tokens[bodyEnd].Col
	Insert(u, bodyEnd,
		tok(KindKeyword, "default", ln, cl),
		tok(KindPunct, ":", ln, cl), space(ln, cl),
		tok(KindIdentifier, "czar_trap", ln, cl),
		tok(KindPunct, "(", ln, cl), tok(KindPunct, ")", ln, cl),
		tok(KindPunct, ";", ln, cl), space(ln, cl),
		tok(KindKeyword, "break", ln, cl),
		tok(KindPunct, ";", ln, cl),
		tok(KindSpace, "\n", ln, cl))
}
