package compiler

// Token stream substrate: the three mutation primitives every pass is built
// on, plus the navigation helpers that re-derive nesting from token text.
//
// Insert grows the stream and shifts trailing tokens right, so any loop index
// held across an Insert must be recomputed against the new length. Blank
// deletes a token logically without renumbering anything; blanked tokens stay
// in the array and are skipped as trivia. Relabel replaces kind and text
// atomically.

// Insert splices toks into u.Tokens at pos, shifting trailing tokens right.
func Insert(u *Unit, pos int, toks ...*Token) {
	if len(toks) == 0 {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(u.Tokens) {
		pos = len(u.Tokens)
	}
	u.Tokens = append(u.Tokens[:pos], append(append([]*Token{}, toks...), u.Tokens[pos:]...)...)
}

// Blank logically deletes a token: its text becomes empty and it is treated
// as trivia from then on. The array does not shrink.
func Blank(t *Token) {
	t.Text = ""
}

// Relabel replaces a token's kind and text in one step.
func Relabel(t *Token, kind Kind, text string) {
	t.Kind = kind
	t.Text = text
}

// tok returns a fresh solid token at the given source position. Passes use it
// when synthesizing replacement text; the position is inherited from the
// construct being rewritten so diagnostics still point somewhere sensible.
func tok(kind Kind, text string, line, col int) *Token {
	return &Token{Kind: kind, Text: text, Line: line, Col: col}
}

// space returns a single-space trivia token.
func space(line, col int) *Token {
	return &Token{Kind: KindSpace, Text: " ", Line: line, Col: col}
}

// NextSolid returns the index of the first non-trivia token at or after i,
// or -1 when none remains.
func NextSolid(u *Unit, i int) int {
	for ; i < len(u.Tokens); i++ {
		if !u.Tokens[i].trivia() {
			return i
		}
	}
	return -1
}

// PrevSolid returns the index of the last non-trivia token at or before i,
// or -1 when none precedes.
func PrevSolid(u *Unit, i int) int {
	for ; i >= 0; i-- {
		if i < len(u.Tokens) && !u.Tokens[i].trivia() {
			return i
		}
	}
	return -1
}

// solidIs reports whether index i holds a solid token with the given text.
func solidIs(u *Unit, i int, text string) bool {
	return i >= 0 && i < len(u.Tokens) && u.Tokens[i].Is(text)
}

var closers = map[string]string{"{": "}", "(": ")", "[": "]"}

// MatchDelim returns the index of the closer matching the opener at open,
// or -1 when the stream ends first. Strings and comments are single tokens,
// so delimiters inside literals can never skew the count.
func MatchDelim(u *Unit, open int) int {
	if open < 0 || open >= len(u.Tokens) {
		return -1
	}
	opener := u.Tokens[open].Text
	closer, ok := closers[opener]
	if !ok {
		return -1
	}
	depth := 0
	for i := open; i < len(u.Tokens); i++ {
		switch u.Tokens[i].Text {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// findSolid returns the index of the next solid token with the given text at
// or after i, scanning only the current nesting level: it skips over any
// (), [] or {} group that opens along the way. Returns -1 when text is not
// found before limit (exclusive).
func findSolid(u *Unit, i, limit int, text string) int {
	if limit > len(u.Tokens) {
		limit = len(u.Tokens)
	}
	for ; i < limit; i++ {
		t := u.Tokens[i]
		if t.trivia() {
			continue
		}
		if t.Text == text {
			return i
		}
		if _, open := closers[t.Text]; open {
			end := MatchDelim(u, i)
			if end < 0 || end >= limit {
				return -1
			}
			i = end
		}
	}
	return -1
}
