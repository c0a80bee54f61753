package compiler

import "testing"

func unitOf(t *testing.T, src string) *Unit {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	return NewUnit("test.cz", tokens)
}

func TestInsertShiftsTrailing(t *testing.T) {
	u := unitOf(t, "a b")
	before := len(u.Tokens)
	Insert(u, 1, tok(KindIdentifier, "x", 1, 1), tok(KindIdentifier, "y", 1, 1))
	if len(u.Tokens) != before+2 {
		t.Fatalf("len = %d, want %d", len(u.Tokens), before+2)
	}
	if u.Tokens[1].Text != "x" || u.Tokens[2].Text != "y" {
		t.Errorf("inserted tokens not at position 1: %v %v", u.Tokens[1], u.Tokens[2])
	}
	if u.Tokens[len(u.Tokens)-1].Text != "b" {
		t.Errorf("trailing token not shifted: %v", u.Tokens[len(u.Tokens)-1])
	}
}

func TestBlankKeepsArrayLength(t *testing.T) {
	u := unitOf(t, "a b c")
	before := len(u.Tokens)
	Blank(u.Tokens[2])
	if len(u.Tokens) != before {
		t.Fatalf("Blank changed the array length")
	}
	if !u.Tokens[2].Blanked() || !u.Tokens[2].trivia() {
		t.Errorf("blanked token should be inert trivia")
	}
	if Render(u) != "a  c" {
		t.Errorf("Render = %q, want %q", Render(u), "a  c")
	}
}

func TestRelabel(t *testing.T) {
	u := unitOf(t, "p.x")
	Relabel(u.Tokens[1], KindOperator, "->")
	if u.Tokens[1].Kind != KindOperator || u.Tokens[1].Text != "->" {
		t.Errorf("Relabel did not replace kind and text: %v", u.Tokens[1])
	}
	if Render(u) != "p->x" {
		t.Errorf("Render = %q, want %q", Render(u), "p->x")
	}
}

func TestMatchDelim(t *testing.T) {
	tests := []struct {
		name string
		src  string
		open string
		want string // text expected right before the matching closer
	}{
		{name: "Nested Braces", src: "{ a { b } c }", open: "{", want: "c"},
		{name: "Braces In String Ignored", src: `{ "{" }`, open: "{", want: `"{"`},
		{name: "Parens", src: "f(a, (b))", open: "(", want: ")"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := unitOf(t, tt.src)
			open := -1
			for i, tok := range u.Tokens {
				if tok.Text == tt.open {
					open = i
					break
				}
			}
			end := MatchDelim(u, open)
			if end < 0 {
				t.Fatalf("MatchDelim found no closer")
			}
			prev := PrevSolid(u, end-1)
			if u.Tokens[prev].Text != tt.want {
				t.Errorf("token before closer = %q, want %q", u.Tokens[prev].Text, tt.want)
			}
		})
	}
}

func TestMatchDelimUnterminated(t *testing.T) {
	u := unitOf(t, "{ a (")
	if got := MatchDelim(u, 0); got != -1 {
		t.Errorf("MatchDelim = %d, want -1 for an unterminated group", got)
	}
}

func TestFindSolidSkipsGroups(t *testing.T) {
	u := unitOf(t, "a (x; y) ; b")
	semi := findSolid(u, 0, len(u.Tokens), ";")
	if semi < 0 || PrevSolid(u, semi-1) < 0 || !u.Tokens[PrevSolid(u, semi-1)].Is(")") {
		t.Fatalf("findSolid matched a ';' inside the paren group")
	}
}

func TestNextPrevSolidSkipTrivia(t *testing.T) {
	u := unitOf(t, "a /* note */ b")
	next := NextSolid(u, 1)
	if next < 0 || u.Tokens[next].Text != "b" {
		t.Errorf("NextSolid skipped to %v, want b", u.Tokens[next])
	}
	prev := PrevSolid(u, len(u.Tokens)-2)
	if prev < 0 || u.Tokens[prev].Text != "a" {
		t.Errorf("PrevSolid skipped to %v, want a", u.Tokens[prev])
	}
}
