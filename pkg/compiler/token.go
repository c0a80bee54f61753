package compiler

import "fmt"

// Kind identifies the category of a lexed token.
type Kind int

const (
	KindKeyword Kind = iota
	KindIdentifier
	KindOperator
	KindPunct
	KindString
	KindNumber
	KindSpace
	KindComment
	KindDirective // preprocessor line, e.g. #pragma czar debug true
)

// kindNames is indexed by Kind.
var kindNames = [...]string{
	KindKeyword:    "KEYWORD",
	KindIdentifier: "IDENTIFIER",
	KindOperator:   "OPERATOR",
	KindPunct:      "PUNCT",
	KindString:     "STRING",
	KindNumber:     "NUMBER",
	KindSpace:      "SPACE",
	KindComment:    "COMMENT",
	KindDirective:  "DIRECTIVE",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit. Text is mutable: passes relabel tokens
// wholesale or blank them (Text == "") to delete them logically without
// renumbering the rest of the stream.
type Token struct {
	Kind Kind
	Text string // exact source text; "" once blanked
	Line int    // 1-based source line
	Col  int    // 1-based source column
}

// Blanked reports whether the token has been logically deleted.
func (t *Token) Blanked() bool { return t.Text == "" }

// Is reports whether the token still carries exactly the given text.
func (t *Token) Is(text string) bool { return t.Text == text }

// trivia tokens carry no syntax: whitespace, comments, and blanked tokens.
func (t *Token) trivia() bool {
	return t.Kind == KindSpace || t.Kind == KindComment || t.Blanked()
}

func (t *Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Kind, t.Text, t.Line)
}

// Unit is one translation unit: the source file name and the flat, ordered
// token sequence the pipeline rewrites in place. Structural nesting is never
// materialized; passes recompute brace/paren depth from token text.
type Unit struct {
	File   string
	Tokens []*Token
}

// NewUnit wraps a token slice as a translation unit.
func NewUnit(file string, tokens []*Token) *Unit {
	return &Unit{File: file, Tokens: tokens}
}
