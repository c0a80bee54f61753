package compiler

import (
	"strings"
	"testing"
)

// solids filters out whitespace and comment tokens for compact assertions.
func solids(tokens []*Token) []*Token {
	var out []*Token
	for _, t := range tokens {
		if !t.trivia() {
			out = append(out, t)
		}
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token // kind and text of the solid tokens, in order
		wantErr  bool
	}{
		{
			name:  "Keywords And Identifiers",
			input: "mut i32 count cast usize",
			expected: []Token{
				{Kind: KindKeyword, Text: "mut"},
				{Kind: KindKeyword, Text: "i32"},
				{Kind: KindIdentifier, Text: "count"},
				{Kind: KindKeyword, Text: "cast"},
				{Kind: KindKeyword, Text: "usize"},
			},
		},
		{
			name:  "Range Does Not Eat Digits",
			input: "0..3",
			expected: []Token{
				{Kind: KindNumber, Text: "0"},
				{Kind: KindOperator, Text: ".."},
				{Kind: KindNumber, Text: "3"},
			},
		},
		{
			name:  "Dot Versus Decimal",
			input: "p.x 1.5",
			expected: []Token{
				{Kind: KindIdentifier, Text: "p"},
				{Kind: KindPunct, Text: "."},
				{Kind: KindIdentifier, Text: "x"},
				{Kind: KindNumber, Text: "1.5"},
			},
		},
		{
			name:  "Operators",
			input: "a <= b && c++",
			expected: []Token{
				{Kind: KindIdentifier, Text: "a"},
				{Kind: KindOperator, Text: "<="},
				{Kind: KindIdentifier, Text: "b"},
				{Kind: KindOperator, Text: "&&"},
				{Kind: KindIdentifier, Text: "c"},
				{Kind: KindOperator, Text: "++"},
			},
		},
		{
			name:  "String Keeps Quotes And Escapes",
			input: `Log.info("hi\n{")`,
			expected: []Token{
				{Kind: KindIdentifier, Text: "Log"},
				{Kind: KindPunct, Text: "."},
				{Kind: KindIdentifier, Text: "info"},
				{Kind: KindPunct, Text: "("},
				{Kind: KindString, Text: `"hi\n{"`},
				{Kind: KindPunct, Text: ")"},
			},
		},
		{
			name:  "Directive",
			input: "#pragma czar debug true\ni32 x = 1;",
			expected: []Token{
				{Kind: KindDirective, Text: "#pragma czar debug true"},
				{Kind: KindKeyword, Text: "i32"},
				{Kind: KindIdentifier, Text: "x"},
				{Kind: KindOperator, Text: "="},
				{Kind: KindNumber, Text: "1"},
				{Kind: KindPunct, Text: ";"},
			},
		},
		{
			name:  "Indented Directive",
			input: "\t#pragma czar debug true",
			expected: []Token{
				{Kind: KindDirective, Text: "#pragma czar debug true"},
			},
		},
		{
			name:    "Hash After Code",
			input:   "a # b",
			wantErr: true,
		},
		{
			name:    "Unterminated Block Comment",
			input:   "/* start",
			wantErr: true,
		},
		{
			name:    "Unterminated String",
			input:   `"open`,
			wantErr: true,
		},
		{
			name:    "Unexpected Character",
			input:   "@",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Lex(%q) expected error, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lex(%q) failed: %v", tt.input, err)
			}
			got := solids(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d solid tokens, want %d: %v", len(got), len(tt.expected), got)
			}
			for i, want := range tt.expected {
				if got[i].Kind != want.Kind || got[i].Text != want.Text {
					t.Errorf("token %d = (%v, %q), want (%v, %q)", i, got[i].Kind, got[i].Text, want.Kind, want.Text)
				}
			}
		})
	}
}

func TestLexPreservesLayout(t *testing.T) {
	src := "i32 x = 1; // one\n\ti32 y = 2;\n"
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	if b.String() != src {
		t.Errorf("concatenated tokens = %q, want the original source %q", b.String(), src)
	}
}

func TestLexLinesAndColumns(t *testing.T) {
	tokens, err := Lex("a\n  bb")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	got := solids(tokens)
	if got[0].Line != 1 || got[0].Col != 1 {
		t.Errorf("token a at %d:%d, want 1:1", got[0].Line, got[0].Col)
	}
	if got[1].Line != 2 || got[1].Col != 3 {
		t.Errorf("token bb at %d:%d, want 2:3", got[1].Line, got[1].Col)
	}
}
