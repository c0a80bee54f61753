package compiler

import (
	"fmt"
	"unicode"
)

// keywords is the set of czar keywords. Type keywords are listed separately
// in typeKeywords but are keywords too.
var keywords = map[string]bool{
	"mut":      true,
	"const":    true, // forbidden in source; the mutability pass rejects it
	"struct":   true,
	"enum":     true,
	"typedef":  true,
	"if":       true,
	"else":     true,
	"while":    true,
	"do":       true,
	"for":      true,
	"switch":   true,
	"case":     true,
	"default":  true,
	"break":    true,
	"continue": true,
	"return":   true,
	"goto":     true,
	"sizeof":   true,
	"cast":     true,
	"true":     true,
	"false":    true,
}

// typeKeywords is the set of czar primitive type spellings. The emitter maps
// them to their C99 stdint equivalents.
var typeKeywords = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
	"bool": true, "void": true, "usize": true,
}

// Lexer holds all mutable state for a single scanning pass over src.
// Unlike a classic compiler front end it keeps whitespace, comments and
// preprocessor directives as tokens: the pipeline rewrites the stream in
// place and the emitter reproduces the surrounding layout verbatim.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// startsLine reports whether only whitespace precedes the current position
// on its line, so indented preprocessor directives are still recognized.
func (l *Lexer) startsLine() bool {
	for i := l.pos - 1; i >= 0; i-- {
		r := l.src[i]
		if r == '\n' {
			return true
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// scanSpace collects one maximal run of whitespace as a single token.
func (l *Lexer) scanSpace() *Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
	return &Token{Kind: KindSpace, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

// scanLineComment collects "//" up to (not including) end-of-line.
func (l *Lexer) scanLineComment() *Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	return &Token{Kind: KindComment, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

// scanBlockComment collects "/*" up to and including the closing "*/".
func (l *Lexer) scanBlockComment() (*Token, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return &Token{Kind: KindComment, Text: string(l.src[start:l.pos]), Line: line, Col: col}, nil
		}
		l.advance()
	}
	return nil, fmt.Errorf("unterminated block comment (opened on line %d)", line)
}

// scanDirective collects a whole preprocessor line starting at '#'.
// The trailing newline is left for the next whitespace token.
func (l *Lexer) scanDirective() *Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	return &Token{Kind: KindDirective, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

// scanIdent collects a full identifier or keyword token.
func (l *Lexer) scanIdent() *Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	text := string(l.src[start:l.pos])
	kind := KindIdentifier
	if keywords[text] || typeKeywords[text] {
		kind = KindKeyword
	}
	return &Token{Kind: kind, Text: text, Line: line, Col: col}
}

// scanNumber collects a decimal or hex literal, including any suffix letters.
func (l *Lexer) scanNumber() *Token {
	line, col := l.line, l.col
	start := l.pos
	if l.peek() == '0' && (l.peek2() == 'x' || l.peek2() == 'X') {
		l.advance()
		l.advance()
		for l.pos < len(l.src) && isHexDigit(l.peek()) {
			l.advance()
		}
	} else {
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
		// Fractional part; "0..3" must lex as 0 .. 3, not 0. then .3,
		// so a '.' is only part of the number when not followed by '.'.
		if l.peek() == '.' && l.peek2() != '.' && unicode.IsDigit(l.peek2()) {
			l.advance()
			for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
				l.advance()
			}
		}
	}
	for l.pos < len(l.src) && (l.peek() == 'u' || l.peek() == 'U' || l.peek() == 'l' || l.peek() == 'L' || l.peek() == 'f') {
		l.advance()
	}
	return &Token{Kind: KindNumber, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

// scanString collects a string or char literal verbatim, quotes included.
func (l *Lexer) scanString(quote rune) (*Token, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // opening quote
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\n' {
			return nil, fmt.Errorf("unterminated literal on line %d", line)
		}
		if r == '\\' {
			l.advance()
			l.advance()
			continue
		}
		l.advance()
		if r == quote {
			return &Token{Kind: KindString, Text: string(l.src[start:l.pos]), Line: line, Col: col}, nil
		}
	}
	return nil, fmt.Errorf("unterminated literal on line %d", line)
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// operator run tables, longest spelling first.
var operators2 = map[string]bool{
	"..": true, "<<": true, ">>": true, "<=": true, ">=": true,
	"==": true, "!=": true, "&&": true, "||": true, "++": true,
	"--": true, "+=": true, "-=": true, "*=": true, "/=": true,
	"%=": true, "&=": true, "|=": true, "^=": true,
}

var operators1 = map[rune]bool{
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'&': true, '|': true, '^': true, '~': true, '!': true,
	'<': true, '>': true, '=': true, '?': true,
}

var puncts = map[rune]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	';': true, ',': true, ':': true, '.': true,
}

// nextToken returns the next token, trivia included.
func (l *Lexer) nextToken() (*Token, error) {
	ch := l.peek()
	line, col := l.line, l.col

	switch {
	case unicode.IsSpace(ch):
		return l.scanSpace(), nil
	case ch == '/' && l.peek2() == '/':
		return l.scanLineComment(), nil
	case ch == '/' && l.peek2() == '*':
		return l.scanBlockComment()
	case ch == '#' && l.startsLine():
		return l.scanDirective(), nil
	case unicode.IsLetter(ch) || ch == '_':
		return l.scanIdent(), nil
	case unicode.IsDigit(ch):
		return l.scanNumber(), nil
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	}

	// ".." is an operator, a lone "." punctuation.
	if ch == '.' && l.peek2() == '.' {
		l.advance()
		l.advance()
		return &Token{Kind: KindOperator, Text: "..", Line: line, Col: col}, nil
	}
	if puncts[ch] {
		l.advance()
		return &Token{Kind: KindPunct, Text: string(ch), Line: line, Col: col}, nil
	}
	if two := string(ch) + string(l.peek2()); operators2[two] {
		l.advance()
		l.advance()
		return &Token{Kind: KindOperator, Text: two, Line: line, Col: col}, nil
	}
	if operators1[ch] {
		l.advance()
		return &Token{Kind: KindOperator, Text: string(ch), Line: line, Col: col}, nil
	}
	return nil, fmt.Errorf("unexpected character %q on line %d", ch, line)
}

// Lex tokenises src into the flat token array the pipeline operates on.
// Whitespace, comments and preprocessor directives are preserved as tokens.
// It returns a non-nil error on the first illegal character or unterminated
// comment/literal.
func Lex(src string) ([]*Token, error) {
	l := newLexer(src)
	var tokens []*Token
	for l.pos < len(l.src) {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
