package compiler

import (
	"bytes"
	"strings"
	"testing"
)

// runPipeline lexes src, runs the full pass pipeline and renders the result,
// returning the rendered C, the collected warnings and any structural error.
func runPipeline(src string, cfg Config) (string, string, error) {
	var warn bytes.Buffer
	tokens, err := Lex(src)
	if err != nil {
		return "", "", err
	}
	u := NewUnit("test.cz", tokens)
	ctx := NewContext("test.cz", src, cfg, &warn)
	if err := Run(u, ctx); err != nil {
		return "", warn.String(), err
	}
	return Render(u), warn.String(), nil
}

// lowerSrc runs the pipeline with defaults and fails the test on error.
func lowerSrc(t *testing.T, src string) string {
	t.Helper()
	out, _, err := runPipeline(src, DefaultConfig())
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// norm collapses layout so tests compare token sequences, not whitespace:
// runs of whitespace become a single space, and that space is dropped unless
// both neighbours are word characters.
func norm(s string) string {
	joined := strings.Join(strings.Fields(s), " ")
	var b strings.Builder
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if c == ' ' {
			if isWordByte(joined[i-1]) && isWordByte(joined[i+1]) {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// wantNorm fails unless got and want are identical modulo layout.
func wantNorm(t *testing.T, got, want string) {
	t.Helper()
	if norm(got) != norm(want) {
		t.Errorf("lowered output mismatch\n got: %s\nwant: %s", norm(got), norm(want))
	}
}

// wantContains fails unless the normalized output contains the normalized
// fragment.
func wantContains(t *testing.T, got, fragment string) {
	t.Helper()
	if !strings.Contains(norm(got), norm(fragment)) {
		t.Errorf("lowered output missing %q\nin: %s", norm(fragment), norm(got))
	}
}

// wantError fails unless the pipeline rejects src with a message containing
// substr.
func wantError(t *testing.T, src, substr string) {
	t.Helper()
	_, _, err := runPipeline(src, DefaultConfig())
	if err == nil {
		t.Fatalf("expected error containing %q, got none", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error = %q, want it to contain %q", err, substr)
	}
}
