package compiler

import (
	"bytes"
	"strings"
	"testing"
)

func scanned(t *testing.T, src string, cfg Config) (*Context, string) {
	t.Helper()
	var warn bytes.Buffer
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	u := NewUnit("test.cz", tokens)
	ctx := NewContext("test.cz", src, cfg, &warn)
	if err := ScanDeclarations(u, ctx); err != nil {
		t.Fatalf("ScanDeclarations failed: %v", err)
	}
	return ctx, warn.String()
}

func TestScanStructTypes(t *testing.T) {
	src := `
struct Point { i32 x; i32 y; };
struct Buffer_s { u8 data[16]; };
struct Point origin = { 0, 0 };
`
	ctx, _ := scanned(t, src, DefaultConfig())

	for _, name := range []string{"Point", "Buffer", "Buffer_s"} {
		if !ctx.HasStructType(name) {
			t.Errorf("HasStructType(%q) = false, want true", name)
		}
	}
	if ctx.HasStructType("origin") {
		t.Errorf("variable declarator was registered as a struct type")
	}
}

func TestScanMethods(t *testing.T) {
	src := `
struct Point { i32 x; };
void Point.move(i32 dx) { self.x = dx; }
void demo(void) {
	Point p = Point.make();
	p.move(1);
}
`
	ctx, _ := scanned(t, src, DefaultConfig())

	if !ctx.HasMethod("Point", "move") {
		t.Errorf("Point.move declaration was not registered")
	}
	if ctx.HasMethod("Point", "make") {
		t.Errorf("call site Point.make() was registered as a declaration")
	}
	// The logging facility is seeded before any scanning.
	for _, m := range []string{"debug", "info", "warn", "error"} {
		if !ctx.HasMethod("Log", m) {
			t.Errorf("built-in Log.%s missing from the method registry", m)
		}
	}
}

func TestScanEnums(t *testing.T) {
	src := "enum Color { RED, GREEN = 5, BLUE };"
	ctx, _ := scanned(t, src, DefaultConfig())

	def := ctx.EnumByName("Color")
	if def == nil {
		t.Fatalf("enum Color not registered")
	}
	want := []EnumMember{
		{Name: "RED", Prefixed: "COLOR_RED"},
		{Name: "GREEN", Prefixed: "COLOR_GREEN"},
		{Name: "BLUE", Prefixed: "COLOR_BLUE"},
	}
	if len(def.Members) != len(want) {
		t.Fatalf("got %d members, want %d: %+v", len(def.Members), len(want), def.Members)
	}
	for i, m := range want {
		if def.Members[i] != m {
			t.Errorf("member %d = %+v, want %+v", i, def.Members[i], m)
		}
	}
}

func TestScanEnumLowerCaseMember(t *testing.T) {
	src := "enum Color { red };"

	_, warn := scanned(t, src, DefaultConfig())
	if !strings.Contains(warn, "upper-case") {
		t.Errorf("expected an upper-case warning, got %q", warn)
	}

	cfg := DefaultConfig()
	cfg.StrictEnumCase = true
	tokens, _ := Lex(src)
	ctx := NewContext("test.cz", src, cfg, nil)
	if err := ScanDeclarations(NewUnit("test.cz", tokens), ctx); err == nil {
		t.Errorf("StrictEnumCase should reject lower-case members")
	}
}

func TestMethodOwnerFirstMatchWins(t *testing.T) {
	src := `
struct Circle { i32 r; };
struct Square { i32 s; };
void Circle.area(void) { return; }
void Square.area(void) { return; }
`
	ctx, _ := scanned(t, src, DefaultConfig())
	owner, ok := ctx.MethodOwner("area")
	if !ok || owner != "Circle" {
		t.Errorf("MethodOwner(area) = %q, want first-declared Circle", owner)
	}
}

func TestRegistryCapsDegrade(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEnums = 1
	src := `
enum A { ONE };
enum B { TWO };
`
	ctx, warn := scanned(t, src, cfg)
	if ctx.EnumByName("A") == nil {
		t.Errorf("first enum should be registered")
	}
	if ctx.EnumByName("B") != nil {
		t.Errorf("enum beyond the cap should be dropped")
	}
	if !strings.Contains(warn, "registry full") {
		t.Errorf("cap overflow should warn, got %q", warn)
	}
	// The warning points at the declaration that overflowed the cap.
	if !strings.Contains(warn, "test.cz:3:") {
		t.Errorf("cap warning should carry the declaration line, got %q", warn)
	}
}
