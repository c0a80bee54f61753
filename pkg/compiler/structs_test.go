package compiler

import "testing"

func TestLowerTypedefs(t *testing.T) {
	got := lowerSrc(t, "struct Point { i32 x; i32 y; };")
	wantNorm(t, got,
		"typedef struct Point_s { int32_t x; int32_t y; } Point_s; typedef struct Point_s Point;")
}

func TestLowerTypedefsStorageSpelling(t *testing.T) {
	// A declaration already using the storage suffix aliases the same pair.
	got := lowerSrc(t, "struct Buffer_s { u8 b; };")
	wantContains(t, got, "typedef struct Buffer_s")
	wantContains(t, got, "} Buffer_s;")
	wantContains(t, got, "typedef struct Buffer_s Buffer;")
}

func TestLowerTypedefsIdempotent(t *testing.T) {
	tokens, err := Lex("struct Point { i32 x; };")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	u := NewUnit("test.cz", tokens)
	ctx := NewContext("test.cz", "", DefaultConfig(), nil)
	if err := ScanDeclarations(u, ctx); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if err := lowerTypedefs(u, ctx); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := Render(u)
	if err := lowerTypedefs(u, ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second := Render(u); second != first {
		t.Errorf("typedef lowering is not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestLowerTypedefsSkipsVariableDeclarator(t *testing.T) {
	src := `
struct Point { i32 x; };
struct Point origin = { 0 };
`
	got := lowerSrc(t, src)
	// The declarator keeps its plain spelling; only the definition is
	// rewritten.
	wantContains(t, got, "struct Point origin = { 0 };")
}

func TestLowerMethodDeclaration(t *testing.T) {
	src := `
struct Point { i32 x; };
void Point.move(i32 dx) { self.x = dx; }
`
	got := lowerSrc(t, src)
	wantContains(t, got, "void Point_move(Point* self, const int32_t dx) { self->x = dx; }")
}

func TestLowerMethodDeclarationNoParams(t *testing.T) {
	src := `
struct Point { i32 x; };
void Point.reset(void) { self.x = 0; }
`
	got := lowerSrc(t, src)
	wantContains(t, got, "void Point_reset(Point* self) {")
}

func TestLowerMethodCallSites(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		want string
	}{
		{
			name: "Value Receiver Takes Address",
			stmt: "p.move(1, 2);",
			want: "Point_move(&p, 1, 2);",
		},
		{
			name: "Static Call No Receiver",
			stmt: "Point.dump(3);",
			want: "Point_dump(3);",
		},
		{
			name: "Log Renames To Runtime Symbol",
			stmt: `Log.info("hi");`,
			want: `czar_log_info("hi");`,
		},
		{
			name: "Unknown Method Becomes Pointer Access",
			stmt: "p.mystery(1);",
			// Not in the method registry, so the call is left for the
			// access pass, which knows p is a pointer.
			want: "p->mystery(1);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `
struct Point { i32 x; };
void Point.move(i32 dx, i32 dy) { self.x = dx; }
void demo(void) {
	mut Point* p = 0;
	` + tt.stmt + `
}
`
			got := lowerSrc(t, src)
			wantContains(t, got, tt.want)
		})
	}
}

func TestLowerMethodFirstMatchAmbiguity(t *testing.T) {
	src := `
struct Circle { i32 r; };
struct Square { i32 s; };
void Circle.area(void) { return; }
void Square.area(void) { return; }
void demo(void) {
	mut Square* sq = 0;
	sq.area();
}
`
	// First match wins: the call resolves against Circle even though the
	// receiver was declared as a Square. Documented resolver limitation.
	got := lowerSrc(t, src)
	wantContains(t, got, "Circle_area(&sq);")
}
