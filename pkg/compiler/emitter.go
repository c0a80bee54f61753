package compiler

import "strings"

// cTypes maps czar primitive spellings to their C99 equivalents.
var cTypes = map[string]string{
	"i8":    "int8_t",
	"i16":   "int16_t",
	"i32":   "int32_t",
	"i64":   "int64_t",
	"u8":    "uint8_t",
	"u16":   "uint16_t",
	"u32":   "uint32_t",
	"u64":   "uint64_t",
	"f32":   "float",
	"f64":   "double",
	"usize": "size_t",
	// bool and void keep their spelling (stdbool.h is included).
}

// Render writes the lowered token stream back out as C source text.
// Blanked tokens vanish, primitive type keywords are mapped to their stdint
// spellings, and any residual writable marker is elided (writability is C's
// default; only const is ever spelled out).
func Render(u *Unit) string {
	var sb strings.Builder
	for _, t := range u.Tokens {
		if t.Blanked() {
			continue
		}
		if t.Kind == KindKeyword {
			if t.Is("mut") {
				continue
			}
			if c, ok := cTypes[t.Text]; ok {
				sb.WriteString(c)
				continue
			}
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Emit renders a full compilation unit: the runtime preamble followed by the
// lowered source. CZAR_DEBUG reflects the in-stream pragma so the runtime
// support library can gate its logging.
func Emit(u *Unit, ctx *Context) string {
	var sb strings.Builder
	sb.WriteString("/* Generated by czar; do not edit. */\n")
	sb.WriteString("#include <stdint.h>\n")
	sb.WriteString("#include <stdbool.h>\n")
	sb.WriteString("#include <stddef.h>\n")
	sb.WriteString("#include \"czar.h\"\n")
	if ctx != nil && ctx.Debug {
		sb.WriteString("#define CZAR_DEBUG 1\n")
	} else {
		sb.WriteString("#define CZAR_DEBUG 0\n")
	}
	sb.WriteString("\n")
	sb.WriteString(Render(u))
	return sb.String()
}
