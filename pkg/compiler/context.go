package compiler

import (
	"io"
	"strings"
)

// Config carries the knobs of one pipeline run. Registry caps are soft:
// exceeding one logs a warning and the entry is dropped, so tracking becomes
// incomplete rather than the compile failing.
type Config struct {
	StrictEnumCase bool // lower-case enum members become errors, not warnings

	MaxStructTypes   int
	MaxStructMethods int
	MaxEnums         int
	MaxTracked       int // pointer-tracking table entries
}

// DefaultConfig returns the caps used by the command-line driver.
func DefaultConfig() Config {
	return Config{
		MaxStructTypes:   1024,
		MaxStructMethods: 4096,
		MaxEnums:         256,
		MaxTracked:       4096,
	}
}

// methodEntry is one (struct, method) pair. Order matters: call-site
// resolution picks the first struct found to expose a method name.
type methodEntry struct {
	Struct string
	Method string
}

// EnumMember is one member of an enum definition, carrying both the surface
// spelling and the generated prefixed output name (ENUM_MEMBER).
type EnumMember struct {
	Name     string
	Prefixed string
}

// EnumDef is one enum definition. Member order defines the coverage vector
// used during switch exhaustiveness validation.
type EnumDef struct {
	Name    string
	Members []EnumMember
}

// Member returns the member with the given surface or prefixed spelling.
func (e *EnumDef) Member(name string) (int, bool) {
	for i, m := range e.Members {
		if m.Name == name || m.Prefixed == name {
			return i, true
		}
	}
	return -1, false
}

// Context is the per-unit state threaded through the pipeline: the symbol
// registries populated by the declaration scan and read-only afterwards,
// plus the diagnostics reporter. One Context per translation unit.
type Context struct {
	File     string
	Config   Config
	Reporter *Reporter

	// Debug mirrors the in-stream "#pragma czar debug" directive; the
	// runtime-support emitter consults it.
	Debug bool

	structTypes map[string]bool
	structOrder []string
	methods     []methodEntry
	enums       []*EnumDef
}

// NewContext builds a fresh context for one unit. The method registry is
// seeded with the built-in logging facility before any scanning happens.
func NewContext(file, src string, cfg Config, warnings io.Writer) *Context {
	ctx := &Context{
		File:        file,
		Config:      cfg,
		Reporter:    NewReporter(warnings, file, src),
		structTypes: make(map[string]bool),
	}
	ctx.structTypes["Log"] = true
	ctx.structOrder = append(ctx.structOrder, "Log")
	for _, m := range []string{"debug", "info", "warn", "error"} {
		ctx.methods = append(ctx.methods, methodEntry{Struct: "Log", Method: m})
	}
	return ctx
}

// AddStructType registers a struct base name. Returns false when the soft
// cap is hit; the caller has already been warned and scanning continues.
func (ctx *Context) AddStructType(name string, line int) bool {
	if ctx.structTypes[name] {
		return true
	}
	if len(ctx.structOrder) >= ctx.Config.MaxStructTypes {
		ctx.Reporter.Warnf(line, "struct registry full (%d entries); %q not tracked", ctx.Config.MaxStructTypes, name)
		return false
	}
	ctx.structTypes[name] = true
	ctx.structOrder = append(ctx.structOrder, name)
	return true
}

// HasStructType reports whether name was registered as a struct base name.
func (ctx *Context) HasStructType(name string) bool {
	return ctx.structTypes[name]
}

// AddMethod registers a (struct, method) pair.
func (ctx *Context) AddMethod(structName, method string, line int) bool {
	for _, e := range ctx.methods {
		if e.Struct == structName && e.Method == method {
			return true
		}
	}
	if len(ctx.methods) >= ctx.Config.MaxStructMethods {
		ctx.Reporter.Warnf(line, "method registry full (%d entries); %s.%s not tracked", ctx.Config.MaxStructMethods, structName, method)
		return false
	}
	ctx.methods = append(ctx.methods, methodEntry{Struct: structName, Method: method})
	return true
}

// HasMethod reports whether structName exposes method.
func (ctx *Context) HasMethod(structName, method string) bool {
	for _, e := range ctx.methods {
		if e.Struct == structName && e.Method == method {
			return true
		}
	}
	return false
}

// MethodOwner returns the first struct type found to expose the given method
// name. First match wins: there is no overload-by-receiver-type
// disambiguation, which is a documented limitation of the resolver.
func (ctx *Context) MethodOwner(method string) (string, bool) {
	for _, e := range ctx.methods {
		if e.Method == method {
			return e.Struct, true
		}
	}
	return "", false
}

// AddEnum registers an enum definition.
func (ctx *Context) AddEnum(def *EnumDef, line int) bool {
	if len(ctx.enums) >= ctx.Config.MaxEnums {
		ctx.Reporter.Warnf(line, "enum registry full (%d entries); %q not tracked", ctx.Config.MaxEnums, def.Name)
		return false
	}
	ctx.enums = append(ctx.enums, def)
	return true
}

// EnumByName returns the registered enum with the given name.
func (ctx *Context) EnumByName(name string) *EnumDef {
	for _, e := range ctx.enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// prefixedMember computes the collision-free output spelling of one member:
// the upper-cased enum name joined to the member with an underscore.
func prefixedMember(enumName, member string) string {
	return strings.ToUpper(enumName) + "_" + member
}
