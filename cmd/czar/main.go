package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shkschneider/czar-sub001/pkg/compiler"
)

func main() {
	var (
		out        = flag.String("o", "", "output file (default: input with .c extension, or stdout for -)")
		strictCase = flag.Bool("strict-enum-case", false, "treat lower-case enum members as errors")
		dumpTokens = flag.Bool("tokens", false, "dump the lexed token stream and exit")
		noEmit     = flag.Bool("no-emit", false, "validate and lower without writing any output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: czar [flags] <file.cz>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	file := flag.Arg(0)
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
	src := string(data)

	if *dumpTokens {
		tokens, err := compiler.Lex(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lex error:", err)
			os.Exit(1)
		}
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		return
	}

	cfg := compiler.DefaultConfig()
	cfg.StrictEnumCase = *strictCase

	// A unit either lowers completely or the process exits: no partial
	// output is written for a unit that failed validation.
	c, err := compiler.Transpile(file, src, cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *noEmit {
		return
	}

	dest := *out
	if dest == "" {
		dest = strings.TrimSuffix(file, ".cz") + ".c"
	}
	if dest == "-" {
		fmt.Print(c)
		return
	}
	if err := os.WriteFile(dest, []byte(c), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
}
