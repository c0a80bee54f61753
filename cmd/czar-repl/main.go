package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/shkschneider/czar-sub001/pkg/compiler"
)

const (
	historyFile = ".czar_history"
	promptMain  = "cz> "
	promptCont  = "... "
)

func main() {
	fmt.Println("czar REPL: type a snippet, see the lowered C. Ctrl+D or :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readSnippet(ln)
		if !ok {
			fmt.Println()
			return
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return
		}

		out, err := transpileSnippet(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Print(out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readSnippet keeps prompting until braces and parens balance, so whole
// function or struct definitions can be typed across lines.
func readSnippet(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return "", false
		}
		b.WriteString(line)
		b.WriteString("\n")
		if balanced(b.String()) {
			return b.String(), true
		}
	}
}

// balanced reports whether every brace and paren opened so far is closed.
func balanced(src string) bool {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return true // let the pipeline report it
	}
	depth := 0
	for _, t := range tokens {
		switch t.Text {
		case "{", "(", "[":
			depth++
		case "}", ")", "]":
			depth--
		}
	}
	return depth <= 0
}

// transpileSnippet lowers one snippet and renders it without the file
// preamble, which would drown out two lines of output.
func transpileSnippet(src string) (string, error) {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return "", err
	}
	u := compiler.NewUnit("<repl>", tokens)
	ctx := compiler.NewContext("<repl>", src, compiler.DefaultConfig(), os.Stderr)
	if err := compiler.Run(u, ctx); err != nil {
		return "", err
	}
	return compiler.Render(u), nil
}
