package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// goBody is the Go type scenario snippets compile to.
type goBody = func(args []interface{}, super func([]interface{}) (interface{}, error)) (interface{}, error)

// allowedImports are the stdlib packages a snippet may import. Anything
// that reaches the filesystem, network or process is excluded.
var allowedImports = map[string]bool{
	"bytes":         true,
	"errors":        true,
	"fmt":           true,
	"math":          true,
	"regexp":        true,
	"sort":          true,
	"strconv":       true,
	"strings":       true,
	"unicode":       true,
	"unicode/utf8":  true,
	"encoding/json": true,
}

// compileGo interprets a body snippet with yaegi and returns it as a
// native function. Every snippet gets its own interpreter.
func compileGo(code string, imports []string) (goBody, error) {
	if err := validateImports(imports); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}

	if _, err := i.Eval(wrapGo(code, imports)); err != nil {
		return nil, fmt.Errorf("go body evaluation failed: %w", err)
	}
	v, err := i.Eval("main.Behavior")
	if err != nil {
		return nil, fmt.Errorf("go body not found: %w", err)
	}
	fn, ok := v.Interface().(goBody)
	if !ok {
		return nil, fmt.Errorf("go body has type %s", v.Type())
	}
	return fn, nil
}

func validateImports(imports []string) error {
	var forbidden []string
	for _, pkg := range imports {
		if !allowedImports[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		allowed := make([]string, 0, len(allowedImports))
		for pkg := range allowedImports {
			allowed = append(allowed, pkg)
		}
		slices.Sort(allowed)
		return fmt.Errorf("forbidden imports %v (allowed: %v)", forbidden, allowed)
	}
	return nil
}

func wrapGo(code string, imports []string) string {
	var b strings.Builder
	b.WriteString("package main\n\n")
	for _, pkg := range imports {
		fmt.Fprintf(&b, "import %s\n", strconv.Quote(pkg))
	}
	b.WriteString("\nfunc Behavior(args []interface{}, super func([]interface{}) (interface{}, error)) (interface{}, error) {\n")
	b.WriteString(code)
	b.WriteString("\n}\n")
	return b.String()
}
