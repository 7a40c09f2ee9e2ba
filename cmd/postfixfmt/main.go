// Command postfixfmt parses a .postfix module and re-prints its
// declaration sections in a canonical one-item-per-line form, the way
// this project's debug_tokens/debug_parser sibling tools dumped a single
// parse stage's output rather than wiring a full CLI framework around
// it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postfix/pkg/loader"
	"postfix/pkg/token"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: postfixfmt <path/to/module.postfix>")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postfixfmt: %v\n", err)
		os.Exit(1)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".postfix")
	tpl, err := loader.Parse(name, string(data), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postfixfmt: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(".vars(\n")
	for _, v := range tpl.VarOrder {
		fmt.Printf("   %s %s\n", v, tpl.VarTypes[v])
	}
	fmt.Println(")")

	if len(tpl.Globals) > 0 {
		fmt.Printf("\n.globVarList(\n")
		for _, g := range tpl.Globals {
			fmt.Printf("   %s\n", g)
		}
		fmt.Println(")")
	}

	if len(tpl.Labels) > 0 {
		fmt.Printf("\n.labels(\n")
		for name, idx := range tpl.Labels {
			fmt.Printf("   %s %d\n", name, idx)
		}
		fmt.Println(")")
	}

	if len(tpl.Functions) > 0 {
		fmt.Printf("\n.funcs(\n")
		for name, sig := range tpl.Functions {
			ret := "void"
			if !sig.Void {
				ret = sig.ReturnKind.String()
			}
			fmt.Printf("   %s %s %d\n", name, ret, sig.NumParams)
		}
		fmt.Println(")")
	}

	fmt.Printf("\n.code(\n")
	for _, ins := range tpl.Instructions {
		text := ins.Text
		if ins.Kind == token.String {
			text = `"` + text + `"`
		}
		fmt.Printf("   %s %s\n", text, ins.Kind)
	}
	fmt.Println(")")
}
