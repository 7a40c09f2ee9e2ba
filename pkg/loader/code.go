package loader

import (
	"strconv"
	"strings"

	"postfix/pkg/module"
	"postfix/pkg/source"
	"postfix/pkg/token"
	"postfix/pkg/value"
)

// rawToken is a .code line before literal decoding and label extraction.
type rawToken struct {
	lexeme string
	kind   token.Kind
	line   int
}

func parseCodeLine(moduleName string, ln source.Line) (rawToken, error) {
	if ln.Text == "RET" {
		return rawToken{lexeme: "RET", kind: token.Ret, line: ln.Num}, nil
	}
	fields := rsplit(ln.Text, 2)
	if len(fields) != 2 {
		return rawToken{}, declErr(moduleName, ln, "malformed instruction: %s", ln.Text)
	}
	lexeme, kindName := fields[0], fields[1]
	kind, ok := token.Lookup(kindName)
	if !ok {
		return rawToken{}, declErr(moduleName, ln, "unsupported instruction token-kind %q: %s", kindName, ln.Text)
	}
	return rawToken{lexeme: lexeme, kind: kind, line: ln.Num}, nil
}

// normalizeCode converts raw tokens into the Template's instruction
// stream, binding symbolic labels as it goes (spec.md §4.1): a label
// token immediately followed by colon binds to the index of the label
// instruction itself; any other label occurrence is just a jump-target
// value push and is never recorded as a binding.
func normalizeCode(tpl *module.Template, raw []rawToken, symbolicLabels bool) error {
	for i, tok := range raw {
		if tok.kind == token.Label && i+1 < len(raw) && raw[i+1].kind == token.Colon {
			if symbolicLabels {
				if _, exists := tpl.Labels[tok.lexeme]; exists {
					return module.NewError(module.DeclError, tpl.Name, 0, tok.line, "duplicate symbolic label: %s", tok.lexeme)
				}
				tpl.Labels[tok.lexeme] = len(tpl.Instructions)
			}
			tpl.Instructions = append(tpl.Instructions, module.Instruction{
				Kind: token.Label, Text: tok.lexeme, Line: tok.line,
			})
			continue
		}

		ins, err := normalizeToken(tpl, tok)
		if err != nil {
			return err
		}
		tpl.Instructions = append(tpl.Instructions, ins)
	}
	return nil
}

func normalizeToken(tpl *module.Template, tok rawToken) (module.Instruction, error) {
	ins := module.Instruction{Kind: tok.kind, Text: tok.lexeme, Line: tok.line}

	switch tok.kind {
	case token.String:
		if len(tok.lexeme) < 2 || tok.lexeme[0] != '"' || tok.lexeme[len(tok.lexeme)-1] != '"' {
			return ins, module.NewError(module.DeclError, tpl.Name, 0, tok.line,
				"string literal must be wrapped in double quotes: %s", tok.lexeme)
		}
		unquoted := tok.lexeme[1 : len(tok.lexeme)-1]
		ins.Text = unquoted
		ins.Lit = value.NewString(unquoted)

	case token.Int:
		n, err := strconv.ParseInt(tok.lexeme, 10, 64)
		if err != nil {
			return ins, module.NewError(module.DeclError, tpl.Name, 0, tok.line, "invalid int literal: %s", tok.lexeme)
		}
		ins.Lit = value.NewInt(n)

	case token.Float:
		f, err := strconv.ParseFloat(tok.lexeme, 64)
		if err != nil {
			return ins, module.NewError(module.DeclError, tpl.Name, 0, tok.line, "invalid float literal: %s", tok.lexeme)
		}
		ins.Lit = value.NewFloat(f)

	case token.Bool:
		switch strings.ToUpper(tok.lexeme) {
		case "TRUE":
			ins.Lit = value.NewBool(true)
		case "FALSE":
			ins.Lit = value.NewBool(false)
		default:
			return ins, module.NewError(module.DeclError, tpl.Name, 0, tok.line, "invalid bool literal: %s", tok.lexeme)
		}
	}

	return ins, nil
}
