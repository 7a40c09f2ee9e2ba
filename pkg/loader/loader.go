// Package loader implements spec.md §4.1: the declaration parser (vars,
// labels, globVarList, funcs) and the code parser that normalizes raw
// (lexeme, token-kind) pairs into a module.Template's instruction stream.
package loader

import (
	"strconv"
	"strings"

	"postfix/pkg/module"
	"postfix/pkg/source"
	"postfix/pkg/value"
)

// Parse turns one module file's source text into a static Template.
// symbolicLabels selects whether the .labels section (false) or
// label/colon pairs inside .code (true) populate the label table, per
// spec.md §4.1 and the --symbolic-labels CLI flag in spec.md §6.
func Parse(name, src string, symbolicLabels bool) (*module.Template, error) {
	lines, codeStartOffset := source.Read(src)
	tpl := module.NewTemplate(name)
	tpl.CodeStartOffset = codeStartOffset

	labelSeen := make(map[string]bool)
	var raw []rawToken

	for _, ln := range lines {
		switch ln.Section {
		case source.SectionVars:
			if err := parseVar(tpl, ln); err != nil {
				return nil, err
			}
		case source.SectionLabels:
			if symbolicLabels {
				continue // symbolic mode ignores the .labels section entirely
			}
			if err := parseNumericLabel(tpl, ln, labelSeen); err != nil {
				return nil, err
			}
		case source.SectionGlobVarList:
			tpl.Globals = append(tpl.Globals, ln.Text)
		case source.SectionFuncs:
			if err := parseFunc(tpl, ln); err != nil {
				return nil, err
			}
		case source.SectionCode:
			tok, err := parseCodeLine(name, ln)
			if err != nil {
				return nil, err
			}
			raw = append(raw, tok)
		}
	}

	return tpl, normalizeCode(tpl, raw, symbolicLabels)
}

func parseVar(tpl *module.Template, ln source.Line) error {
	fields := rsplit(ln.Text, 2)
	if len(fields) != 2 {
		return declErr(tpl.Name, ln, "malformed variable declaration: %s", ln.Text)
	}
	name, kindName := fields[0], fields[1]
	if _, exists := tpl.VarTypes[name]; exists {
		return declErr(tpl.Name, ln, "duplicate variable declaration: %s", name)
	}
	k, ok := value.KindByName(kindName)
	if !ok {
		return declErr(tpl.Name, ln, "unknown variable type %q for %s", kindName, name)
	}
	tpl.VarTypes[name] = k
	tpl.VarOrder = append(tpl.VarOrder, name)
	return nil
}

func parseNumericLabel(tpl *module.Template, ln source.Line, seen map[string]bool) error {
	fields := rsplit(ln.Text, 2)
	if len(fields) != 2 {
		return declErr(tpl.Name, ln, "malformed label declaration: %s", ln.Text)
	}
	name, numText := fields[0], fields[1]
	if seen[name] {
		return declErr(tpl.Name, ln, "duplicate label declaration: %s", name)
	}
	idx, err := strconv.Atoi(numText)
	if err != nil || idx < 0 {
		return declErr(tpl.Name, ln, "label value must be a non-negative integer: %s", ln.Text)
	}
	seen[name] = true
	tpl.Labels[name] = idx
	return nil
}

func parseFunc(tpl *module.Template, ln source.Line) error {
	fields := rsplit(ln.Text, 3)
	if len(fields) != 3 {
		return declErr(tpl.Name, ln, "malformed function declaration: %s", ln.Text)
	}
	name, retName, nParamsText := fields[0], fields[1], fields[2]
	sig := module.FuncSig{Name: name}
	if retName == "void" {
		sig.Void = true
	} else {
		k, ok := value.KindByName(retName)
		if !ok {
			return declErr(tpl.Name, ln, "unknown return type %q for function %s", retName, name)
		}
		sig.ReturnKind = k
	}
	n, err := strconv.Atoi(nParamsText)
	if err != nil || n < 0 {
		return declErr(tpl.Name, ln, "parameter count must be a non-negative integer: %s", ln.Text)
	}
	sig.NumParams = n
	tpl.Functions[name] = sig
	return nil
}

// rsplit splits s on whitespace from the right into exactly `parts`
// fields, joining any extra leading fields back into the first one — the
// same shape as Python's str.rsplit(maxsplit=parts-1).
func rsplit(s string, parts int) []string {
	fields := strings.Fields(s)
	if len(fields) < parts {
		return fields
	}
	head := strings.Join(fields[:len(fields)-(parts-1)], " ")
	out := make([]string, 0, parts)
	out = append(out, head)
	out = append(out, fields[len(fields)-(parts-1):]...)
	return out
}

func declErr(moduleName string, ln source.Line, format string, args ...interface{}) error {
	return module.NewError(module.DeclError, moduleName, 0, ln.Num, format, args...)
}
