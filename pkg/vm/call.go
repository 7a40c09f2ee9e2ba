package vm

import (
	"strings"

	"postfix/pkg/module"
)

// resolveCallee decides which module file backs a CALL by the structural
// rule spec.md's redesign calls for: a sibling "<caller>$<func>.postfix"
// file means funcName is lexically nested inside the calling module, so
// the child frame keeps a lexical link back to it; otherwise funcName is
// looked up as a top-level function of the call chain's root module.
func (ex *Executor) resolveCallee(caller *module.Frame, funcName string) (calleeName string, nested bool) {
	direct := caller.Tpl.Name + "$" + funcName
	if ex.cache.Exists(direct) {
		return direct, true
	}

	root := caller.Tpl.Name
	if idx := strings.Index(root, "$"); idx >= 0 {
		root = root[:idx]
	}
	return root + "$" + funcName, false
}

func (ex *Executor) doCall(f *module.Frame, funcName string) error {
	sig, ok := f.Tpl.Functions[funcName]
	if !ok {
		return module.NewError(module.NameError, f.Tpl.Name, f.PC, f.Line(), "call to undeclared function: %s", funcName)
	}

	calleeName, nested := ex.resolveCallee(f, funcName)
	childTpl, err := ex.cache.Load(calleeName)
	if err != nil {
		return err
	}

	child := module.NewChildFrame(childTpl, funcName, f)
	if nested {
		child.EnclosingModule = f
	}

	if sig.NumParams > 0 {
		if len(f.Stack) < sig.NumParams {
			return module.NewError(module.StackError, f.Tpl.Name, f.PC, f.Line(),
				"not enough operands on stack to call %s: want %d", funcName, sig.NumParams)
		}
		args := f.Stack[len(f.Stack)-sig.NumParams:]
		f.Stack = f.Stack[:len(f.Stack)-sig.NumParams]

		for i := 0; i < sig.NumParams && i < len(childTpl.VarOrder); i++ {
			paramName := childTpl.VarOrder[i]
			declKind := childTpl.VarTypes[paramName]
			arg, rerr := f.Resolve(args[i])
			if rerr != nil {
				return rerr
			}
			if arg.Kind != declKind {
				return module.NewError(module.TypeError, f.Tpl.Name, f.PC, f.Line(),
					"parameter %s of %s expects %s, got %s", paramName, funcName, declKind, arg.Kind)
			}
			child.Values[paramName] = arg
		}
	}

	ex.tracer.EnterCall(funcName)
	returned, err := ex.run(child)
	ex.tracer.LeaveCall(funcName)
	if err != nil {
		return err
	}

	if !sig.Void && !returned {
		return module.NewError(module.TypeError, f.Tpl.Name, f.PC, f.Line(),
			"function %s declared return kind %s but fell off the end without RET", funcName, sig.ReturnKind)
	}
	return nil
}

// doReturn runs the current (callee) frame's RET: void functions simply
// unwind, non-void ones pop, resolve and type-check the top-of-stack
// value and push it onto the caller's stack.
func (ex *Executor) doReturn(f *module.Frame) error {
	if f.Parent == nil {
		return module.NewError(module.NameError, f.Tpl.Name, f.PC, f.Line(), "RET outside of any function call")
	}
	sig, ok := f.Parent.Tpl.Functions[f.FuncName]
	if !ok {
		return module.NewError(module.NameError, f.Tpl.Name, f.PC, f.Line(), "RET from undeclared function: %s", f.FuncName)
	}
	if sig.Void {
		return nil
	}

	raw, err := f.Pop("RET")
	if err != nil {
		return err
	}
	v, err := f.Resolve(raw)
	if err != nil {
		return err
	}
	if v.Kind != sig.ReturnKind {
		return module.NewError(module.TypeError, f.Tpl.Name, f.PC, f.Line(),
			"RET type mismatch for %s: declared %s, got %s", f.FuncName, sig.ReturnKind, v.Kind)
	}
	f.Parent.Push(v)
	return nil
}
