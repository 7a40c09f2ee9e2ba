// Package vm is the executor: the dispatch loop that walks a Template's
// normalized instruction stream against a live Frame's stack and
// variables, the operator semantics of spec.md §4.3, and the CALL/RET
// machinery that spawns and unwinds child frames. It mirrors how this
// project's bytecode-VM ancestor structured its own fetch/dispatch loop
// and call-frame stack, generalized from a fixed opcode set to the
// token-kind set of pkg/token.
package vm

import (
	"postfix/pkg/loader"
	"postfix/pkg/module"
	"postfix/pkg/token"
	"postfix/pkg/trace"
	"postfix/pkg/value"
)

// Executor runs one program: a module cache to resolve CALL targets
// (including structural nested-function siblings), an optional tracer,
// and the host I/O collaborator backing inp_op/out_op.
type Executor struct {
	cache  *loader.Cache
	tracer *trace.Tracer
	io     HostIO
}

func NewExecutor(cache *loader.Cache, tracer *trace.Tracer, io HostIO) *Executor {
	return &Executor{cache: cache, tracer: tracer, io: io}
}

// RunProgram loads name as the root module and runs it to completion (or
// to the first runtime error), returning the root frame so a caller can
// inspect final variable state.
func (ex *Executor) RunProgram(name string) (*module.Frame, error) {
	tpl, err := ex.cache.Load(name)
	if err != nil {
		return nil, err
	}
	root := module.NewRootFrame(tpl)
	_, err = ex.run(root)
	return root, err
}

// run drives f's own PC/Stack through its instruction stream until it
// either falls off the end (returned=false) or executes RET
// (returned=true), whichever comes first. Every CALL recurses into a
// fresh run on the spawned child frame.
func (ex *Executor) run(f *module.Frame) (returned bool, err error) {
	for f.PC < len(f.Tpl.Instructions) {
		ins := f.Tpl.Instructions[f.PC]
		ex.tracer.Instruction(f.Tpl.Name, f.PC, ins)

		if ins.Kind == token.Ret {
			return true, ex.doReturn(f)
		}

		jumped := false
		switch ins.Kind {
		case token.Int, token.Float, token.Bool, token.String:
			f.Push(ins.Lit)
		case token.LVal:
			f.Push(value.NewLVal(ins.Text))
		case token.RVal:
			f.Push(value.NewRVal(ins.Text))
		case token.Label:
			f.Push(value.NewLabel(ins.Text))
		case token.AssignOp:
			err = ex.doAssign(f)
		case token.MathOp, token.PowOp:
			err = ex.doMath(f, ins.Text)
		case token.RelOp:
			err = ex.doRel(f, ins.Text)
		case token.BoolOp:
			err = ex.doBool(f, ins.Text)
		case token.CatOp:
			err = ex.doCat(f)
		case token.Conv:
			err = ex.doConv(f, ins.Text)
		case token.OutOp:
			err = ex.doOut(f)
		case token.InpOp:
			err = ex.doInp(f)
		case token.StackOp:
			err = ex.doStack(f, ins.Text)
		case token.Colon:
			err = ex.doColon(f)
		case token.JF:
			jumped, err = ex.doJF(f)
		case token.Jump:
			err = ex.doJump(f)
			jumped = err == nil
		case token.Call:
			err = ex.doCall(f, ins.Text)
		default:
			err = module.NewError(module.DeclError, f.Tpl.Name, f.PC, f.Line(), "unsupported instruction kind: %s", ins.Kind)
		}

		if err != nil {
			return false, err
		}

		ex.tracer.Stack(f.Stack)
		ex.tracer.Variables(f.Values)

		if !jumped {
			f.PC++
		}
	}
	return false, nil
}
