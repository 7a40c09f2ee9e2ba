// Package trace implements the debug/trace sink of spec.md §4.4: a
// structured trace, indented per call depth, covering instruction
// dispatch, stack/variable snapshots, label resolution and call/return
// boundaries. The indent unit and event categories follow the
// Console helper of this language's original reference implementation
// (add_indent/remove_indent around CALL/RET); the Go shape — a Tracer
// wrapping an io.Writer — mirrors how this project's ancestor CLI wrote
// ad hoc progress lines straight to stdout/stderr.
package trace

import (
	"fmt"
	"io"
	"strings"

	"postfix/pkg/livetrace"
	"postfix/pkg/module"
	"postfix/pkg/value"
)

const indentUnit = "   "

type Tracer struct {
	w       io.Writer
	enabled bool
	depth   int
	hub     *livetrace.Hub
}

// New builds a Tracer. A nil *Tracer (or one built with enabled=false) is
// a safe no-op on every method, so call sites never need an extra check.
func New(w io.Writer, enabled bool, hub *livetrace.Hub) *Tracer {
	return &Tracer{w: w, enabled: enabled, hub: hub}
}

func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

func (t *Tracer) emit(format string, args ...interface{}) {
	if !t.Enabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(t.w, strings.Repeat(indentUnit, t.depth)+msg)
	if t.hub != nil {
		t.hub.Broadcast(livetrace.Event{Depth: t.depth, Message: msg})
	}
}

func (t *Tracer) Instruction(moduleName string, pc int, ins module.Instruction) {
	t.emit("[pc=%d module=%s] %s %s", pc, moduleName, ins.Text, ins.Kind)
}

func (t *Tracer) Stack(stack []value.Value) {
	if !t.Enabled() {
		return
	}
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = fmt.Sprintf("%s:%s", v.Inspect(), v.Kind)
	}
	t.emit("  stack: [%s]", strings.Join(parts, ", "))
}

func (t *Tracer) Variables(values map[string]value.Value) {
	if !t.Enabled() {
		return
	}
	parts := make([]string, 0, len(values))
	for name, v := range values {
		parts = append(parts, fmt.Sprintf("%s=%s", name, v.Inspect()))
	}
	t.emit("  vars: {%s}", strings.Join(parts, ", "))
}

func (t *Tracer) Label(name string, index int, taken bool) {
	t.emit("  label %s -> instruction %d (taken=%t)", name, index, taken)
}

func (t *Tracer) EnterCall(name string) {
	t.emit("--> CALL %s", name)
	if t.Enabled() {
		t.depth++
	}
}

func (t *Tracer) LeaveCall(name string) {
	if t.Enabled() && t.depth > 0 {
		t.depth--
	}
	t.emit("<-- RET %s", name)
}
