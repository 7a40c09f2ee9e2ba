// Package value implements the tagged value model pushed on the operand
// stack and stored in variable slots: a payload paired with a kind.
package value

import (
	"fmt"
	"strconv"
)

// Kind is the closed set of stack-entry tags. The first four are the
// storable variable kinds; the last three are syntactic kinds that only
// ever appear transiently on the stack.
type Kind uint8

const (
	Invalid Kind = iota
	Int
	Float
	Bool
	String
	LVal
	RVal
	Label
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case LVal:
		return "l-val"
	case RVal:
		return "r-val"
	case Label:
		return "label"
	default:
		return "invalid"
	}
}

// Storable reports whether k is one of the four declarable variable kinds.
func (k Kind) Storable() bool {
	switch k {
	case Int, Float, Bool, String:
		return true
	default:
		return false
	}
}

// Numeric reports whether k is int or float.
func (k Kind) Numeric() bool {
	return k == Int || k == Float
}

// KindByName maps a declared type name ("int", "float", "bool", "string")
// to its Kind. It does not recognize "void" — callers handling function
// return kinds must check that separately.
func KindByName(name string) (Kind, bool) {
	switch name {
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "bool":
		return Bool, true
	case "string":
		return String, true
	}
	return Invalid, false
}

// Value is a tagged stack/variable entry. Only the field matching Kind is
// meaningful; LVal, RVal and Label payloads live in Str (the identifier
// text).
type Value struct {
	Kind Kind
	I    int64
	F    float64
	B    bool
	Str  string
}

func NewInt(i int64) Value      { return Value{Kind: Int, I: i} }
func NewFloat(f float64) Value  { return Value{Kind: Float, F: f} }
func NewBool(b bool) Value      { return Value{Kind: Bool, B: b} }
func NewString(s string) Value  { return Value{Kind: String, Str: s} }
func NewLVal(name string) Value { return Value{Kind: LVal, Str: name} }
func NewRVal(name string) Value { return Value{Kind: RVal, Str: name} }
func NewLabel(name string) Value { return Value{Kind: Label, Str: name} }

// Inspect renders v the way out_op prints it: floats in shortest
// round-trippable form, bools lowercase, strings raw (no quoting).
func (v Value) Inspect() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case String:
		return v.Str
	case LVal, RVal, Label:
		return v.Str
	default:
		return fmt.Sprintf("<invalid:%v>", v)
	}
}
