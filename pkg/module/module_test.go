package module

import (
	"testing"

	"postfix/pkg/value"
)

func rootWithGlobal(name string, kind value.Kind) *Frame {
	tpl := NewTemplate("main")
	tpl.VarTypes[name] = kind
	tpl.VarOrder = append(tpl.VarOrder, name)
	return NewRootFrame(tpl)
}

func TestLocalShadowsGlobal(t *testing.T) {
	root := rootWithGlobal("x", value.Int)
	root.Values["x"] = value.NewInt(1)

	childTpl := NewTemplate("main$f")
	childTpl.VarTypes["x"] = value.Float
	childTpl.VarOrder = append(childTpl.VarOrder, "x")
	childTpl.Globals = []string{"x"} // declares x global, but local decl wins

	child := NewChildFrame(childTpl, "f", root)
	child.Values["x"] = value.NewFloat(2.5)

	got, err := child.Get("x")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Kind != value.Float || got.F != 2.5 {
		t.Errorf("local x should shadow global x, got %+v", got)
	}
}

func TestGlobalResolvesThroughRoot(t *testing.T) {
	root := rootWithGlobal("counter", value.Int)
	root.Values["counter"] = value.NewInt(10)

	childTpl := NewTemplate("main$bump")
	childTpl.Globals = []string{"counter"}
	child := NewChildFrame(childTpl, "bump", root)

	got, err := child.Get("counter")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.I != 10 {
		t.Errorf("expected global counter=10, got %+v", got)
	}

	if err := child.Set("counter", value.NewInt(11)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if root.Values["counter"].I != 11 {
		t.Error("Set on a global name must write through to the root frame")
	}
}

func TestEnclosingModuleLookup(t *testing.T) {
	root := NewRootFrame(NewTemplate("main"))

	outerTpl := NewTemplate("main$outer")
	outerTpl.VarTypes["y"] = value.String
	outerTpl.VarOrder = append(outerTpl.VarOrder, "y")
	outer := NewChildFrame(outerTpl, "outer", root)
	outer.Values["y"] = value.NewString("hi")

	innerTpl := NewTemplate("main$outer$inner")
	inner := NewChildFrame(innerTpl, "inner", outer)
	inner.EnclosingModule = outer

	got, err := inner.Get("y")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Str != "hi" {
		t.Errorf("expected lexical lookup to find y=hi, got %+v", got)
	}
}

func TestUninitializedReadIsError(t *testing.T) {
	tpl := NewTemplate("main")
	tpl.VarTypes["z"] = value.Int
	tpl.VarOrder = append(tpl.VarOrder, "z")
	root := NewRootFrame(tpl)

	if _, err := root.Get("z"); err == nil {
		t.Fatal("reading a never-written variable should return an error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != UninitError {
		t.Errorf("expected UninitError, got %v", err)
	}
}

func TestUnknownNameIsNameError(t *testing.T) {
	root := NewRootFrame(NewTemplate("main"))
	if _, err := root.Get("nope"); err == nil {
		t.Fatal("reading an undeclared variable should return an error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != NameError {
		t.Errorf("expected NameError, got %v", err)
	}
}

func TestStackUnderflow(t *testing.T) {
	root := NewRootFrame(NewTemplate("main"))
	if _, err := root.Pop("cat_op"); err == nil {
		t.Fatal("popping an empty stack should return an error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != StackError {
		t.Errorf("expected StackError, got %v", err)
	}
}

func TestResolveDereferencesRVal(t *testing.T) {
	tpl := NewTemplate("main")
	tpl.VarTypes["n"] = value.Int
	tpl.VarOrder = append(tpl.VarOrder, "n")
	root := NewRootFrame(tpl)
	root.Values["n"] = value.NewInt(99)

	resolved, err := root.Resolve(value.NewRVal("n"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.I != 99 {
		t.Errorf("Resolve(r-val n) = %+v, want 99", resolved)
	}

	lit := value.NewInt(5)
	resolved, err = root.Resolve(lit)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != lit {
		t.Error("Resolve should leave non r-val values unchanged")
	}
}
