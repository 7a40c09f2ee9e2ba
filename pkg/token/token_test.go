package token

import "testing"

func TestLookupRoundTrip(t *testing.T) {
	for k, def := range definitions {
		got, ok := Lookup(def.Name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", def.Name)
		}
		if got != k {
			t.Errorf("Lookup(%q) = %v, want %v", def.Name, got, k)
		}
		if k.String() != def.Name {
			t.Errorf("Kind(%v).String() = %q, want %q", k, k.String(), def.Name)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("not_a_real_kind"); ok {
		t.Error("Lookup of an unknown name should fail")
	}
}

func TestLiteralAndIdentifierFlags(t *testing.T) {
	for _, k := range []Kind{Int, Float, Bool, String} {
		if !k.Definition().Literal {
			t.Errorf("%s should be a literal kind", k)
		}
	}
	for _, k := range []Kind{LVal, RVal, Label} {
		if !k.Definition().Identifier {
			t.Errorf("%s should be an identifier kind", k)
		}
	}
	if AssignOp.Definition().Literal || AssignOp.Definition().Identifier {
		t.Error("assign_op is neither a literal nor an identifier kind")
	}
}
