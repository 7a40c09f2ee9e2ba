package loader

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"postfix/pkg/module"
	"postfix/pkg/value"
)

// moduleSpec is one fixture from testdata/modules.yaml: a module's source
// text plus the pieces of its parsed Template worth asserting on.
type moduleSpec struct {
	Name             string            `yaml:"name"`
	Source           string            `yaml:"source"`
	VarTypes         map[string]string `yaml:"var_types"`
	InstructionKinds []string          `yaml:"instruction_kinds"`
	FunctionNames    []string          `yaml:"function_names"`
	Labels           map[string]int    `yaml:"labels"`
}

type moduleSpecFile struct {
	Tests []moduleSpec `yaml:"tests"`
}

func loadModuleSpecs(t *testing.T) []moduleSpec {
	t.Helper()
	data, err := os.ReadFile("testdata/modules.yaml")
	if err != nil {
		t.Fatalf("reading testdata/modules.yaml: %v", err)
	}
	var f moduleSpecFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		t.Fatalf("parsing testdata/modules.yaml: %v", err)
	}
	return f.Tests
}

func TestParseYAMLFixtures(t *testing.T) {
	for _, spec := range loadModuleSpecs(t) {
		t.Run(spec.Name, func(t *testing.T) {
			tpl, err := Parse(spec.Name, spec.Source, false)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}

			for name, kindName := range spec.VarTypes {
				want, ok := value.KindByName(kindName)
				if !ok {
					t.Fatalf("fixture names an unknown kind %q", kindName)
				}
				got, ok := tpl.VarTypes[name]
				if !ok {
					t.Errorf("expected variable %q to be declared", name)
					continue
				}
				if got != want {
					t.Errorf("variable %q: got kind %s, want %s", name, got, want)
				}
			}

			if spec.InstructionKinds != nil {
				if len(tpl.Instructions) != len(spec.InstructionKinds) {
					t.Fatalf("got %d instructions, want %d", len(tpl.Instructions), len(spec.InstructionKinds))
				}
				for i, wantKind := range spec.InstructionKinds {
					if got := tpl.Instructions[i].Kind.String(); got != wantKind {
						t.Errorf("instruction %d: got kind %s, want %s", i, got, wantKind)
					}
				}
			}

			for _, name := range spec.FunctionNames {
				if _, ok := tpl.Functions[name]; !ok {
					t.Errorf("expected function %q to be declared", name)
				}
			}

			for name, idx := range spec.Labels {
				got, ok := tpl.Labels[name]
				if !ok {
					t.Errorf("expected label %q to be bound", name)
					continue
				}
				if got != idx {
					t.Errorf("label %q: got index %d, want %d", name, got, idx)
				}
			}
		})
	}
}

func TestParseDuplicateVariableIsDeclError(t *testing.T) {
	src := ".vars(\n   x int\n   x float\n)\n"
	_, err := Parse("m", src, false)
	assertDeclError(t, err)
}

func TestParseUnknownVariableTypeIsDeclError(t *testing.T) {
	src := ".vars(\n   x bogus\n)\n"
	_, err := Parse("m", src, false)
	assertDeclError(t, err)
}

func TestParseDuplicateSymbolicLabelIsDeclError(t *testing.T) {
	src := ".code(\n   L1 label\n   colon colon\n   L1 label\n   colon colon\n)\n"
	_, err := Parse("m", src, true)
	assertDeclError(t, err)
}

func TestParseSymbolicLabelIgnoresLabelsSection(t *testing.T) {
	src := ".labels(\n   L1 0\n)\n.code(\n   L1 label\n   colon colon\n)\n"
	tpl, err := Parse("m", src, true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if idx, ok := tpl.Labels["L1"]; !ok || idx != 0 {
		t.Errorf("expected symbolic label L1 bound at 0, got %v ok=%v", idx, ok)
	}
}

func TestParseLabelWithoutColonIsNotBound(t *testing.T) {
	src := ".code(\n   L1 label\n   1 int\n)\n"
	tpl, err := Parse("m", src, true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := tpl.Labels["L1"]; ok {
		t.Error("a label not immediately followed by colon must not be bound")
	}
	if len(tpl.Instructions) != 2 {
		t.Fatalf("expected both instructions kept, got %d", len(tpl.Instructions))
	}
}

func assertDeclError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if perr, ok := err.(*module.Error); !ok || perr.Kind != module.DeclError {
		t.Errorf("expected DeclError, got %v", err)
	}
}
