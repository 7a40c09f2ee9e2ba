package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"postfix/pkg/module"
)

// FileSource resolves a module name (without its .postfix extension) to
// source text, and reports whether a given name exists — the latter is
// used by the structural nested-function check in pkg/vm (spec.md §9's
// REDESIGN note: prefer scanning for "<A>$<B>.postfix" siblings over
// guessing nesting from name prefixes).
type FileSource interface {
	Read(name string) (string, error)
	Exists(name string) bool
}

// DirSource resolves modules as "<Dir>/<name>.postfix" files, the layout
// spec.md §6 describes for --path.
type DirSource struct {
	Dir string
}

func (d DirSource) path(name string) string {
	return filepath.Join(d.Dir, name+".postfix")
}

func (d DirSource) Read(name string) (string, error) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		return "", module.NewError(module.IOError, name, 0, 0, "cannot read module file: %s", fmt.Sprint(err))
	}
	return string(data), nil
}

func (d DirSource) Exists(name string) bool {
	_, err := os.Stat(d.path(name))
	return err == nil
}
