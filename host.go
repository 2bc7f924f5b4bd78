package mildred

import (
	"io"
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// Host runs compiled templates. It owns the two helpers compiled templates
// rely on: IsValid and Display.
type Host struct {
	types *TypeMap
	debug bool
}

func NewHost(types *TypeMap, debug bool) *Host {
	if types == nil {
		types = type_map
	}

	return &Host{types: types, debug: debug}
}

// Execute loads the compiled template at artifactPath and runs it with
// vars, streaming the output to w.
func (h *Host) Execute(w io.Writer, artifactPath string, vars Params) error {
	bs, err := os.ReadFile(artifactPath)
	if err != nil {
		return storageError(err, artifactPath)
	}
	prog, err := Assemble(string(bs))
	if err != nil {
		return errors.WithMessagef(err, "%s", artifactPath)
	}

	return prog.Execute(w, h, vars)
}

// IsValid reports whether v is defined and has an allowed capability.
func (h *Host) IsValid(v any) bool {
	return h.types.IsValid(v)
}

// Display writes v if it is valid. Otherwise it writes nothing, or in debug
// mode reports why v can't be shown.
func (h *Host) Display(w io.Writer, name string, v any) error {
	if str, ok := h.types.Render(v); ok {
		_, err := io.WriteString(w, str)
		return err
	}
	if !h.debug {
		return nil
	}
	if isNil(v) {
		return &UndefinedVariable{Name: name}
	}

	return &InvalidType{Name: name, Value: v}
}

func storageError(err error, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.WithMessagef(ErrMissingTemplate, "%s", path)
	case errors.Is(err, fs.ErrPermission):
		return errors.WithMessagef(ErrReadDenied, "%s", path)
	}

	return errors.Wrapf(err, "read %s", path)
}
