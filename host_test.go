package mildred

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func TestHostDisplay(t *testing.T) {
	var buf bytes.Buffer
	host := NewHost(nil, false)

	require.NoError(t, host.Display(&buf, "s", "<i>"))
	require.NoError(t, host.Display(&buf, "p", point{1, 2}))
	require.NoError(t, host.Display(&buf, "n", nil))
	assert.Equal(t, "&lt;i&gt;", buf.String())

	debug := NewHost(nil, true)
	err := debug.Display(&buf, "p", point{1, 2})
	assert.True(t, errors.Is(err, ErrInvalidType))
	err = debug.Display(&buf, "n", nil)
	assert.True(t, errors.Is(err, ErrUndefinedVariable))
}

func TestHostCapabilities(t *testing.T) {
	var buf bytes.Buffer
	host := NewHost(NewTypeMap(Implements[point]("point")), true)

	assert.True(t, host.IsValid(point{1, 2}))
	assert.False(t, host.IsValid("string"))
	require.NoError(t, host.Display(&buf, "p", point{1, 2}))
	assert.Equal(t, "{1 2}", buf.String())
}

func TestHostExecute(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, ".page.tpl")
	require.NoError(t, os.WriteFile(artifact, []byte("Hi <?mld display name ?>"), artifact_mode))

	var buf bytes.Buffer
	require.NoError(t, NewHost(nil, false).Execute(&buf, artifact, Params{"name": "A"}))
	assert.Equal(t, "Hi A", buf.String())

	err := NewHost(nil, false).Execute(&buf, filepath.Join(dir, ".missing"), nil)
	assert.True(t, errors.Is(err, ErrMissingTemplate))
}

func TestStorageError(t *testing.T) {
	denied := &fs.PathError{Op: "open", Path: "page.tpl", Err: fs.ErrPermission}
	err := storageError(denied, "page.tpl")
	assert.True(t, errors.Is(err, ErrReadDenied))
	assert.ErrorContains(t, err, "page.tpl")

	missing := &fs.PathError{Op: "open", Path: "page.tpl", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(storageError(missing, "page.tpl"), ErrMissingTemplate))

	other := storageError(errors.New("disk on fire"), "page.tpl")
	assert.False(t, errors.Is(other, ErrReadDenied))
	assert.False(t, errors.Is(other, ErrMissingTemplate))
	assert.ErrorContains(t, other, "read page.tpl: disk on fire")
}
