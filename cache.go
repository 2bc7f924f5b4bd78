package mildred

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const artifact_mode fs.FileMode = 0o644

var (
	_cache = &artifactCache{
		store:  make(map[string]*pathLock),
		locker: &sync.Mutex{},
	}
)

// ResolveArtifactPath returns where the compiled form of templatePath is
// stored: the same directory, with the file name hidden by a leading dot.
func ResolveArtifactPath(templatePath string) (string, error) {
	if _, err := os.Stat(templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.WithMessagef(ErrMissingTemplate, "%s", templatePath)
		}
		return "", storageError(err, templatePath)
	}

	return artifactPath(templatePath), nil
}

func artifactPath(templatePath string) string {
	return filepath.Join(filepath.Dir(templatePath), "."+filepath.Base(templatePath))
}

// IsFresh reports whether a compiled artifact exists for templatePath.
func IsFresh(templatePath string) bool {
	path, err := ResolveArtifactPath(templatePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)

	return err == nil
}

// Persist writes compiled text to artifactPath, replacing any previous
// artifact.
func Persist(artifactPath, compiled string) error {
	return _cache.persist(artifactPath, compiled)
}

// artifactCache serializes writers of the same artifact path. A path's lock
// is dropped from the store once no writer holds or waits for it.
type artifactCache struct {
	store  map[string]*pathLock
	locker *sync.Mutex
}

type pathLock struct {
	sync.Mutex
	refs int
}

func (c *artifactCache) lock(path string) func() {
	c.locker.Lock()
	l, ok := c.store[path]
	if !ok {
		l = &pathLock{}
		c.store[path] = l
	}
	l.refs++
	c.locker.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		c.locker.Lock()
		defer c.locker.Unlock()
		if l.refs--; l.refs == 0 {
			delete(c.store, path)
		}
	}
}

func (c *artifactCache) persist(path, compiled string) (err error) {
	defer c.lock(path)()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return errors.WithMessagef(ErrWriteDenied, "%s", path)
		}
		return errors.WithMessagef(ErrWriteFailed, "%s: %s", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(compiled); err != nil {
		_ = tmp.Close()
		return errors.WithMessagef(ErrWriteFailed, "%s: %s", path, err)
	}
	if err = tmp.Close(); err != nil {
		return errors.WithMessagef(ErrWriteFailed, "%s: %s", path, err)
	}
	if err = os.Chmod(tmp.Name(), artifact_mode); err != nil {
		return errors.WithMessagef(ErrWriteFailed, "%s: %s", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return errors.WithMessagef(ErrWriteDenied, "%s", path)
		}
		return errors.WithMessagef(ErrWriteFailed, "%s: %s", path, err)
	}

	return nil
}
