package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by a Source when the named file does not exist.
var ErrNotFound = errors.New("asset not found")

// Source reads site files by slash-separated name relative to the document root.
type Source interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// LocalSource serves files from a directory on disk.
type LocalSource struct {
	root string
}

// NewLocalSource creates a LocalSource rooted at dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{root: dir}
}

func (s *LocalSource) ReadFile(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
