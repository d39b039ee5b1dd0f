package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Filesystem stores each subject's still capture as
// <rootDir>/iris_images/<id>.png, spec.md §6's directory layout.
type Filesystem struct {
	dir string
}

// NewFilesystem ensures <rootDir>/iris_images exists and returns a Store
// rooted there.
func NewFilesystem(rootDir string) (*Filesystem, error) {
	dir := filepath.Join(rootDir, "iris_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create %s: %w", dir, err)
	}
	return &Filesystem{dir: dir}, nil
}

func (f *Filesystem) path(id string) string {
	return filepath.Join(f.dir, id+".png")
}

func (f *Filesystem) Put(_ context.Context, id string, png []byte) (string, error) {
	path := f.path(id)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write %s: %w", path, err)
	}
	return path, nil
}

func (f *Filesystem) Get(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		return nil, fmt.Errorf("imagestore: read %s: %w", f.path(id), err)
	}
	return data, nil
}

func (f *Filesystem) Delete(_ context.Context, id string) error {
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("imagestore: remove %s: %w", f.path(id), err)
	}
	return nil
}
