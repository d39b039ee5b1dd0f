package imagestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}

	data := []byte("fake png bytes")
	path, err := store.Put(ctx, "subject-1", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if filepath.Base(path) != "subject-1.png" {
		t.Fatalf("path = %q, want basename subject-1.png", path)
	}

	got, err := store.Get(ctx, "subject-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Get returned %q, want %q", got, data)
	}

	if err := store.Delete(ctx, "subject-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still exists after delete")
	}
}

func TestFilesystemDeleteMissingIsNotAnError(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	if err := store.Delete(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Delete of missing file: %v", err)
	}
}

func TestNewFilesystemCreatesIrisImagesSubdir(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "iris_images"))
	if err != nil || !info.IsDir() {
		t.Fatalf("iris_images subdir not created: %v", err)
	}
	_ = store
}
