package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir stores objects as files below Root.
type Dir struct {
	Root string
}

func (d Dir) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return fmt.Errorf("objstore: path %q escapes the store root", path)
	}
	full := filepath.Join(d.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}
