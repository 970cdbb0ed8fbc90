package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const localURLPrefix = "/uploads/media/"

// LocalStorage writes uploads to a directory on disk. Locators look like
// /uploads/media/<name>; only the base name is used to open them.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(_ context.Context, name string, body io.Reader, _ int64, _ string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, base), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}

	return localURLPrefix + base, nil
}

func (s *LocalStorage) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	base := path.Base(locator)
	if base == "." || base == "/" {
		return nil, fmt.Errorf("invalid locator %q", locator)
	}
	f, err := os.Open(filepath.Join(s.dir, base))
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return f, nil
}
