package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrTooLarge = errors.New("file exceeds size limit")

type Storage interface {
	// Save writes at most limit bytes from r to dir/name. If r holds more
	// than limit bytes nothing is kept and ErrTooLarge is returned.
	Save(dir, name string, r io.Reader, limit int64) (int64, error)
	Remove(dir, name string) error
	Open(dir, name string) (*os.File, error)
}

type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	return &DiskStorage{root: root}
}

func (s *DiskStorage) Save(dir, name string, r io.Reader, limit int64) (int64, error) {
	target, err := s.path(dir, name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	written, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if copyErr == nil && written > limit {
		copyErr = ErrTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(target)
		return 0, copyErr
	}
	return written, nil
}

func (s *DiskStorage) Remove(dir, name string) error {
	target, err := s.path(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStorage) Open(dir, name string) (*os.File, error) {
	target, err := s.path(dir, name)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (s *DiskStorage) path(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || dir != filepath.Base(dir) {
		return "", fmt.Errorf("invalid upload path %q/%q", dir, name)
	}
	return filepath.Join(s.root, dir, name), nil
}
