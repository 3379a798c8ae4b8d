// Package store persists machine snapshots. File is the durable on-disk
// target; Memory is an in-process twin used by tests and dry runs.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vendsim/internal/codec"
	"vendsim/internal/model"
)

// ErrNotFound is returned by Load when there is no saved document yet.
var ErrNotFound = errors.New("state document not found")

// File keeps the machine state in a single document on disk.
//
// All writes are atomic and durable (file sync + atomic rename + dir sync), so
// a crash leaves either the previous document or the new one.
type File struct {
	path string
	log  *zap.Logger
}

func NewFile(path string, log *zap.Logger) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state file path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &File{path: filepath.Clean(path), log: log}, nil
}

func (f *File) Path() string { return f.path }

// Load reads and decodes the document. A missing or empty file is reported as
// ErrNotFound; a document that does not decode yields a *codec.ParseError.
func (f *File) Load() (model.Snapshot, error) {
	if f == nil {
		return model.Snapshot{}, errors.New("nil File")
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, ErrNotFound
		}
		return model.Snapshot{}, fmt.Errorf("read state: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Snapshot{}, ErrNotFound
	}
	snap, err := codec.Decode(data)
	if err != nil {
		return model.Snapshot{}, err
	}
	f.log.Debug("state loaded", zap.String("path", f.path), zap.Int("bytes", len(data)))
	return snap, nil
}

// Save encodes s and replaces the document. The parent directory is created
// here; writeFileAtomicDurable expects it to exist already.
func (f *File) Save(s model.Snapshot) error {
	if f == nil {
		return errors.New("nil File")
	}
	data := codec.Encode(s)
	if err := ensureDirDurable(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("ensure state dir: %w", err)
	}
	if err := writeFileAtomicDurable(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	f.log.Debug("state saved", zap.String("path", f.path), zap.Int("bytes", len(data)))
	return nil
}

func ensureDirDurable(dir string, perm os.FileMode) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	if err := fsyncDir(dir); err != nil {
		return err
	}
	parent := filepath.Dir(dir)
	if parent != dir {
		if err := fsyncDir(parent); err != nil {
			return err
		}
	}
	return nil
}

// writeFileAtomicDurable replaces path by renaming a synced temp file over it.
// It does not create the directory and fails if it is missing.
func writeFileAtomicDurable(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
