// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relocate moves attachment files on disk.
package relocate

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pdiddy/bibrename/internal/logging"
)

// Mover renames files, creating the destination's parent directory first
// and falling back to copy-and-delete when a rename crosses devices.
type Mover struct {
	logger *slog.Logger
	remove func(string) error
}

// New returns a Mover that logs through logger. A nil logger discards output.
func New(logger *slog.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mover{logger: logger, remove: os.Remove}
}

// Relocate moves src to dst. Failing to create the parent directory is
// logged and the move is still attempted.
func (m *Mover) Relocate(src, dst string) error {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		m.logger.Error("could not create target directory",
			slog.String("dir", parent), slog.Any("error", err))
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("renaming %s: %w", filepath.Base(src), err)
	}

	m.logger.Debug("rename crosses devices, copying instead",
		slog.String("source", src), slog.String("target", dst))
	return m.moveByCopy(src, dst)
}

// moveByCopy copies src to dst and removes src. When src cannot be removed
// the copy is deleted again so the file exists only at src.
func (m *Mover) moveByCopy(src, dst string) error {
	if err := copyVerified(src, dst); err != nil {
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	if err := m.remove(src); err != nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			m.logger.Error("could not remove copy after failed move",
				slog.String("target", dst), slog.Any("error", rmErr))
		}
		return fmt.Errorf("removing %s after copy: %w", filepath.Base(src), err)
	}
	return nil
}

// copyVerified streams src to dst checking size and sha256, and removes
// dst on any mismatch.
func copyVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, copyErr := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	closeErr := out.Close()
	switch {
	case copyErr != nil:
		os.Remove(dst)
		return copyErr
	case closeErr != nil:
		os.Remove(dst)
		return closeErr
	case written != srcInfo.Size():
		os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	case !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)):
		os.Remove(dst)
		return errors.New("copy hash mismatch")
	}
	return nil
}
