// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relocate

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRelocate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "2020", "paper.PDF")
	dst := filepath.Join(dir, "2020", "smith2020.PDF")
	writeFile(t, src, "content")

	require.NoError(t, New(nil).Relocate(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}

func TestRelocateCreatesParentNotTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	dst := filepath.Join(dir, "new", "nested", "smith2020.pdf")
	writeFile(t, src, "content")

	require.NoError(t, New(nil).Relocate(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.False(t, info.IsDir(), "target must be the moved file, not a directory")
	info, err = os.Stat(filepath.Dir(dst))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRelocateCaseOnly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Paper.pdf")
	dst := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "content")

	require.NoError(t, New(nil).Relocate(src, dst))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "paper.pdf", entries[0].Name())
}

func TestRelocateMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := New(nil).Relocate(filepath.Join(dir, "gone.pdf"), filepath.Join(dir, "new.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.pdf")
}

func TestRelocateUncreatableParentLogs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits differ on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "content")
	// A regular file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := New(logger).Relocate(src, filepath.Join(blocker, "smith2020.pdf"))
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "could not create target directory")

	_, statErr := os.Stat(src)
	assert.NoError(t, statErr, "source must stay in place after a failed move")
}

func TestCopyVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "dst.pdf")
	writeFile(t, src, "some pdf bytes")

	require.NoError(t, copyVerified(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "some pdf bytes", string(got))

	err = copyVerified(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "x.pdf"))
	assert.Error(t, err)
}

func TestMoveByCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	dst := filepath.Join(dir, "smith2020.pdf")
	writeFile(t, src, "content")

	require.NoError(t, New(nil).moveByCopy(src, dst))
	assert.NoFileExists(t, src)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}

func TestMoveByCopySourceNotRemovable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	dst := filepath.Join(dir, "smith2020.pdf")
	writeFile(t, src, "content")

	m := New(nil)
	m.remove = func(string) error { return errors.New("read-only volume") }

	err := m.moveByCopy(src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only volume")
	assert.FileExists(t, src)
	assert.NoFileExists(t, dst, "copy must not outlive a failed move")
}
