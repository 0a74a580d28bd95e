// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibrename/pkg/types"
)

var (
	// ErrEntryNotFound is returned when a citation key is not in the library.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrLibraryLocked is returned when another process holds the library lock.
	ErrLibraryLocked = errors.New("library is locked by another process")
)

// Library is a bibliography stored as a YAML file.
type Library struct {
	// Path is the library file location. It is not serialized.
	Path string `json:"-" yaml:"-"`

	// FileDirectories lists library-level attachment directories. Relative
	// entries are resolved against the library file's directory.
	FileDirectories []string `json:"file_directories,omitempty" yaml:"file_directories,omitempty"`

	// Entries holds the records in file order.
	Entries []*Entry `json:"entries" yaml:"entries"`
}

// Load reads a library from path.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing library %s: %w", path, err)
	}
	lib.Path = path
	for i, e := range lib.Entries {
		if e == nil || e.Key == "" {
			return nil, fmt.Errorf("parsing library %s: entry %d has no key", path, i)
		}
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
	}
	return &lib, nil
}

// Save writes the library back to its Path through a temporary file so a
// crash never leaves a half-written library behind.
func (l *Library) Save() error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling library: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(l.Path), ".library-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing library: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, l.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Entry returns the entry with the given key.
func (l *Library) Entry(key string) (*Entry, error) {
	for _, e := range l.Entries {
		if e.Key == key {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, key)
}

// Directories returns the ordered candidate directories for resolving
// relative attachment links: the library's file_directories, then
// cfg.Directories, then the library file's own directory when
// cfg.UseLibraryDir is set. Duplicates keep their first position.
func (l *Library) Directories(cfg types.RenameConfig) []string {
	base := filepath.Dir(l.Path)
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}

	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" {
			return
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	for _, d := range l.FileDirectories {
		add(d)
	}
	for _, d := range cfg.Directories {
		if abs, err := filepath.Abs(d); err == nil && !filepath.IsAbs(d) {
			d = abs
		}
		add(d)
	}
	if cfg.UseLibraryDir {
		add(base)
	}
	return dirs
}

// Lock takes an exclusive lock on the library at path. The returned
// function releases it. ErrLibraryLocked is returned when another process
// holds the lock.
func Lock(path string) (func() error, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLibraryLocked
	}
	return fl.Unlock, nil
}
