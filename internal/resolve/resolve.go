// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve expands stored attachment links into filesystem paths by
// searching an ordered list of library directories.
package resolve

import (
	"os"
	"path/filepath"
	"regexp"
)

// urlPattern matches links that carry a URL scheme ("https://...").
// A single letter before ':' is a Windows drive, not a scheme.
var urlPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]+://`)

// IsURL reports whether link is a URL rather than a filesystem path.
func IsURL(link string) bool {
	return urlPattern.MatchString(link)
}

// Expand maps link to the absolute path of an existing file. An absolute
// link is used as is. A relative link is joined with each directory in
// order and the first combination that exists wins; relative directories
// are taken from the working directory. URLs, empty links, and links that
// exist nowhere yield ok == false.
func Expand(link string, dirs []string) (path string, ok bool) {
	if link == "" || IsURL(link) {
		return "", false
	}
	if filepath.IsAbs(link) {
		path = filepath.Clean(link)
		if !exists(path) {
			return "", false
		}
		return path, true
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, link)
		if !exists(candidate) {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			candidate = abs
		}
		return candidate, true
	}
	return "", false
}

// FirstExistingDir returns the first entry of dirs that is an existing
// directory.
func FirstExistingDir(dirs []string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// Exists reports whether a filesystem entry is present at path.
func Exists(path string) bool {
	return exists(path)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
