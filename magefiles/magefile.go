//go:build mage

// Package main contains Mage build targets for bibrename developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "bibrename"
	cmdPkg  = "./cmd/bibrename"
)

// Build compiles the CLI binary into bin/, stamping the version from
// $BIBRENAME_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	args := []string{"build", "-o", out}
	if v := os.Getenv("BIBRENAME_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X main.version="+v)
	}
	args = append(args, cmdPkg)
	if err := sh.RunV("go", args...); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check runs the tests, then builds.
func Check() {
	mg.SerialDeps(Test, Build)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// sampleDir holds the library created by Init.
const sampleDir = "sample"

const sampleLibrary = `file_directories:
  - papers
entries:
  - key: smith2020
    type: article
    fields:
      author: "Smith, John and Doe, Jane"
      title: "Deep Learning: A Survey"
      year: "2020"
      file: ":2020/paper.pdf:PDF"
  - key: mueller2018
    type: inproceedings
    fields:
      author: "Jörg Müller"
      title: "Über Dateinamen"
      year: "2018"
      file: "Slides:talk.pdf:PDF;:notes.txt:Text"
`

const sampleConfig = `library: library.yaml
pattern: "[auth:lower:ascii][year]"
`

// sampleFiles are created empty under sample/papers.
var sampleFiles = []string{
	"2020/paper.pdf",
	"talk.pdf",
	"notes.txt",
}

// Init creates a sample library with attachments under sample/ for trying
// the CLI by hand.
func Init() error {
	papers := filepath.Join(sampleDir, "papers")
	for _, f := range sampleFiles {
		path := filepath.Join(papers, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	if err := os.WriteFile(filepath.Join(sampleDir, "library.yaml"), []byte(sampleLibrary), 0o644); err != nil {
		return fmt.Errorf("writing library: %w", err)
	}
	if err := os.WriteFile(filepath.Join(sampleDir, "bibrename.yaml"), []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Sample library initialized in %s/. Run: cd %s && ../%s/%s rename\n", sampleDir, sampleDir, binDir, binName)
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories that hold no project sources.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir || name == sampleDir)
}

// countGoLines counts non-blank lines in production and test Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return sc.Err()
	})
	return prod, test, err
}

// countDocWords counts words in the top-level markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
