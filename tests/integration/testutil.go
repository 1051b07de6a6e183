// Package integration exercises the librarian binary end to end: a
// fixture library is laid out under a temp dir, the real binary runs
// against it, and the tests assert on output and exit codes.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// librarianBin is the path to the built librarian binary.
	librarianBin string
	// buildErr captures any build error from TestMain.
	buildErr error
)

// BuildError wraps a build failure with the compiler output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the CWD looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// Library is a fixture corpus under a temp dir, with its own config
// file so the binary resolves it as the library root.
type Library struct {
	t    *testing.T
	Root string
}

// libraryConfigYAML keeps fixture trees small: two roots and a short
// exclude list.
const libraryConfigYAML = `roots:
  - algorithms
  - tutorials
exclude:
  - .git
  - .ipynb_checkpoints
  - .librarian-cache
timeouts_file: tests/resources/timeouts.yaml
default_timeout_seconds: 360
max_notebook_bytes: 2097152
`

// NewLibrary creates an empty fixture library with a .librarian.yaml.
func NewLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewBareLibrary(t)
	lib.WriteFile(".librarian.yaml", libraryConfigYAML)
	return lib
}

// NewBareLibrary creates a fixture root without a config file, for
// tests that exercise defaults or init.
func NewBareLibrary(t *testing.T) *Library {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build librarian: %v", buildErr)
	}
	if librarianBin == "" {
		t.Fatal("librarian binary not built")
	}

	return &Library{t: t, Root: t.TempDir()}
}

// MkDir creates a directory at a slash path relative to the library
// root.
func (l *Library) MkDir(rel string) {
	l.t.Helper()
	if err := os.MkdirAll(filepath.Join(l.Root, filepath.FromSlash(rel)), 0o755); err != nil {
		l.t.Fatalf("mkdir %s: %v", rel, err)
	}
}

// WriteFile writes content at a slash path relative to the library
// root, creating parent directories.
func (l *Library) WriteFile(rel, content string) string {
	l.t.Helper()
	abs := filepath.Join(l.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		l.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		l.t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

// WriteNotebook writes a minimal clean nbformat-4 notebook: python3
// kernel, one executed code cell, one markdown cell.
func (l *Library) WriteNotebook(rel string) string {
	l.t.Helper()
	return l.WriteFile(rel, `{
  "nbformat": 4,
  "nbformat_minor": 5,
  "metadata": {"kernelspec": {"name": "python3", "display_name": "Python 3", "language": "python"}},
  "cells": [
    {"cell_type": "markdown", "source": ["# Demo\n"], "metadata": {}},
    {"cell_type": "code", "source": ["print(1)\n"], "execution_count": 1, "outputs": [], "metadata": {}}
  ]
}
`)
}

// WriteQmod writes a minimal clean qmod source declaring main.
func (l *Library) WriteQmod(rel string) string {
	l.t.Helper()
	return l.WriteFile(rel, "qfunc main(res: qbit) {\n  H(res);\n}\n")
}

// WriteRegistry writes the timeout registry with one line per entry in
// the given order.
func (l *Library) WriteRegistry(lines ...string) string {
	l.t.Helper()
	content := "{}\n"
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return l.WriteFile("tests/resources/timeouts.yaml", content)
}

// ReadFile returns the content of a file under the library root.
func (l *Library) ReadFile(rel string) string {
	l.t.Helper()
	data, err := os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(rel)))
	if err != nil {
		l.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// CmdResult holds the outcome of one librarian invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// cleanEnv strips LIBRARIAN_* and GITHUB_TOKEN from the host
// environment so tests control the full precedence chain.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "LIBRARIAN_") || strings.HasPrefix(e, "GITHUB_TOKEN=") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// Run executes librarian with --root pointing at the fixture library.
func (l *Library) Run(args ...string) CmdResult {
	l.t.Helper()
	return l.RunWith(nil, append([]string{"--root", l.Root}, args...)...)
}

// RunWith executes librarian with explicit env overrides and raw args,
// from the library root.
func (l *Library) RunWith(env []string, args ...string) CmdResult {
	l.t.Helper()
	return l.RunIn(l.Root, env, args...)
}

// RunIn executes librarian from dir with explicit env overrides and
// raw args, so tests control the full root-resolution chain.
func (l *Library) RunIn(dir string, env []string, args ...string) CmdResult {
	l.t.Helper()

	cmd := exec.Command(librarianBin, args...)
	cmd.Dir = dir
	cmd.Env = append(cleanEnv(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			l.t.Fatalf("run librarian %v: %v", args, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes librarian and fails the test on a non-zero exit.
func (l *Library) MustRun(args ...string) CmdResult {
	l.t.Helper()
	res := l.Run(args...)
	if res.ExitCode != 0 {
		l.t.Fatalf("librarian %v exited %d:\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// registryLine formats one registry entry the way sync writes whole
// seconds.
func registryLine(name string, seconds int) string {
	return fmt.Sprintf("%s: %d", name, seconds)
}
