package notebook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/srulre/classiq-library/pkg/types"
)

const sample = `{
  "nbformat": 4,
  "nbformat_minor": 5,
  "metadata": {
    "kernelspec": {"name": "python3", "display_name": "Python 3", "language": "python"}
  },
  "cells": [
    {"cell_type": "markdown", "metadata": {}, "source": ["# Grover search\n"]},
    {
      "cell_type": "code",
      "metadata": {},
      "execution_count": 1,
      "outputs": [],
      "source": "from classiq import *\n"
    }
  ]
}`

func TestParse(t *testing.T) {
	nb, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nb.NBFormat != 4 || nb.NBFormatMinor != 5 {
		t.Errorf("nbformat = %d.%d, want 4.5", nb.NBFormat, nb.NBFormatMinor)
	}
	if got := nb.Metadata.Kernelspec.Name; got != "python3" {
		t.Errorf("kernel = %q, want python3", got)
	}
	if len(nb.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(nb.Cells))
	}
	if got := nb.Cells[1].Source.String(); got != "from classiq import *\n" {
		t.Errorf("code source = %q", got)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("not json"))
	if !errors.Is(err, types.ErrMalformedNotebook) {
		t.Fatalf("err = %v, want ErrMalformedNotebook", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grover.ipynb")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	nb, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if nb.Name != "grover" {
		t.Errorf("Name = %q, want grover", nb.Name)
	}
	if nb.Path != path {
		t.Errorf("Path = %q, want %q", nb.Path, path)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.ipynb")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
