// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// TestTempDir creates a temporary directory for use during tests, returning the pathname.
func TestTempDir(tb testing.TB) string {
	tb.Helper()
	name, err := os.MkdirTemp("", "filewatch-test")
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		// Undo any permission changes a test made so RemoveAll can succeed.
		_ = filepath.Walk(name, func(path string, info os.FileInfo, err error) error {
			if info != nil && info.IsDir() {
				_ = os.Chmod(path, 0o700)
			}
			return nil
		})
		if err := os.RemoveAll(name); err != nil {
			tb.Fatalf("os.RemoveAll(%s): %s", name, err)
		}
	})
	return name
}

// TestCreateFile creates an empty file at name, along with any missing
// parent directories.
func TestCreateFile(tb testing.TB, name string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o700); err != nil {
		tb.Fatal(err)
	}
	f, err := os.OpenFile(filepath.Clean(name), os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		tb.Fatal(err)
	}
	FatalIfErr(tb, f.Close())
}

// TestTree creates each of the relative paths under root as empty files and
// returns their absolute paths.
func TestTree(tb testing.TB, root string, names ...string) []string {
	tb.Helper()
	r := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(root, n)
		TestCreateFile(tb, p)
		r = append(r, p)
	}
	return r
}

// TestMemTree is TestTree on an in-memory filesystem.  Every file gets the
// modification time mtime.
func TestMemTree(tb testing.TB, root string, mtime time.Time, names ...string) afero.Fs {
	tb.Helper()
	fs := afero.NewMemMapFs()
	FatalIfErr(tb, fs.MkdirAll(root, 0o700))
	for _, n := range names {
		p := filepath.Join(root, n)
		FatalIfErr(tb, fs.MkdirAll(filepath.Dir(p), 0o700))
		FatalIfErr(tb, afero.WriteFile(fs, p, nil, 0o600))
		FatalIfErr(tb, fs.Chtimes(p, mtime, mtime))
	}
	return fs
}

// Touch moves the modification time of name forward by d from its current
// value, which guarantees a strictly later time regardless of the
// filesystem's timestamp resolution.
func Touch(tb testing.TB, fs afero.Fs, name string, d time.Duration) time.Time {
	tb.Helper()
	fi, err := fs.Stat(name)
	FatalIfErr(tb, err)
	t := fi.ModTime().Add(d)
	FatalIfErr(tb, fs.Chtimes(name, t, t))
	return t
}

// Chdir changes current working directory, and registers a cleanup function
// to return to the previous directory.
func Chdir(tb testing.TB, dir string) {
	tb.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		tb.Fatal(err)
	}
	err = os.Chdir(dir)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		err := os.Chdir(cwd)
		if err != nil {
			tb.Fatal(err)
		}
	})
}
