// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Option configures a Watcher.
type Option interface {
	apply(*Watcher) error
}

// DefaultDir sets the directory scanned when Check is given no directory.
type DefaultDir string

func (opt DefaultDir) apply(w *Watcher) error {
	if opt == "" {
		return errors.New("default directory must not be empty")
	}
	w.defaultDir = string(opt)
	return nil
}

// Fs sets the filesystem the Watcher traverses.
func Fs(fs afero.Fs) Option {
	return &fsOption{fs}
}

type fsOption struct {
	afero.Fs
}

func (opt fsOption) apply(w *Watcher) error {
	if opt.Fs == nil {
		return errors.New("nil filesystem")
	}
	w.fs = opt.Fs
	return nil
}

type niladicOption struct {
	applyfunc func(w *Watcher) error
}

func (n *niladicOption) apply(w *Watcher) error {
	return n.applyfunc(w)
}

// PurgeMissing makes each scan forget files that were not found under the
// scanned directory, and report them with a Delete change.  Without it,
// deleted files stay in the snapshot and are never reported.
var PurgeMissing = &niladicOption{
	func(w *Watcher) error {
		w.purgeMissing = true
		return nil
	}}

// ErrorsAbort makes Run return on the first failed scan instead of logging
// the error and polling again.
var ErrorsAbort = &niladicOption{
	func(w *Watcher) error {
		w.errorsAbort = true
		return nil
	}}
