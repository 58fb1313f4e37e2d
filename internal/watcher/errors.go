// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import "fmt"

// TraversalError reports a scan that could not walk its directory: the root
// is not a directory, or some part of the tree could not be read.
type TraversalError struct {
	Root string // Directory being scanned.
	Path string // Entry that failed; equal to Root when the root itself failed.
	Err  error
}

func (e *TraversalError) Error() string {
	if e.Path == "" || e.Path == e.Root {
		return fmt.Sprintf("scan of %q failed: %s", e.Root, e.Err)
	}
	return fmt.Sprintf("scan of %q failed at %q: %s", e.Root, e.Path, e.Err)
}

// Cause allows errors.Cause to find the underlying error.
func (e *TraversalError) Cause() error { return e.Err }

func (e *TraversalError) Unwrap() error { return e.Err }
