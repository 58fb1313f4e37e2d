// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package watcher finds changed files by polling a directory tree.
//
// A Watcher keeps a snapshot of the modification time of every regular file
// it has seen.  Each scan walks the tree, reports files that are new or whose
// modification time moved forward, and publishes the resulting list on a
// bus.Bus.  Symbolic links are never followed; only regular files are
// recorded.
//
// By default a file that disappears stays in the snapshot and no change is
// reported for it.  The PurgeMissing option drops such entries and reports a
// Delete for each.
package watcher

import (
	"context"
	"expvar"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.opencensus.io/trace"

	"github.com/willcodefortea/filewatch/internal/bus"
	"github.com/willcodefortea/filewatch/internal/waker"
)

var (
	// scanCount counts scans started.
	scanCount = expvar.NewInt("scans_total")
	// scanErrorCount counts scans that failed to traverse or to notify.
	scanErrorCount = expvar.NewInt("scan_errors_total")
	// changeCount counts changes published.
	changeCount = expvar.NewInt("files_changed_total")
	// snapshotSize records the snapshot size after the most recent scan.
	snapshotSize = expvar.NewInt("snapshot_files")
)

// Watcher scans directories and publishes the files that changed.
type Watcher struct {
	b  *bus.Bus
	fs afero.Fs

	defaultDir   string
	purgeMissing bool
	errorsAbort  bool

	scanMu sync.Mutex // serialises Check

	filesMu sync.RWMutex // protects `files'
	files   map[string]time.Time
}

// New creates a Watcher that publishes to b.  Unless the DefaultDir option
// is given, the default directory is the working directory at the time New
// is called.
func New(b *bus.Bus, options ...Option) (*Watcher, error) {
	if b == nil {
		return nil, errors.New("can't create watcher without a bus")
	}
	w := &Watcher{
		b:     b,
		fs:    afero.NewOsFs(),
		files: make(map[string]time.Time),
	}
	for _, o := range options {
		if err := o.apply(w); err != nil {
			return nil, err
		}
	}
	if w.defaultDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "looking up default directory")
		}
		w.defaultDir = wd
	}
	return w, nil
}

// DefaultDir returns the directory scanned when Check is given "".
func (w *Watcher) DefaultDir() string {
	return w.defaultDir
}

// Files returns a copy of the snapshot, mapping each known path to its last
// seen modification time.
func (w *Watcher) Files() map[string]time.Time {
	w.filesMu.RLock()
	defer w.filesMu.RUnlock()
	r := make(map[string]time.Time, len(w.files))
	for k, v := range w.files {
		r[k] = v
	}
	return r
}

// Len returns the number of files in the snapshot.
func (w *Watcher) Len() int {
	w.filesMu.RLock()
	defer w.filesMu.RUnlock()
	return len(w.files)
}

// Check scans dir, or the default directory if dir is "", updates the
// snapshot, and publishes any changes found.  A directory that does not
// exist holds no files and is not an error.
//
// Traversal failures are returned as a *TraversalError; snapshot updates made
// before the failure are kept, and nothing is published.  An error from an
// observer is returned as well.  Calls on one Watcher are serialised.
func (w *Watcher) Check(ctx context.Context, dir string) error {
	ctx, span := trace.StartSpan(ctx, "Watcher.Check")
	defer span.End()

	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	scanCount.Add(1)
	if dir == "" {
		dir = w.defaultDir
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		scanErrorCount.Add(1)
		return errors.Wrapf(err, "failed to lookup absolute path of %q", dir)
	}
	span.AddAttributes(trace.StringAttribute("root", root))

	changes, err := w.scan(root)
	snapshotSize.Set(int64(w.Len()))
	if err != nil {
		scanErrorCount.Add(1)
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
		return err
	}
	if len(changes) == 0 {
		glog.V(2).Infof("No changes under %s", root)
		return nil
	}
	glog.V(1).Infof("%d changes under %s", len(changes), root)
	changeCount.Add(int64(len(changes)))
	if err := w.b.Publish(ctx, &bus.Event{FileList: &changes}); err != nil {
		scanErrorCount.Add(1)
		return errors.Wrapf(err, "publishing changes under %q", root)
	}
	return nil
}

// scan walks root and returns the changes found, updating the snapshot as it
// goes.
func (w *Watcher) scan(root string) (bus.ChangeList, error) {
	var changes bus.ChangeList
	seen := make(map[string]struct{})

	fi, err := w.lstat(root)
	switch {
	case os.IsNotExist(err):
		glog.V(1).Infof("%s does not exist, no files to scan", root)
	case err != nil:
		return nil, &TraversalError{Root: root, Path: root, Err: err}
	case !fi.IsDir():
		return nil, &TraversalError{Root: root, Path: root, Err: errors.New("not a directory")}
	default:
		err = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				// Files can vanish between the directory read and their stat.
				if os.IsNotExist(err) && path != root {
					glog.V(1).Info(err)
					return nil
				}
				return &TraversalError{Root: root, Path: path, Err: err}
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			seen[path] = struct{}{}
			if c, ok := w.update(path, info.ModTime()); ok {
				glog.V(2).Infof("Sending %s", c)
				changes = append(changes, c)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if w.purgeMissing {
		changes = append(changes, w.purge(root, seen)...)
	}
	return changes, nil
}

// update records mtime for path, returning the change if path is new or its
// modification time moved forward.
func (w *Watcher) update(path string, mtime time.Time) (bus.Change, bool) {
	w.filesMu.Lock()
	defer w.filesMu.Unlock()
	prev, ok := w.files[path]
	if ok && !mtime.After(prev) {
		return bus.Change{}, false
	}
	w.files[path] = mtime
	op := bus.Create
	if ok {
		op = bus.Update
	}
	return bus.Change{Op: op, Path: path, ModTime: mtime}, true
}

// purge removes snapshot entries under root that were not seen, returning a
// Delete change for each in path order.
func (w *Watcher) purge(root string, seen map[string]struct{}) bus.ChangeList {
	w.filesMu.Lock()
	defer w.filesMu.Unlock()
	var deleted bus.ChangeList
	for path, mtime := range w.files {
		if _, ok := seen[path]; ok || !within(root, path) {
			continue
		}
		delete(w.files, path)
		deleted = append(deleted, bus.Change{Op: bus.Delete, Path: path, ModTime: mtime})
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].Path < deleted[j].Path })
	return deleted
}

func (w *Watcher) lstat(name string) (os.FileInfo, error) {
	if l, ok := w.fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(name)
		return fi, err
	}
	return w.fs.Stat(name)
}

// within reports whether path is inside the directory root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Run scans dir immediately and then every time wk wakes, until ctx is
// cancelled.  Failed scans are logged and polling continues, unless the
// Watcher was created with ErrorsAbort.  A wakeup that arrives while a scan
// is running starts another scan as soon as it finishes.
func (w *Watcher) Run(ctx context.Context, wk waker.Waker, dir string) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		wake := wk.Wake()
		if err := w.Check(ctx, dir); err != nil {
			if w.errorsAbort {
				return err
			}
			glog.Warning(err)
		}
		select {
		case <-ctx.Done():
			glog.Infof("Stopping poll of %q", dir)
			return nil
		case <-wake:
		}
	}
}
