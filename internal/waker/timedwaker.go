// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package waker

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// A timedWaker wakes callers on a regular interval.
type timedWaker struct {
	mu   sync.Mutex // protects wake
	wake broadcast
}

// NewTimed returns a Waker that fires every interval until ctx is cancelled.
func NewTimed(ctx context.Context, interval time.Duration) Waker {
	w := &timedWaker{wake: make(broadcast)}
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				glog.V(1).Infof("timed waker (%s) stopping", interval)
				return
			case <-t.C:
				w.mu.Lock()
				w.wake.fire()
				w.mu.Unlock()
			}
		}
	}()
	return w
}

// Wake implements the Waker interface.
func (w *timedWaker) Wake() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wake
}
