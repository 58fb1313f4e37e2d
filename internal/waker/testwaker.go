// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package waker

import (
	"sync"

	"github.com/golang/glog"
)

// testWaker is woken by hand from a test.
type testWaker struct {
	name string

	mu   sync.Mutex // protects wake
	wake broadcast
}

// WakeFunc wakes every routine currently blocked on the test Waker.
type WakeFunc func()

// NewTest returns a Waker for tests, and the function that wakes it.  name
// labels the waker in debug logs.
func NewTest(name string) (Waker, WakeFunc) {
	w := &testWaker{name: name, wake: make(broadcast)}
	return w, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		glog.V(1).Infof("TestWaker(%s) broadcasting wake", w.name)
		w.wake.fire()
	}
}

// Wake implements the Waker interface.
func (w *testWaker) Wake() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wake
}
