// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package waker tells idle poll loops when to scan again.
package waker

// A Waker is used to signal to idle routines it's time to look for new work.
type Waker interface {
	// Wake returns a channel that's closed when the idle routine should wake up.
	Wake() <-chan struct{}
}

// broadcast is a wake channel that is closed and replaced on every wakeup.
// Callers must hold whatever lock protects it.
type broadcast chan struct{}

func (b *broadcast) fire() {
	close(*b)
	*b = make(chan struct{})
}
