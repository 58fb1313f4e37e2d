// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package bus delivers the changes found by a scan to a set of registered
// observers.
//
// A Bus carries one kind of event.  Observers are called synchronously, in
// the order they were registered, and all receive the same *Event.  There is
// no copying between observers: an observer that edits the FileList changes
// what the following observers see.  This is part of the contract, not an
// accident of aliasing.
package bus

import (
	"context"
	"expvar"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

var (
	// publishes counts notification rounds per bus.
	publishes = expvar.NewMap("bus_publishes_total")
	// observerErrors counts rounds aborted by a failing observer, per bus.
	observerErrors = expvar.NewMap("bus_observer_errors_total")
)

// Observer receives events published on a Bus.
type Observer interface {
	Notify(ctx context.Context, e *Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e *Event) error

// Notify calls f(ctx, e).
func (f ObserverFunc) Notify(ctx context.Context, e *Event) error {
	return f(ctx, e)
}

// Bus is a registry of observers for one event kind.
type Bus struct {
	name string

	observersMu sync.RWMutex // protects `observers'
	observers   []Observer
}

// New returns an empty Bus.  name identifies the bus in logs and metrics.
func New(name string) *Bus {
	return &Bus{name: name}
}

// Name returns the name the Bus was created with.
func (b *Bus) Name() string {
	return b.name
}

// Register appends o to the observer list.  Registering the same observer
// twice means it is notified twice per round.
func (b *Bus) Register(o Observer) {
	b.observersMu.Lock()
	defer b.observersMu.Unlock()
	b.observers = append(b.observers, o)
	glog.V(1).Infof("bus %s: registered observer %d (%T)", b.name, len(b.observers), o)
}

// RemoveAll unregisters every observer.
func (b *Bus) RemoveAll() {
	b.observersMu.Lock()
	defer b.observersMu.Unlock()
	glog.V(1).Infof("bus %s: removing %d observers", b.name, len(b.observers))
	b.observers = nil
}

// Len returns the number of registered observers.
func (b *Bus) Len() int {
	b.observersMu.RLock()
	defer b.observersMu.RUnlock()
	return len(b.observers)
}

// Publish notifies each registered observer of e in registration order.  The
// round works on the observer list as it was when Publish was called, so
// Register and RemoveAll from inside an observer apply to the next round.
//
// The first observer to return an error stops the round; the observers after
// it are not notified and the error is returned.
func (b *Bus) Publish(ctx context.Context, e *Event) error {
	ctx, span := trace.StartSpan(ctx, "Bus.Publish")
	defer span.End()

	b.observersMu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.observersMu.RUnlock()

	publishes.Add(b.name, 1)
	span.AddAttributes(trace.Int64Attribute("observers", int64(len(observers))))
	for i, o := range observers {
		if err := o.Notify(ctx, e); err != nil {
			observerErrors.Add(b.name, 1)
			span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
			return errors.Wrapf(err, "bus %s: observer %d (%T)", b.name, i, o)
		}
	}
	return nil
}
