// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/willcodefortea/filewatch/internal/testutil"
)

type countingObserver struct {
	calls int
}

func (c *countingObserver) Notify(ctx context.Context, e *Event) error {
	c.calls++
	return nil
}

func newEvent(paths ...string) *Event {
	l := make(ChangeList, 0, len(paths))
	for _, p := range paths {
		l = append(l, Change{Op: Create, Path: p, ModTime: time.Unix(1, 0)})
	}
	return &Event{FileList: &l}
}

func TestPublishSharesChangeList(t *testing.T) {
	b := New("test")
	var seen []int
	popper := ObserverFunc(func(ctx context.Context, e *Event) error {
		seen = append(seen, e.FileList.Len())
		if e.FileList.Len() > 0 {
			e.FileList.Pop(0)
		}
		return nil
	})
	b.Register(popper)
	b.Register(popper)
	b.Register(popper)

	e := newEvent("/a/file_1")
	testutil.FatalIfErr(t, b.Publish(context.Background(), e))

	testutil.ExpectNoDiff(t, []int{1, 0, 0}, seen)
	if e.FileList.Len() != 0 {
		t.Errorf("FileList not drained by observers: %v", *e.FileList)
	}
}

func TestPublishRegistrationOrder(t *testing.T) {
	b := New("test")
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		b.Register(ObserverFunc(func(ctx context.Context, e *Event) error {
			order = append(order, name)
			return nil
		}))
	}
	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
	testutil.ExpectNoDiff(t, []string{"first", "second", "third"}, order)
}

func TestRemoveAllThenRegister(t *testing.T) {
	b := New("test")
	old := &countingObserver{}
	for i := 0; i < 3; i++ {
		b.Register(old)
	}
	b.RemoveAll()
	if b.Len() != 0 {
		t.Fatalf("Len() after RemoveAll = %d, want 0", b.Len())
	}
	o := &countingObserver{}
	b.Register(o)

	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
	if o.calls != 1 {
		t.Errorf("observer notified %d times, want 1", o.calls)
	}
	if old.calls != 0 {
		t.Errorf("removed observer notified %d times", old.calls)
	}
}

func TestRegisterTwiceNotifiesTwice(t *testing.T) {
	b := New("test")
	o := &countingObserver{}
	b.Register(o)
	b.Register(o)
	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
	if o.calls != 2 {
		t.Errorf("observer notified %d times, want 2", o.calls)
	}
}

func TestObserverErrorAbortsRound(t *testing.T) {
	b := New("test_abort")
	boom := errors.New("boom")
	before := &countingObserver{}
	after := &countingObserver{}
	b.Register(before)
	b.Register(ObserverFunc(func(ctx context.Context, e *Event) error {
		return boom
	}))
	b.Register(after)

	defer testutil.ExpectMapExpvarDelta(t, "bus_observer_errors_total", "test_abort", 1)()
	defer testutil.ExpectMapExpvarDelta(t, "bus_publishes_total", "test_abort", 1)()

	err := b.Publish(context.Background(), newEvent("/x"))
	if errors.Cause(err) != boom {
		t.Fatalf("Publish error = %v, want cause %v", err, boom)
	}
	if before.calls != 1 {
		t.Errorf("observer before failure notified %d times, want 1", before.calls)
	}
	if after.calls != 0 {
		t.Errorf("observer after failure notified %d times, want 0", after.calls)
	}
}

func TestRegisterDuringPublish(t *testing.T) {
	b := New("test")
	late := &countingObserver{}
	registered := false
	b.Register(ObserverFunc(func(ctx context.Context, e *Event) error {
		if !registered {
			registered = true
			b.Register(late)
		}
		return nil
	}))

	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
	if late.calls != 0 {
		t.Errorf("observer registered mid-round was notified in the same round")
	}
	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
	if late.calls != 1 {
		t.Errorf("late observer notified %d times on next round, want 1", late.calls)
	}
}

func TestPublishNoObservers(t *testing.T) {
	b := New("test")
	testutil.FatalIfErr(t, b.Publish(context.Background(), newEvent("/x")))
}

func TestChangeListPop(t *testing.T) {
	e := newEvent("/a", "/b", "/c")
	c := e.FileList.Pop(1)
	if c.Path != "/b" {
		t.Errorf("Pop(1) = %v, want /b", c)
	}
	testutil.ExpectNoDiff(t, []string{"/a", "/c"}, e.FileList.Paths())
}

func TestOpTypeString(t *testing.T) {
	for op, want := range map[OpType]string{
		Create:    "create",
		Update:    "update",
		Delete:    "delete",
		OpType(9): "OpType(9)",
	} {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(op), got, want)
		}
	}
}
