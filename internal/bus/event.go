// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package bus

import (
	"fmt"
	"time"
)

type OpType int

const (
	_ OpType = iota
	Create
	Update
	Delete
)

func (o OpType) String() string {
	switch o {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("OpType(%d)", int(o))
}

// Change records one file seen as new, modified, or removed during a scan.
type Change struct {
	Op      OpType
	Path    string
	ModTime time.Time // Last observed modification time; the stored value for Delete.
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s @%s", c.Op, c.Path, c.ModTime.Format(time.RFC3339Nano))
}

// ChangeList is the ordered result of one scan.  A single ChangeList is shared
// by every observer in a notification round, and changes made to it by one
// observer are seen by the ones after it.
type ChangeList []Change

// Len returns the number of changes remaining in the list.
func (l *ChangeList) Len() int {
	return len(*l)
}

// Pop removes and returns the change at index i.  It panics if i is out of
// range, like a slice index.
func (l *ChangeList) Pop(i int) Change {
	c := (*l)[i]
	*l = append((*l)[:i], (*l)[i+1:]...)
	return c
}

// Paths returns the path of each change, in order.
func (l *ChangeList) Paths() []string {
	r := make([]string, 0, len(*l))
	for _, c := range *l {
		r = append(r, c.Path)
	}
	return r
}

// Event is the payload delivered to observers.  The same *Event is passed to
// every observer of a round.
type Event struct {
	FileList *ChangeList
}
