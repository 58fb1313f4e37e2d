// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package observer holds the observers filewatch registers on its bus.
package observer

import (
	"context"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/willcodefortea/filewatch/internal/bus"
)

// Logger logs every change it is notified of.
type Logger struct{}

// Notify implements bus.Observer.
func (Logger) Notify(ctx context.Context, e *bus.Event) error {
	for _, c := range *e.FileList {
		glog.Infof("%s %s (modified %s)", c.Op, c.Path, c.ModTime)
	}
	return nil
}

// Counter counts the changes it is notified of, by operation.
type Counter struct {
	changes *prometheus.CounterVec
}

// NewCounter creates a Counter and registers its metric with reg.
func NewCounter(reg prometheus.Registerer) (*Counter, error) {
	c := &Counter{
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filewatch",
			Name:      "changes_total",
			Help:      "number of file changes delivered to observers, by operation",
		}, []string{"op"}),
	}
	if err := reg.Register(c.changes); err != nil {
		return nil, err
	}
	return c, nil
}

// Notify implements bus.Observer.
func (c *Counter) Notify(ctx context.Context, e *bus.Event) error {
	for _, ch := range *e.FileList {
		c.changes.WithLabelValues(ch.Op.String()).Inc()
	}
	return nil
}
