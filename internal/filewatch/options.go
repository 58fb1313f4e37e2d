// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package filewatch

import (
	"io"
	"net"
	"time"

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.opencensus.io/trace"

	"github.com/willcodefortea/filewatch/internal/bus"
	"github.com/willcodefortea/filewatch/internal/waker"
	"github.com/willcodefortea/filewatch/internal/watcher"
)

// Option configures filewatch.Server
type Option interface {
	apply(*Server) error
}

// WatchDir sets the directory the Server polls.  Without it the Server polls
// the default directory.
type WatchDir string

func (opt WatchDir) apply(m *Server) error {
	m.watchDir = string(opt)
	return nil
}

// DefaultDir sets the directory polled when no WatchDir is given.
type DefaultDir string

func (opt DefaultDir) apply(m *Server) error {
	m.watcherOpts = append(m.watcherOpts, watcher.DefaultDir(opt))
	return nil
}

// Filesystem sets the filesystem the Server's watcher traverses.
func Filesystem(fs afero.Fs) Option {
	return &filesystem{fs}
}

type filesystem struct {
	afero.Fs
}

func (opt filesystem) apply(m *Server) error {
	m.watcherOpts = append(m.watcherOpts, watcher.Fs(opt.Fs))
	return nil
}

// PollInterval sets the time between scans.
type PollInterval time.Duration

func (opt PollInterval) apply(m *Server) error {
	if opt <= 0 {
		return errors.Errorf("poll interval must be positive, got %s", time.Duration(opt))
	}
	m.pollWaker = waker.NewTimed(m.ctx, time.Duration(opt))
	return nil
}

// PollWaker sets the Waker that triggers scans, replacing PollInterval.
func PollWaker(w waker.Waker) Option {
	return &pollWaker{w}
}

type pollWaker struct {
	waker.Waker
}

func (opt pollWaker) apply(m *Server) error {
	m.pollWaker = opt.Waker
	return nil
}

// AddObserver registers an observer on the Server's bus, after the built-in
// observers.
func AddObserver(o bus.Observer) Option {
	return &addObserver{o}
}

type addObserver struct {
	bus.Observer
}

func (opt addObserver) apply(m *Server) error {
	m.observers = append(m.observers, opt.Observer)
	return nil
}

// BindAddress sets the HTTP server address in Server.
func BindAddress(address, port string) Option {
	return &bindAddress{address, port}
}

type bindAddress struct {
	address, port string
}

func (opt bindAddress) apply(m *Server) error {
	if m.listener != nil {
		return errors.New("HTTP server bind address already supplied")
	}
	m.bindAddress = net.JoinHostPort(opt.address, opt.port)
	var err error
	m.listener, err = net.Listen("tcp", m.bindAddress)
	return errors.Wrapf(err, "failed to listen on %s", m.bindAddress)
}

// DumpSnapshot makes a OneShot Server write its snapshot as JSON to w after
// the scan.
func DumpSnapshot(w io.Writer) Option {
	return &dumpSnapshot{w}
}

type dumpSnapshot struct {
	io.Writer
}

func (opt dumpSnapshot) apply(m *Server) error {
	m.dumpSnapshot = opt.Writer
	return nil
}

// SetBuildInfo sets the filewatch program build information in the Server.
type SetBuildInfo BuildInfo

func (opt SetBuildInfo) apply(m *Server) error {
	m.buildInfo = BuildInfo(opt)
	return nil
}

type niladicOption struct {
	applyfunc func(m *Server) error
}

func (n *niladicOption) apply(m *Server) error {
	return n.applyfunc(m)
}

// OneShot makes the Server scan once and exit.
var OneShot = &niladicOption{
	func(m *Server) error {
		m.oneShot = true
		return nil
	}}

// PurgeMissing makes the watcher forget deleted files and report them.
var PurgeMissing = &niladicOption{
	func(m *Server) error {
		m.watcherOpts = append(m.watcherOpts, watcher.PurgeMissing)
		return nil
	}}

// LogChanges registers an observer that logs every change.
var LogChanges = &niladicOption{
	func(m *Server) error {
		m.logChanges = true
		return nil
	}}

// JaegerReporter creates a new jaeger reporter that sends to the given Jaeger endpoint address.
type JaegerReporter string

func (opt JaegerReporter) apply(m *Server) error {
	je, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: string(opt),
		Process: jaeger.Process{
			ServiceName: "filewatch",
		},
	})
	if err != nil {
		return err
	}
	trace.RegisterExporter(je)
	return nil
}
