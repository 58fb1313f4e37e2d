// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package filewatch runs a Watcher as a long-lived daemon: it polls a
// directory on an interval, feeds changes to the observers on its bus, and
// serves metrics and debugging endpoints over HTTP.
package filewatch

import (
	"context"
	"expvar"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"go.opencensus.io/zpages"

	"github.com/willcodefortea/filewatch/internal/bus"
	"github.com/willcodefortea/filewatch/internal/observer"
	"github.com/willcodefortea/filewatch/internal/waker"
	"github.com/willcodefortea/filewatch/internal/watcher"
)

const defaultPollInterval = time.Second

// Server contains the state of the main filewatch program.
type Server struct {
	ctx    context.Context
	cancel context.CancelFunc

	b *bus.Bus          // b delivers changes to observers
	w *watcher.Watcher  // w scans watchDir
	c *observer.Counter // c counts changes for /metrics

	reg *prometheus.Registry

	h        *http.Server
	listener net.Listener

	closeOnce sync.Once // Ensure shutdown happens only once

	bindAddress string           // address to bind HTTP server
	buildInfo   BuildInfo        // go build information
	watchDir    string           // directory to poll; "" for the watcher's default
	watcherOpts []watcher.Option // options passed through to the watcher
	pollWaker   waker.Waker      // Wake to scan watchDir
	observers   []bus.Observer   // observers registered after the built-in ones
	oneShot     bool             // if set, scan once then exit
	logChanges  bool             // if set, log each change

	dumpSnapshot io.Writer // if set, OneShot writes the snapshot here
}

// New creates a Server from the supplied Options.  The Server stops when ctx
// is cancelled.
func New(ctx context.Context, options ...Option) (*Server, error) {
	m := &Server{
		b:   bus.New("file_updated"),
		h:   &http.Server{},
		reg: prometheus.NewRegistry(),
	}
	m.ctx, m.cancel = context.WithCancel(ctx)

	expvarDescs := map[string]*prometheus.Desc{
		// internal/watcher/watcher.go
		"scans_total":         prometheus.NewDesc("scans_total", "number of directory scans started", nil, nil),
		"scan_errors_total":   prometheus.NewDesc("scan_errors_total", "number of scans that failed", nil, nil),
		"files_changed_total": prometheus.NewDesc("files_changed_total", "number of changed files published", nil, nil),
		"snapshot_files":      prometheus.NewDesc("snapshot_files", "number of files in the snapshot after the last scan", nil, nil),
		// internal/bus/bus.go
		"bus_publishes_total":       prometheus.NewDesc("bus_publishes_total", "number of notification rounds per bus", []string{"bus"}, nil),
		"bus_observer_errors_total": prometheus.NewDesc("bus_observer_errors_total", "number of rounds aborted by an observer error per bus", []string{"bus"}, nil),
	}
	m.reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	// Prefix all expvar metrics with 'filewatch_'
	prometheus.WrapRegistererWithPrefix("filewatch_", m.reg).MustRegister(
		prometheus.NewExpvarCollector(expvarDescs))

	if err := m.SetOption(options...); err != nil {
		m.abort()
		return nil, err
	}
	if m.pollWaker == nil {
		glog.Infof("no poll interval specified; defaulting to %s", defaultPollInterval)
		m.pollWaker = waker.NewTimed(m.ctx, defaultPollInterval)
	}

	version.Branch = m.buildInfo.Branch
	version.Version = m.buildInfo.Version
	version.Revision = m.buildInfo.Revision
	m.reg.MustRegister(version.NewCollector("filewatch"))

	if err := m.initObservers(); err != nil {
		m.abort()
		return nil, err
	}
	var err error
	m.w, err = watcher.New(m.b, m.watcherOpts...)
	if err != nil {
		m.abort()
		return nil, err
	}
	return m, nil
}

// abort releases what New acquired before it failed.
func (m *Server) abort() {
	m.cancel()
	if m.listener != nil {
		if err := m.listener.Close(); err != nil {
			glog.Info(err)
		}
	}
}

// initObservers registers the built-in observers, then the ones supplied by
// options.
func (m *Server) initObservers() (err error) {
	m.c, err = observer.NewCounter(m.reg)
	if err != nil {
		return err
	}
	m.b.Register(m.c)
	if m.logChanges {
		m.b.Register(observer.Logger{})
	}
	for _, o := range m.observers {
		m.b.Register(o)
	}
	return nil
}

// SetOption takes one or more option functions and applies them in order to Server.
func (m *Server) SetOption(options ...Option) error {
	for _, option := range options {
		if err := option.apply(m); err != nil {
			return err
		}
	}
	return nil
}

// Bus returns the bus changes are published on.
func (m *Server) Bus() *bus.Bus {
	return m.b
}

// Watcher returns the Server's watcher.
func (m *Server) Watcher() *watcher.Watcher {
	return m.w
}

// Run scans the watched directory until the Server is closed or its context
// is cancelled.  In OneShot mode it scans once and returns the scan's error.
func (m *Server) Run() error {
	if m.oneShot {
		err := m.w.Check(m.ctx, m.watchDir)
		if cerr := m.Close(); cerr != nil {
			glog.Warning(cerr)
		}
		if err != nil || m.dumpSnapshot == nil {
			return err
		}
		return m.WriteSnapshot(m.dumpSnapshot)
	}
	var errc chan error
	if m.listener != nil {
		errc = make(chan error, 1)
		go func() {
			errc <- m.Serve()
		}()
	}
	err := m.w.Run(m.ctx, m.pollWaker, m.watchDir)
	if cerr := m.Close(); cerr != nil {
		glog.Warning(cerr)
	}
	if errc != nil {
		if serr := <-errc; serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// Serve runs the HTTP server until it is shut down by Close.
func (m *Server) Serve() error {
	mux := http.NewServeMux()
	mux.Handle("/", m)
	mux.HandleFunc("/json", m.HandleJSON)
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	zpages.Handle(mux, "/debug")
	m.h.Handler = mux

	glog.Infof("Listening on %s", m.listener.Addr())
	err := m.h.Serve(m.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	glog.Error(err)
	m.cancel()
	return err
}

// Close stops polling and shuts down the HTTP server, ensuring that it only
// occurs once.
func (m *Server) Close() error {
	m.closeOnce.Do(func() {
		glog.Info("Shutdown requested.")
		m.cancel()
		if m.listener != nil {
			glog.Info("Shutting down http server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := m.h.Shutdown(ctx); err != nil {
				glog.Error(err)
			}
			cancel()
		}
		glog.Info("END OF LINE")
	})
	return nil
}

// Addr returns the address the HTTP server listens on, or "none".
func (m *Server) Addr() string {
	if m.listener == nil {
		return "none"
	}
	return m.listener.Addr().String()
}
