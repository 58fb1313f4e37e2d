// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Command filewatch polls a directory tree and reports files that were
// created or modified since the previous scan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"go.opencensus.io/trace"

	"github.com/willcodefortea/filewatch/internal/filewatch"
)

var (
	dir        = flag.String("dir", "", "Directory to poll for changes.  If unset, --default_dir is polled.")
	defaultDir = flag.String("default_dir", "", "Directory polled when --dir is not given.  Defaults to the working directory.")

	pollInterval = flag.Duration("poll_interval", time.Second, "Interval between scans of the directory; must be positive.")
	oneShot      = flag.Bool("one_shot", false, "Scan the directory once, report every file found, print the snapshot as JSON, and exit.")
	purgeMissing = flag.Bool("purge_missing", false, "Forget files that disappear between scans and report them as deleted.  By default deleted files stay in the snapshot and are never reported.")
	logChanges   = flag.Bool("log_changes", true, "Log each changed file to the INFO log.")

	port    = flag.String("port", "3904", "HTTP port to listen on.  Empty disables the HTTP server.")
	address = flag.String("address", "", "Host or IP address on which to bind HTTP listener")

	version = flag.Bool("version", false, "Print filewatch version information.")

	// Tracing.
	jaegerEndpoint    = flag.String("jaeger_endpoint", "", "If set, collector endpoint URL of jaeger thrift service")
	traceSamplePeriod = flag.Int("trace_sample_period", 0, "Sample period for traces.  If non-zero, every nth trace will be sampled.")
)

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker when compiled
	// with `make'.  The defaults here indicate that the user did not use
	// `make' as instructed.
	Branch   = "invalid:-use-make-to-build"
	Version  = "invalid:-use-make-to-build"
	Revision = "invalid:-use-make-to-build"
)

func main() {
	buildInfo := filewatch.BuildInfo{
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(buildInfo.String())
		os.Exit(0)
	}
	glog.Info(buildInfo.String())
	glog.Infof("Commandline: %q", os.Args)
	if len(flag.Args()) > 0 {
		glog.Exitf("Too many extra arguments specified: %q\n(use --dir to name the directory to poll)", flag.Args())
	}
	if *pollInterval <= 0 {
		glog.Exitf("--poll_interval must be positive, got %s", *pollInterval)
	}
	if *traceSamplePeriod > 0 {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(1 / float64(*traceSamplePeriod))})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigint
		glog.Infof("Received %+v, exiting...", sig)
		cancel()
	}()

	opts := []filewatch.Option{
		filewatch.WatchDir(*dir),
		filewatch.SetBuildInfo(buildInfo),
	}
	if *defaultDir != "" {
		opts = append(opts, filewatch.DefaultDir(*defaultDir))
	}
	if *oneShot {
		opts = append(opts, filewatch.OneShot, filewatch.DumpSnapshot(os.Stdout))
	} else {
		opts = append(opts, filewatch.PollInterval(*pollInterval))
		if *port != "" {
			opts = append(opts, filewatch.BindAddress(*address, *port))
		}
	}
	if *purgeMissing {
		opts = append(opts, filewatch.PurgeMissing)
	}
	if *logChanges {
		opts = append(opts, filewatch.LogChanges)
	}
	if *jaegerEndpoint != "" {
		opts = append(opts, filewatch.JaegerReporter(*jaegerEndpoint))
	}
	m, err := filewatch.New(ctx, opts...)
	if err != nil {
		glog.Error(err)
		cancel()
		os.Exit(1) //nolint:gocritic // false positive
	}
	if err := m.Run(); err != nil {
		glog.Error(err)
		cancel()
		os.Exit(1) //nolint:gocritic // false positive
	}
	glog.Flush()
}
