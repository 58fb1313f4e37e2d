// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"expvar"
	"testing"
)

func expvarInt(tb testing.TB, name string) int64 {
	tb.Helper()
	v := expvar.Get(name)
	if v == nil {
		tb.Fatalf("no expvar named %q", name)
	}
	return v.(*expvar.Int).Value()
}

func expvarMapInt(tb testing.TB, name, key string) int64 {
	tb.Helper()
	v := expvar.Get(name)
	if v == nil {
		tb.Fatalf("no expvar named %q", name)
	}
	if i := v.(*expvar.Map).Get(key); i != nil {
		return i.(*expvar.Int).Value()
	}
	return 0
}

// ExpectExpvarDelta returns a deferrable function which checks that the expvar
// Int called name has changed by want since ExpectExpvarDelta was called.
func ExpectExpvarDelta(tb testing.TB, name string, want int64) func() {
	tb.Helper()
	start := expvarInt(tb, name)
	return func() {
		tb.Helper()
		if got := expvarInt(tb, name) - start; got != want {
			tb.Errorf("expvar %s delta: got %d, want %d", name, got, want)
		}
	}
}

// ExpectMapExpvarDelta is ExpectExpvarDelta for a key of an expvar Map.
func ExpectMapExpvarDelta(tb testing.TB, name, key string, want int64) func() {
	tb.Helper()
	start := expvarMapInt(tb, name, key)
	return func() {
		tb.Helper()
		if got := expvarMapInt(tb, name, key) - start; got != want {
			tb.Errorf("expvar %s[%s] delta: got %d, want %d", name, key, got, want)
		}
	}
}
