// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Diff(a, b interface{}, opts ...cmp.Option) string {
	return cmp.Diff(a, b, opts...)
}

// ExpectNoDiff reports a test error if a and b differ, printing the diff.
func ExpectNoDiff(tb testing.TB, a, b interface{}, opts ...cmp.Option) bool {
	tb.Helper()
	if diff := Diff(a, b, opts...); diff != "" {
		tb.Errorf("Unexpected diff, -want +got:\n%s", diff)
		tb.Logf("expected:\n%#v", a)
		tb.Logf("received:\n%#v", b)
		return false
	}
	return true
}
