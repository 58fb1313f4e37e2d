// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"fmt"
	"os/user"
	"testing"
)

// SkipIfRoot skips tests that rely on permission denied errors, which root
// never sees.
func SkipIfRoot(tb testing.TB) {
	tb.Helper()
	u, err := user.Current()
	if err != nil {
		tb.Skip(fmt.Sprintf("Couldn't determine current user id: %s", err))
	}
	if u.Uid == "0" {
		tb.Skip("Skipping test when run as root")
	}
}
