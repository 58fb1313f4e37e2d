// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"time"

	"github.com/golang/glog"
)

// DoOrTimeout runs do every interval until it returns true, returns an
// error, or the deadline passes.
func DoOrTimeout(do func() (bool, error), deadline, interval time.Duration) (bool, error) {
	timeout := time.After(deadline)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-timeout:
			return false, nil
		case <-ticker.C:
			ok, err := do()
			glog.V(2).Infof("DoOrTimeout: ok %v err %v", ok, err)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
}
