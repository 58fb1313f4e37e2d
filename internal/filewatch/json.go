// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package filewatch

import (
	"encoding/json"
	"expvar"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var exportJSONErrors = expvar.NewInt("snapshot_json_errors")

// WriteSnapshot writes the watcher's snapshot to w as a JSON object mapping
// each path to its last seen modification time.
func (m *Server) WriteSnapshot(w io.Writer) error {
	b, err := json.MarshalIndent(m.w.Files(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot into json")
	}
	_, err = w.Write(b)
	return err
}

// HandleJSON exports the snapshot in JSON format via HTTP.
func (m *Server) HandleJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("content-type", "application/json")
	if err := m.WriteSnapshot(w); err != nil {
		exportJSONErrors.Add(1)
		glog.Info("error exporting snapshot as json: ", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
