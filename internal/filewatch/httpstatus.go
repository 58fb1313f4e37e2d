// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package filewatch

import (
	"html/template"
	"net/http"
)

const statusTemplate = `
<!DOCTYPE html>
<html>
<head>
<title>filewatch on {{.BindAddress}}</title>
</head>
<body>
<h1>filewatch on {{.BindAddress}}</h1>
<p>Build: {{.BuildInfo}}</p>
<p>Watching: {{.WatchDir}}</p>
<p>Files in snapshot: {{.Files}}</p>
<p>Observers on {{.Bus}}: {{.Observers}}</p>
<p>Snapshot: <a href="/json">json</a></p>
<p>Metrics: <a href="/metrics">prometheus</a>, <a href="/debug/vars">debug/vars</a></p>
<p>Debug: <a href="/debug/pprof">debug/pprof</a>, <a href="/debug/tracez">debug/tracez</a>, <a href="/debug/rpcz">debug/rpcz</a></p>
</body>
</html>
`

var statusTmpl = template.Must(template.New("status").Parse(statusTemplate))

// ServeHTTP satisfies the http.Handler interface, and is used to serve the
// root page of filewatch for online status reporting.
func (m *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	watchDir := m.watchDir
	if watchDir == "" {
		watchDir = m.w.DefaultDir()
	}
	data := struct {
		BindAddress string
		BuildInfo   string
		WatchDir    string
		Files       int
		Bus         string
		Observers   int
	}{
		m.Addr(),
		m.buildInfo.String(),
		watchDir,
		m.w.Len(),
		m.b.Name(),
		m.b.Len(),
	}
	w.Header().Add("Content-type", "text/html")
	w.WriteHeader(http.StatusOK)
	if err := statusTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
