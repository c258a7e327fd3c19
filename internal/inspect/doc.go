// Package inspect serves a live view of one scheduler over HTTP.
//
// Trees are posted as YAML or JSON tree files to /render and rendered into
// an in-memory host tree by an idle loop, exactly as an interactive host
// would drive the scheduler. The remaining routes expose the result:
//
//	POST /render     schedule a tree (?wait=true blocks until commit)
//	GET  /tree       committed host tree as HTML
//	GET  /mutations  last commit summary and its mutation log
//	GET  /ws         commit feed (WebSocket, JSON messages)
//	GET  /metrics    Prometheus metrics
package inspect
