// Package api serves the diagram pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness, version and renderer capabilities
//	POST /v1/validate         Gates 1 and 2, always answered with the reports
//	POST /v1/layout           placed layout plus gate reports
//	POST /v1/render/{format}  rendered bytes of one format
//	POST /v1/dot              Graphviz preview (?svg=1 renders it)
//
// Every POST takes the same body:
//
//	{"diagram": {...}, "options": {"palette": "modern-slate", "strict": true}}
//
// Failures are answered with {"error": {"code", "message"}} and, when a
// quality gate stopped the run, the reports gathered so far.
package api
