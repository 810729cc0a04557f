// Package http serves a stater router over HTTP with chi.
//
// It accepts updates as normalized JSON or as Telegram webhooks, dispatching
// each under its conversation lock, and exposes the compiled routes for
// inspection: handler listing, Mermaid graph, explain, SSE dispatch events
// and Prometheus metrics.
//
// Routes, request bodies and responses are declared in api/openapi.yaml; the
// chi wiring and models in api.gen.go are generated from it with oapi-codegen.
package http
