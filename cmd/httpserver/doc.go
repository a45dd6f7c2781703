// Package main (cmd/httpserver) runs the document signing HTTP service.
//
// The server exposes identity enrollment, document signing, verification
// and inspection over HTTP, plus retrieval of archived signed documents
// when archiving is enabled. Identities, registry entries and archived
// documents live in the storage backends named by --storage (repeatable)
// or the storage.uris list of the YAML file given with --config.
//
// Configuration precedence is flags, then DOCSIGN_* environment variables,
// then the YAML file, then built-in defaults.
//
// The server implements graceful shutdown on SIGINT/SIGTERM, and serves
// health checks, Prometheus metrics and optional pprof endpoints.
//
// Example usage:
//
//	docsign-server --listen-addr=0.0.0.0:8080 \
//	    --storage=file:///var/lib/docsign \
//	    --archive
package main
