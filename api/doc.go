/*
Package api defines the wire contract of the document signing service.

The service exposes identity enrollment and document signing, verification
and inspection over HTTP. This package holds what both sides of that
boundary share: header names, JSON request and response types, and the
server configuration. The server lives in the httpserver package and the
Go client in api/clients.

# Endpoints

	POST /api/identities            enroll an identity (JSON)
	GET  /api/identities/{id}       public view of an identity
	POST /api/documents/sign        sign a document (raw body, headers)
	POST /api/documents/verify      verify a document (raw body)
	POST /api/documents/inspect     report whether a document is signed
	GET  /api/documents/{digest}    fetch an archived signed document

Documents travel as raw request and response bodies. Signing metadata
travels in X-Docsign-* headers so that the body stays a valid document.

# Errors

Non-2xx responses carry an ErrorResponse. Verification outcomes are never
errors: a tampered or unsigned document is a 200 with the outcome in the
report.
*/
package api
