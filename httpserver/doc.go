/*
Package httpserver implements the HTTP transport of the document signing service.

Handler is a thin adapter: it reads request bodies and headers, calls the
signing orchestrators, and maps their errors onto status codes. Server wraps
it with the chi router, request logging, health endpoints and the metrics
listener.

# Endpoints

  - POST /api/identities: enroll an identity
  - GET /api/identities/{id}: public identity view
  - POST /api/documents/sign: sign the request body
  - POST /api/documents/verify: verify the request body
  - POST /api/documents/inspect: report whether the request body is signed
  - GET /api/documents/{digest}: fetch an archived signed document
  - GET /livez, /readyz, /drain, /undrain: health and load balancer control
  - /debug/pprof: profiling, when enabled

# Error Mapping

	invalid credential                        401
	malformed container, already signed,
	empty password, bad request input          400
	identity or document not found             404
	conflict                                   409
	body over the configured limit             413
	anything else                              500 (message not exposed)

Verification outcomes are reported in a 200 body, never as error statuses.

# Secrets

Passwords arrive in the X-Docsign-Password header and are handed straight to
the signer. They are never logged, and the request logger does not record
headers.
*/
package httpserver
