/*
Package clients provides the Go client for the document signing API.

DocsignClient implements api.SigningService over HTTP: identity enrollment
and lookup, and document signing, verification and inspection. Non-2xx
responses are returned as *APIError carrying the status code and the
server's error message.

MockSigningService is a testify mock of the same interface for code that
talks to the service.
*/
package clients
