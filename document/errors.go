package document

import "errors"

var (
	// ErrMalformedContainer is returned for input that is not a usable OOXML
	// package: not a ZIP archive, encrypted or duplicated entries, missing
	// required parts, ill-formed core properties or oversized content.
	ErrMalformedContainer = errors.New("document: malformed container")

	// ErrNotSigned is returned by ExtractAndStrip when either envelope token is
	// absent. It is a verification outcome, not a failure.
	ErrNotSigned = errors.New("document: no signature envelope")
)
