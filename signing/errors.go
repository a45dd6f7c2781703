package signing

import "errors"

var (
	// ErrInvalidCredential is returned when the password does not unwrap the
	// identity's private key. The caller may retry with another password.
	ErrInvalidCredential = errors.New("signing: invalid credential")

	// ErrAlreadySigned is returned when asked to sign a document that already
	// carries a signature envelope.
	ErrAlreadySigned = errors.New("signing: document already signed")

	// ErrEmptyPassword is returned by Enroll and Sign for an empty password.
	ErrEmptyPassword = errors.New("signing: empty password")

	// ErrKeyMismatch is returned when an identity's unwrapped private key does
	// not belong to its recorded public key, i.e. the stored record is corrupt.
	ErrKeyMismatch = errors.New("signing: private key does not match identity public key")
)
