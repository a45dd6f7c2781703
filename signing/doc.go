// Package signing orchestrates identity enrollment, document signing and
// document verification.
//
// Signing canonicalizes the document, hashes it, unwraps the signer's private
// key with their password, signs the digest and embeds the signature envelope.
// Key material exists only inside a single Sign call and is zeroized on every
// exit path.
//
// Verification runs an explicit state machine:
//
//	Extracting -> Rehashing -> Verifying -> Attributing -> Done
//
// and ends in one of the Outcome values. Attribution only runs when the
// Verifier has a registry; a document whose signature verifies but which the
// registry does not know is Unregistered, never silently Valid.
package signing
