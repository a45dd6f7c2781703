package document

import (
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// Canonicalize parses an OOXML package and reserializes it in canonical form.
// Part contents are preserved byte for byte, including dcterms:modified; only
// the archive encoding and the two metadata carriers are normalized.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(raw []byte) ([]byte, error) {
	c, _, err := load(raw)
	if err != nil {
		return nil, err
	}
	return c.bytes()
}

// Digest returns the SHA-256 digest of data. Callers pass canonical bytes.
func Digest(data []byte) interfaces.ContentDigest {
	return interfaces.ComputeDigest(data)
}
