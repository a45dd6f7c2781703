package storage

import (
	"fmt"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

const maxKeyLength = 255

// validateRecord checks the namespace and key shared by all backends. Keys
// are limited to [A-Za-z0-9._-] so they map onto file names, S3 object keys
// and Vault paths unchanged.
func validateRecord(ns interfaces.Namespace, key string) error {
	if ns.String() == "unknown" {
		return fmt.Errorf("%w: unknown namespace %d", interfaces.ErrInvalidKey, int(ns))
	}
	if key == "" || key == "." || key == ".." || len(key) > maxKeyLength {
		return fmt.Errorf("%w: %q", interfaces.ErrInvalidKey, key)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q", interfaces.ErrInvalidKey, key)
		}
	}
	return nil
}
