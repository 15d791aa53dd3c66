package reviewer

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintHash computes the stable idempotency key for a PR event:
// a hash of (repository, pr id, source commit id), deliberately
// excluding event type.
func fingerprintHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
