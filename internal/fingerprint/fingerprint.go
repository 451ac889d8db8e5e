// Package fingerprint computes content hashes used as deduplication keys.
//
// The digest is used purely as an equality key for detecting re-ingestion of
// the same document, never for security.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the SHA-256 hex digest of data. It is deterministic and total:
// any byte sequence, including an empty one, produces a digest.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
