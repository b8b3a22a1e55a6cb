package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Fingerprint computes a SHA-256 hash of a raw inventory body.
func Fingerprint(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("inventory body is empty")
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
