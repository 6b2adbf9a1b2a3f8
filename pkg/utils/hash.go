package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Fingerprint hashes parts joined by sep and returns the hex digest. The
// caller decides whether order matters by sorting parts first.
func Fingerprint(sep string, parts ...string) string {
	sum := SumSHA256([]byte(strings.Join(parts, sep)))
	return hex.EncodeToString(sum[:])
}
