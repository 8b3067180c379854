package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// keyVersion prefixes every fingerprint so a format change invalidates
// old entries instead of colliding with them.
const keyVersion = "v1"

// fingerprintTextLimit bounds how much script text feeds the key. Two
// scripts sharing profile, rate, pitch and leading text map to the same
// entry; that collision is accepted.
const fingerprintTextLimit = 100

// Fingerprint derives the deterministic cache key for a generation
// request.
func Fingerprint(profile string, rate, pitch float64, text string) string {
	if len(text) > fingerprintTextLimit {
		text = text[:fingerprintTextLimit]
	}
	payload := fmt.Sprintf("%s|%.2f|%.2f|%s", profile, rate, pitch, text)
	hash := sha256.Sum256([]byte(payload))
	return keyVersion + "_" + hex.EncodeToString(hash[:])
}
