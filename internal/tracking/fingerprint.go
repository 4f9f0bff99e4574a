package tracking

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives a stable anonymous visitor id from request headers.
// The raw values never leave this function.
func Fingerprint(userAgent, ip, acceptLanguage string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + ip + "|" + acceptLanguage))
	return hex.EncodeToString(sum[:])[:16]
}

// HashIP hashes a client address so ledgers never store the raw IP.
func HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:16]
}
