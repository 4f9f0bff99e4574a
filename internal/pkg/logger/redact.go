package logger

import "strings"

// RedactIP masks the host portion of an IPv4 address for safe logging.
// "203.0.113.42" → "203.0.***.***"
func RedactIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "***"
	}
	return parts[0] + "." + parts[1] + ".***.***"
}

// RedactToken masks an opaque identifier, keeping a short prefix for
// correlation. "a1b2c3d4e5f6" → "a1b2***"
// Short tokens (≤4 chars) are fully masked.
func RedactToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) > 4 {
		return tok[:4] + "***"
	}
	return "***"
}
