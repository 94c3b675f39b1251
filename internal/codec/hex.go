package codec

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// DecodeHex accepts an optional 0x prefix and either letter case. An odd-length
// input is left-padded with a single '0'.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	for i, r := range s {
		if !isHexDigit(r) {
			return nil, &InvalidCharacterError{Encoding: "hex", Char: r, Pos: i}
		}
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// IsHex reports whether s is non-empty and made only of hex digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

// EncodeBase64URL uses the URL-safe alphabet and strips all '=' padding.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL accepts the unpadded form produced by EncodeBase64URL; trailing
// padding is tolerated.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
