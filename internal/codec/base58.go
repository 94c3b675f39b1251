package codec

import (
	"strings"

	"github.com/mr-tron/base58"
)

// Base58Alphabet is the Bitcoin alphabet. It omits 0, O, I and l.
const Base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// DecodeBase58 decodes s using the Bitcoin alphabet. Every leading '1' becomes one
// leading zero byte in the output.
func DecodeBase58(s string) ([]byte, error) {
	if err := validateBase58(s); err != nil {
		return nil, err
	}
	if s == "" {
		return []byte{}, nil
	}
	return base58.Decode(s)
}

// EncodeBase58 is the inverse of DecodeBase58.
func EncodeBase58(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base58.Encode(b)
}

// IsBase58 reports whether s is non-empty and made only of alphabet characters.
func IsBase58(s string) bool {
	return s != "" && validateBase58(s) == nil
}

func validateBase58(s string) error {
	for i, r := range s {
		if r > 0x7f || strings.IndexRune(Base58Alphabet, r) < 0 {
			return &InvalidCharacterError{Encoding: "base58", Char: r, Pos: i}
		}
	}
	return nil
}
