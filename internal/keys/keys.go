package keys

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strings"

	"orderly-client/internal/codec"
)

const (
	// Size is the length of an Ed25519 seed.
	Size = ed25519.SeedSize
	// KeyIDPrefix tags both pasted secrets and rendered public key ids.
	KeyIDPrefix = "ed25519:"
)

// ErrInvalidKeyLength indicates decoded key material is neither 32 nor 64 bytes.
var ErrInvalidKeyLength = errors.New("invalid key length")

type KeyLengthError struct {
	Length int
}

func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("invalid key length: %d bytes (expected %d)", e.Length, Size)
}

func (e *KeyLengthError) Is(target error) bool {
	return target == ErrInvalidKeyLength
}

// PrivateKey is a raw Ed25519 seed.
type PrivateKey [Size]byte

// String keeps key bytes out of logs and fmt output.
func (PrivateKey) String() string { return "ed25519:[redacted]" }

func (PrivateKey) GoString() string { return "keys.PrivateKey{redacted}" }

// Format is the textual encoding detected for a pasted secret.
type Format int

const (
	FormatInvalid Format = iota
	FormatHex
	FormatBase58
)

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "hex"
	case FormatBase58:
		return "base58"
	default:
		return "invalid"
	}
}

// Material is a classified secret: its detected format and the text left after
// trimming whitespace and the ed25519: prefix.
type Material struct {
	Format Format
	Text   string
}

// Classify decides how a secret string must be decoded. Hex wins over Base58 when
// the text starts with 0x or consists only of hex digits.
func Classify(s string) Material {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, KeyIDPrefix)
	switch {
	case strings.HasPrefix(s, "0x"), codec.IsHex(s):
		return Material{Format: FormatHex, Text: s}
	case codec.IsBase58(s):
		return Material{Format: FormatBase58, Text: s}
	default:
		return Material{Format: FormatInvalid, Text: s}
	}
}

// Decode returns the raw bytes of the material without any length normalization.
func (m Material) Decode() ([]byte, error) {
	switch m.Format {
	case FormatHex:
		return codec.DecodeHex(m.Text)
	case FormatBase58:
		return codec.DecodeBase58(m.Text)
	default:
		if m.Text == "" {
			return nil, &KeyLengthError{Length: 0}
		}
		// Surface the offending character the Base58 decoder reports.
		_, err := codec.DecodeBase58(m.Text)
		if err == nil {
			err = fmt.Errorf("unrecognized key format")
		}
		return nil, err
	}
}

// Parse normalizes a user supplied secret into a 32 byte private key. A 64 byte
// key (seed followed by its public key) is truncated to the seed.
func Parse(s string) (PrivateKey, error) {
	raw, err := Classify(s).Decode()
	if err != nil {
		return PrivateKey{}, err
	}
	return FromBytes(raw)
}

func FromBytes(raw []byte) (PrivateKey, error) {
	if len(raw) == ed25519.PrivateKeySize {
		raw = raw[:Size]
	}
	if len(raw) != Size {
		return PrivateKey{}, &KeyLengthError{Length: len(raw)}
	}
	var key PrivateKey
	copy(key[:], raw)
	return key, nil
}

// LoadFile reads a secret from path and parses it like Parse.
func LoadFile(path string) (PrivateKey, error) {
	if path == "" {
		return PrivateKey{}, errors.New("secret key path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PrivateKey{}, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return PrivateKey{}, fmt.Errorf("empty secret key file: %s", path)
	}
	key, err := Parse(string(data))
	if err != nil {
		return PrivateKey{}, fmt.Errorf("parse secret key file %s: %w", path, err)
	}
	return key, nil
}
