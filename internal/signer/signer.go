// Package signer derives Orderly key ids and produces Ed25519 request signatures.
package signer

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"orderly-client/internal/codec"
	"orderly-client/internal/keys"
)

// Signer signs canonical request messages on behalf of one Orderly key.
type Signer interface {
	// KeyID returns the value sent in the orderly-key header.
	KeyID() string
	Sign(message []byte) ([]byte, error)
}

func DerivePublicKey(key keys.PrivateKey) ed25519.PublicKey {
	return ed25519.NewKeyFromSeed(key[:]).Public().(ed25519.PublicKey)
}

// Sign returns the 64 byte detached signature of message.
func Sign(message []byte, key keys.PrivateKey) []byte {
	return ed25519.Sign(ed25519.NewKeyFromSeed(key[:]), message)
}

func Verify(pub ed25519.PublicKey, message, signature []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, message, signature)
}

func RenderKeyID(pub ed25519.PublicKey) string {
	return keys.KeyIDPrefix + codec.EncodeBase58(pub)
}

// ParseKeyID is the inverse of RenderKeyID.
func ParseKeyID(id string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(id, keys.KeyIDPrefix) {
		return nil, errors.New("key id must start with " + keys.KeyIDPrefix)
	}
	raw, err := codec.DecodeBase58(strings.TrimPrefix(id, keys.KeyIDPrefix))
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Ed25519Signer holds an expanded key so repeated signing skips key derivation.
type Ed25519Signer struct {
	priv  ed25519.PrivateKey
	keyID string
}

func New(key keys.PrivateKey) *Ed25519Signer {
	priv := ed25519.NewKeyFromSeed(key[:])
	return &Ed25519Signer{
		priv:  priv,
		keyID: RenderKeyID(priv.Public().(ed25519.PublicKey)),
	}
}

func (s *Ed25519Signer) KeyID() string { return s.keyID }

func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	if len(s.priv) != ed25519.PrivateKeySize {
		return nil, errors.New("ed25519 signer: key not initialized")
	}
	return ed25519.Sign(s.priv, message), nil
}
