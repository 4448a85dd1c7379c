// Package seal encrypts small records with NaCl secretbox so they can sit in a
// shared key-value store without exposing bearer tokens.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrOpen is returned for any ciphertext that cannot be authenticated.
var ErrOpen = errors.New("seal: cannot open box")

// Box seals and opens payloads with a key derived from a shared secret.
type Box struct {
	key [32]byte
}

// New derives the secretbox key from secret. The secret must not be empty.
func New(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("seal: empty secret")
	}
	return &Box{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal encrypts msg and returns nonce||box in URL-safe base64.
func (b *Box) Seal(msg []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("seal: nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], msg, &nonce, &b.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (b *Box) Open(s string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	msg, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return msg, nil
}
