package wallet

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const kekBytes = chacha20poly1305.KeySize

// Sealer encrypts secret keys at rest with XChaCha20-Poly1305. The
// key-encryption key is derived once from a passphrase with Argon2id.
// Each ciphertext is bound to its user ID as additional data, so a sealed
// secret copied to another user's record fails to open.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the key-encryption key
func NewSealer(passphrase string, salt []byte) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("seal passphrase is required")
	}
	if len(salt) == 0 {
		return nil, errors.New("seal salt is required")
	}

	kek := argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, kekBytes)
	defer Wipe(kek)

	aead, err := chacha20poly1305.NewX(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce || ciphertext
func (s *Sealer) Seal(id string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(id)), nil
}

// Open reverses Seal
func (s *Sealer) Open(id string, sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize()+s.aead.Overhead() {
		return nil, errors.New("sealed secret is truncated")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed secret: %w", err)
	}
	return plaintext, nil
}
