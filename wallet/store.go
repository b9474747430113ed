package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
)

// ErrNotLoggedIn is returned when no complete key pair is held for a user
var ErrNotLoggedIn = errors.New("not logged in")

// Store is the custodial key store
type Store interface {
	// Login stores both key halves for id, replacing any previous pair
	Login(ctx context.Context, id string, secretKey solana.PrivateKey, publicKey string) error
	// GetKeypair returns a copy of the pair or ErrNotLoggedIn
	GetKeypair(ctx context.Context, id string) (*models.KeyPair, error)
	// Logout erases the pair. Erasing an absent pair is not an error.
	Logout(ctx context.Context, id string) error
	IsLoggedIn(ctx context.Context, id string) (bool, error)
}

// validatePair rejects pairs whose halves do not belong together
func validatePair(id string, secretKey solana.PrivateKey, publicKey string) error {
	if id == "" {
		return errors.New("user id is required")
	}
	if len(secretKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("secret key must be %d bytes", ed25519.PrivateKeySize)
	}
	if secretKey.PublicKey().String() != publicKey {
		return errors.New("public key does not match secret key")
	}
	return nil
}

type keyRecord struct {
	secretKey solana.PrivateKey
	publicKey string
}

// MemoryStore keeps key pairs in process memory. Records are immutable once
// stored; login swaps in a new record and logout removes it.
type MemoryStore struct {
	records sync.Map // map[string]*keyRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Login stores a copy of the key pair
func (s *MemoryStore) Login(_ context.Context, id string, secretKey solana.PrivateKey, publicKey string) error {
	if err := validatePair(id, secretKey, publicKey); err != nil {
		return err
	}
	s.records.Store(id, &keyRecord{
		secretKey: append(solana.PrivateKey(nil), secretKey...),
		publicKey: publicKey,
	})
	return nil
}

// GetKeypair returns a copy the caller may wipe
func (s *MemoryStore) GetKeypair(_ context.Context, id string) (*models.KeyPair, error) {
	value, ok := s.records.Load(id)
	if !ok {
		return nil, ErrNotLoggedIn
	}
	record := value.(*keyRecord)
	return &models.KeyPair{
		SecretKey: append(solana.PrivateKey(nil), record.secretKey...),
		PublicKey: record.publicKey,
	}, nil
}

// Logout forgets the key pair
func (s *MemoryStore) Logout(_ context.Context, id string) error {
	s.records.Delete(id)
	return nil
}

// IsLoggedIn reports whether a key pair is held
func (s *MemoryStore) IsLoggedIn(_ context.Context, id string) (bool, error) {
	_, ok := s.records.Load(id)
	return ok, nil
}
