package chain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Seed prefixes used by the escrow program for its two accounts per bet
const (
	TransactionStateSeed = "transaction-state"
	EscrowWalletSeed     = "escrow-wallet"
)

// maxSeedLength is the runtime limit on a single PDA seed
const maxSeedLength = 32

// ErrInvalidIdentifier is returned for identifiers that cannot seed an address
var ErrInvalidIdentifier = errors.New("invalid game identifier")

// Addresses are the two program-derived accounts of one bet
type Addresses struct {
	TransactionState solana.PublicKey
	EscrowWallet     solana.PublicKey
}

// Derive computes the bet addresses under the workspace program
func (w *Workspace) Derive(gameIdentifier string) (Addresses, error) {
	return DeriveAddresses(w.ProgramID, gameIdentifier)
}

// DeriveAddresses computes the transaction-state and escrow-wallet PDAs for a
// game identifier. The result depends only on its inputs.
func DeriveAddresses(programID solana.PublicKey, gameIdentifier string) (Addresses, error) {
	if err := checkSeed(gameIdentifier); err != nil {
		return Addresses{}, err
	}

	state, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(TransactionStateSeed), []byte(gameIdentifier)},
		programID,
	)
	if err != nil {
		return Addresses{}, fmt.Errorf("failed to derive transaction state address: %w", err)
	}

	escrow, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(EscrowWalletSeed), []byte(gameIdentifier)},
		programID,
	)
	if err != nil {
		return Addresses{}, fmt.Errorf("failed to derive escrow wallet address: %w", err)
	}

	return Addresses{TransactionState: state, EscrowWallet: escrow}, nil
}

func checkSeed(gameIdentifier string) error {
	switch {
	case gameIdentifier == "":
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	case !utf8.ValidString(gameIdentifier):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidIdentifier)
	case len(gameIdentifier) > maxSeedLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidIdentifier, maxSeedLength)
	}
	return nil
}

// ValidGameIdentifier reports whether s has the shape the program accepts:
// 32 lowercase hex characters, a UUID without dashes.
func ValidGameIdentifier(s string) bool {
	if len(s) != 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// NewGameIdentifier returns a fresh random identifier: a version 4 UUID with
// the dashes removed.
func NewGameIdentifier() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
