package testutil

import (
	"strings"

	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// NewGameIdentifier returns a random identifier in the on-chain format
func NewGameIdentifier() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewPublicKey returns a random base58 public key
func NewPublicKey() string {
	return solana.NewWallet().PublicKey().String()
}

// CreateTestBetSession creates an opened bet session with default values
func CreateTestBetSession(initializerID string, amount uint64) *models.BetSession {
	openTx := solana.Signature{1}.String()
	return &models.BetSession{
		GameIdentifier:          NewGameIdentifier(),
		InitializerID:           initializerID,
		Amount:                  amount,
		TransactionStateAddress: NewPublicKey(),
		EscrowWalletAddress:     NewPublicKey(),
		Phase:                   models.BetPhaseOpened,
		OpenTx:                  &openTx,
	}
}
