package service

import (
	"context"

	"escrowbot/chain"
	"escrowbot/events"
	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
)

// CustodialWallet is the part of the custodial key store the orchestrator uses
type CustodialWallet interface {
	// GetKeypair returns a copy of the user's key pair or ErrNotLoggedIn
	GetKeypair(ctx context.Context, id string) (*models.KeyPair, error)

	// Logout erases the user's key pair; absent pairs are not an error
	Logout(ctx context.Context, id string) error

	// IsLoggedIn reports whether a secret key is held for the user
	IsLoggedIn(ctx context.Context, id string) (bool, error)
}

// AccountCreator creates custodial accounts and indexes their public keys
type AccountCreator interface {
	CreateAccount(ctx context.Context, id string) (*models.NewAccount, error)
}

// IdentityIndex resolves external user IDs to public keys
type IdentityIndex interface {
	// Get returns the identity or nil if none was recorded
	Get(ctx context.Context, externalID string) (*models.Identity, error)
}

// BetJournal is the advisory off-chain record of bet sessions
type BetJournal interface {
	// Create records a newly opened bet
	Create(ctx context.Context, session *models.BetSession) error

	// GetByGameIdentifier returns the session or nil if it was never journaled
	GetByGameIdentifier(ctx context.Context, gameIdentifier string) (*models.BetSession, error)

	// MarkJoined records the joiner and deposit transaction
	MarkJoined(ctx context.Context, gameIdentifier, joinerID, txRef string) error

	// MarkSettled records the winner and outcome transaction
	MarkSettled(ctx context.Context, gameIdentifier, winnerID, txRef string) error

	// MarkCancelled records the refund transaction
	MarkCancelled(ctx context.Context, gameIdentifier, txRef string) error
}

// EscrowProgram submits the escrow program's instructions
type EscrowProgram interface {
	Open(ctx context.Context, p chain.OpenParams) (solana.Signature, error)
	Join(ctx context.Context, p chain.JoinParams) (solana.Signature, error)
	Settle(ctx context.Context, p chain.SettleParams) (solana.Signature, error)
	Cancel(ctx context.Context, p chain.CancelParams) (solana.Signature, error)
}

// TokenAccountResolver finds or creates an owner's token account.
// A nil payer means the settlement authority pays.
type TokenAccountResolver interface {
	ResolveOrCreate(ctx context.Context, owner solana.PublicKey, payer solana.PrivateKey) (solana.PublicKey, error)
}

// AddressDeriver computes a bet's program-derived addresses
type AddressDeriver interface {
	Derive(gameIdentifier string) (chain.Addresses, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// RandomSource picks a uniform integer in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// AccountRecorder observes account creation
type AccountRecorder interface {
	RecordAccountCreated(ctx context.Context)
}

// AccountService defines the interface for custodial account operations
type AccountService interface {
	// CreateAccount creates and logs in a fresh account for the user.
	// The returned mnemonic must only be sent over a private channel.
	CreateAccount(ctx context.Context, externalID string) (*models.NewAccount, error)
}

// BetOrchestrator drives a bet through open, join and settle
type BetOrchestrator interface {
	// Open locks the initializer's stake under a new game identifier
	Open(ctx context.Context, initializerID string, amount uint64) (*models.OpenResult, error)

	// Join matches the stake of an opened bet
	Join(ctx context.Context, joinerID, initializerID, gameIdentifier string) (solana.Signature, error)

	// Settle picks a winner and pays out the pot
	Settle(ctx context.Context, gameIdentifier, joinerID, initializerID string) (*models.SettleResult, error)

	// Accept joins then settles. initializerID must match the journaled
	// initializer. On a settle failure the join reference is still returned
	// alongside the error.
	Accept(ctx context.Context, joinerID, initializerID, gameIdentifier string) (*models.AcceptResult, error)

	// Cancel refunds a bet nobody has joined. Only its initializer may cancel.
	Cancel(ctx context.Context, requesterID, gameIdentifier string) (solana.Signature, error)
}
