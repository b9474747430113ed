package models

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// BetPhase represents the advisory off-chain phase of a bet session
type BetPhase string

const (
	BetPhaseOpened    BetPhase = "opened"
	BetPhaseJoined    BetPhase = "joined"
	BetPhaseSettled   BetPhase = "settled"
	BetPhaseCancelled BetPhase = "cancelled"
)

// BetSession is the off-chain journal entry for one bet.
// The chain is authoritative; this record only mirrors accepted calls.
type BetSession struct {
	GameIdentifier          string    `db:"game_identifier"`
	InitializerID           string    `db:"initializer_id"`
	JoinerID                *string   `db:"joiner_id"`
	Amount                  uint64    `db:"amount"`
	TransactionStateAddress string    `db:"transaction_state_address"`
	EscrowWalletAddress     string    `db:"escrow_wallet_address"`
	Phase                   BetPhase  `db:"phase"`
	WinnerID                *string   `db:"winner_id"`
	OpenTx                  *string   `db:"open_tx"`
	JoinTx                  *string   `db:"join_tx"`
	SettleTx                *string   `db:"settle_tx"`
	CancelTx                *string   `db:"cancel_tx"`
	CreatedAt               time.Time `db:"created_at"`
	UpdatedAt               time.Time `db:"updated_at"`
}

// CanTransitionTo checks the Opened -> Joined -> Settled ordering,
// with Cancelled reachable only from Opened
func (b *BetSession) CanTransitionTo(next BetPhase) bool {
	switch b.Phase {
	case BetPhaseOpened:
		return next == BetPhaseJoined || next == BetPhaseCancelled
	case BetPhaseJoined:
		return next == BetPhaseSettled
	default:
		return false
	}
}

// OpenResult is returned after a bet is opened on-chain
type OpenResult struct {
	GameIdentifier string
	TxRef          solana.Signature
}

// SettleResult describes a completed settlement
type SettleResult struct {
	GameIdentifier  string
	TxRef           solana.Signature
	WinnerID        string
	LoserID         string
	WinnerPublicKey string
}

// AcceptResult covers both on-chain calls driven by an ACCEPT command
type AcceptResult struct {
	JoinTxRef  solana.Signature
	Settlement *SettleResult
}
