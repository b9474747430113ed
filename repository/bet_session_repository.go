package repository

import (
	"context"
	"errors"
	"fmt"

	"escrowbot/database"
	"escrowbot/models"

	"github.com/jackc/pgx/v5"
)

// ErrPhaseConflict is returned when a journal update does not match the
// recorded phase of the bet
var ErrPhaseConflict = errors.New("bet session is not in the expected phase")

// BetSessionRepository journals bet sessions and their phase changes
type BetSessionRepository struct {
	q queryable
}

// NewBetSessionRepository creates a new bet session repository
func NewBetSessionRepository(db *database.DB) *BetSessionRepository {
	return &BetSessionRepository{q: db.Pool}
}

const betSessionColumns = `
	game_identifier, initializer_id, joiner_id, amount,
	transaction_state_address, escrow_wallet_address, phase, winner_id,
	open_tx, join_tx, settle_tx, cancel_tx, created_at, updated_at
`

func scanBetSession(row pgx.Row) (*models.BetSession, error) {
	var session models.BetSession
	err := row.Scan(
		&session.GameIdentifier,
		&session.InitializerID,
		&session.JoinerID,
		&session.Amount,
		&session.TransactionStateAddress,
		&session.EscrowWalletAddress,
		&session.Phase,
		&session.WinnerID,
		&session.OpenTx,
		&session.JoinTx,
		&session.SettleTx,
		&session.CancelTx,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Create records a newly opened bet
func (r *BetSessionRepository) Create(ctx context.Context, session *models.BetSession) error {
	query := `
		INSERT INTO bet_sessions (
			game_identifier, initializer_id, amount,
			transaction_state_address, escrow_wallet_address, phase, open_tx
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		session.GameIdentifier,
		session.InitializerID,
		session.Amount,
		session.TransactionStateAddress,
		session.EscrowWalletAddress,
		session.Phase,
		session.OpenTx,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet session %s: %w", session.GameIdentifier, err)
	}

	return nil
}

// GetByGameIdentifier retrieves a bet session, or nil if it was never journaled
func (r *BetSessionRepository) GetByGameIdentifier(ctx context.Context, gameIdentifier string) (*models.BetSession, error) {
	query := `SELECT ` + betSessionColumns + ` FROM bet_sessions WHERE game_identifier = $1`

	session, err := scanBetSession(r.q.QueryRow(ctx, query, gameIdentifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet session %s: %w", gameIdentifier, err)
	}

	return session, nil
}

// MarkJoined records the joiner and deposit transaction
func (r *BetSessionRepository) MarkJoined(ctx context.Context, gameIdentifier, joinerID, txRef string) error {
	query := `
		UPDATE bet_sessions
		SET phase = 'joined', joiner_id = $2, join_tx = $3, updated_at = NOW()
		WHERE game_identifier = $1 AND phase = 'opened'
	`
	return r.transition(ctx, "joined", query, gameIdentifier, joinerID, txRef)
}

// MarkSettled records the winner and outcome transaction
func (r *BetSessionRepository) MarkSettled(ctx context.Context, gameIdentifier, winnerID, txRef string) error {
	query := `
		UPDATE bet_sessions
		SET phase = 'settled', winner_id = $2, settle_tx = $3, updated_at = NOW()
		WHERE game_identifier = $1 AND phase = 'joined'
	`
	return r.transition(ctx, "settled", query, gameIdentifier, winnerID, txRef)
}

// MarkCancelled records the refund transaction
func (r *BetSessionRepository) MarkCancelled(ctx context.Context, gameIdentifier, txRef string) error {
	query := `
		UPDATE bet_sessions
		SET phase = 'cancelled', cancel_tx = $2, updated_at = NOW()
		WHERE game_identifier = $1 AND phase = 'opened'
	`
	return r.transition(ctx, "cancelled", query, gameIdentifier, txRef)
}

func (r *BetSessionRepository) transition(ctx context.Context, phase, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark bet session %s: %w", phase, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to mark bet session %s: %w", phase, ErrPhaseConflict)
	}
	return nil
}
