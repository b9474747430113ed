package repository

import (
	"context"
	"errors"
	"fmt"

	"escrowbot/database"
	"escrowbot/models"

	"github.com/jackc/pgx/v5"
)

// IdentityRepository maps external user IDs to their custodial public keys
type IdentityRepository struct {
	q queryable
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *database.DB) *IdentityRepository {
	return &IdentityRepository{q: db.Pool}
}

// Get retrieves the identity for an external ID, or nil if none was recorded
func (r *IdentityRepository) Get(ctx context.Context, externalID string) (*models.Identity, error) {
	query := `
		SELECT external_id, public_key, created_at, updated_at
		FROM user_public_keys
		WHERE external_id = $1
	`

	var identity models.Identity
	err := r.q.QueryRow(ctx, query, externalID).Scan(
		&identity.ExternalID,
		&identity.PublicKey,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity for %s: %w", externalID, err)
	}

	return &identity, nil
}

// Set records the public key for an external ID, replacing any earlier key
func (r *IdentityRepository) Set(ctx context.Context, externalID, publicKey string) error {
	query := `
		INSERT INTO user_public_keys (external_id, public_key)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE
		SET public_key = EXCLUDED.public_key,
		    updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, externalID, publicKey); err != nil {
		return fmt.Errorf("failed to set identity for %s: %w", externalID, err)
	}
	return nil
}
