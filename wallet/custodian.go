package wallet

import (
	"context"
	"fmt"

	"escrowbot/models"

	log "github.com/sirupsen/logrus"
)

// IdentityWriter records the public key created for a user
type IdentityWriter interface {
	Set(ctx context.Context, externalID, publicKey string) error
}

// Custodian creates custodial accounts
type Custodian struct {
	store      Store
	identities IdentityWriter
}

// NewCustodian creates a custodian over a key store and the identity index
func NewCustodian(store Store, identities IdentityWriter) *Custodian {
	return &Custodian{store: store, identities: identities}
}

// CreateAccount generates a new mnemonic and key pair for id, logs it in and
// records its public key in the identity index. An existing pair for id is
// replaced.
func (c *Custodian) CreateAccount(ctx context.Context, id string) (*models.NewAccount, error) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		return nil, err
	}

	pair, err := KeyPairFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}

	if err := c.store.Login(ctx, id, pair.SecretKey, pair.PublicKey); err != nil {
		Wipe(pair.SecretKey)
		return nil, fmt.Errorf("failed to login new account: %w", err)
	}

	if err := c.identities.Set(ctx, id, pair.PublicKey); err != nil {
		if logoutErr := c.store.Logout(ctx, id); logoutErr != nil {
			log.WithFields(log.Fields{
				"external_id": id,
				"error":       logoutErr,
			}).Error("Failed to roll back login after identity write failure")
		}
		Wipe(pair.SecretKey)
		return nil, fmt.Errorf("failed to record identity: %w", err)
	}

	log.WithFields(log.Fields{
		"external_id": id,
		"public_key":  pair.PublicKey,
	}).Info("Created custodial account")

	return &models.NewAccount{
		ExternalID: id,
		PublicKey:  pair.PublicKey,
		SecretKey:  pair.SecretKey,
		Mnemonic:   mnemonic,
	}, nil
}
