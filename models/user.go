package models

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// KeyPair is the pair of key halves held for a logged-in user.
// SecretKey never leaves the custodial store except to sign.
type KeyPair struct {
	SecretKey solana.PrivateKey
	PublicKey string
}

// String keeps secret key bytes out of formatted output
func (k KeyPair) String() string {
	return "KeyPair{PublicKey:" + k.PublicKey + "}"
}

// GoString keeps secret key bytes out of %#v output
func (k KeyPair) GoString() string {
	return k.String()
}

// NewAccount is a freshly created custodial account for an external user ID.
// Mnemonic must only be delivered over a private channel.
type NewAccount struct {
	ExternalID string
	PublicKey  string
	SecretKey  solana.PrivateKey
	Mnemonic   string
}

// String keeps the mnemonic and secret key out of formatted output
func (a NewAccount) String() string {
	return "NewAccount{ExternalID:" + a.ExternalID + " PublicKey:" + a.PublicKey + "}"
}

// GoString keeps the mnemonic and secret key out of %#v output
func (a NewAccount) GoString() string {
	return a.String()
}

// Identity maps an external user ID to the public key created for it
type Identity struct {
	ExternalID string    `db:"external_id"`
	PublicKey  string    `db:"public_key"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
