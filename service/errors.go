package service

import (
	"errors"
	"fmt"

	"escrowbot/chain"
	"escrowbot/wallet"
)

// Error taxonomy surfaced to command handlers. Classify with errors.Is.
var (
	// ErrInvalidCommand is a malformed instruction; nothing was mutated
	ErrInvalidCommand = errors.New("invalid command")
	// ErrInvalidAmount is a non-positive or non-numeric stake
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNotLoggedIn means the custodial store holds no key for the user
	ErrNotLoggedIn = wallet.ErrNotLoggedIn
	// ErrUnknownIdentity means settlement could not resolve a party's public key
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrTransactionFailed wraps any rejected or unreachable on-chain call
	ErrTransactionFailed = chain.ErrTransactionFailed
	// ErrNotBetInitializer means an ACCEPT replied to someone other than the bettor
	ErrNotBetInitializer = fmt.Errorf("%w: reply target did not open the bet", ErrInvalidCommand)
)
