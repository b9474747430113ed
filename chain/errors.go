package chain

import (
	"errors"
	"fmt"
)

// ErrTransactionFailed classifies every rejected or unreachable escrow call
var ErrTransactionFailed = errors.New("transaction failed")

// TransactionError wraps the cause of a failed escrow call.
// The cause comes from the RPC layer and carries no key material.
type TransactionError struct {
	Op             string
	GameIdentifier string
	Cause          error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s transaction failed for game %s: %v", e.Op, e.GameIdentifier, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

// Is matches ErrTransactionFailed
func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

func newTransactionError(op, gameIdentifier string, cause error) error {
	return &TransactionError{Op: op, GameIdentifier: gameIdentifier, Cause: cause}
}
