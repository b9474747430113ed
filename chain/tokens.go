package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// createIdempotent is the associated token program instruction index that
// succeeds when the account already exists
const createIdempotent = 1

// AccountReader reads raw account info
type AccountReader interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// TokenAccounts resolves associated token accounts for the workspace mint,
// creating them when missing.
type TokenAccounts struct {
	workspace *Workspace
	reader    AccountReader
	submitter Submitter
	authority solana.PrivateKey
}

// NewTokenAccounts creates a resolver. The authority pays for accounts
// created without an explicit payer.
func NewTokenAccounts(ws *Workspace, reader AccountReader, submitter Submitter, authority solana.PrivateKey) *TokenAccounts {
	return &TokenAccounts{
		workspace: ws,
		reader:    reader,
		submitter: submitter,
		authority: authority,
	}
}

// Address returns the associated token account of owner for the workspace mint
func (t *TokenAccounts) Address(owner solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, t.workspace.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token account: %w", err)
	}
	return ata, nil
}

// ResolveOrCreate returns the owner's token account, creating it first if it
// does not exist. A nil payer means the authority pays the rent.
func (t *TokenAccounts) ResolveOrCreate(ctx context.Context, owner solana.PublicKey, payer solana.PrivateKey) (solana.PublicKey, error) {
	ata, err := t.Address(owner)
	if err != nil {
		return solana.PublicKey{}, err
	}

	_, err = t.reader.GetAccountInfoWithOpts(ctx, ata, &rpc.GetAccountInfoOpts{
		Commitment: t.workspace.Commitment,
	})
	if err == nil {
		return ata, nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return solana.PublicKey{}, fmt.Errorf("failed to fetch token account: %w", err)
	}

	if payer == nil {
		payer = t.authority
	}

	instruction := solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(payer.PublicKey(), true, true),
			solana.NewAccountMeta(ata, true, false),
			solana.NewAccountMeta(owner, false, false),
			solana.NewAccountMeta(t.workspace.Mint, false, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
			solana.NewAccountMeta(solana.TokenProgramID, false, false),
		},
		[]byte{createIdempotent},
	)

	sig, err := t.submitter.Submit(ctx, []solana.PrivateKey{payer}, instruction)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to create token account: %w", err)
	}

	log.WithFields(log.Fields{
		"owner":         owner.String(),
		"token_account": ata.String(),
		"signature":     sig.String(),
	}).Info("Created associated token account")

	return ata, nil
}
