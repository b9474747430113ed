package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// RPCClient is the subset of the Solana JSON-RPC client used by this package
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Submitter signs and sends one transaction. The first signer pays the fee.
type Submitter interface {
	Submit(ctx context.Context, signers []solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error)
}

// RPCSubmitter submits transactions through a JSON-RPC node
type RPCSubmitter struct {
	client     RPCClient
	commitment rpc.CommitmentType
}

// NewRPCSubmitter creates a submitter that preflights at the workspace commitment
func NewRPCSubmitter(client RPCClient, ws *Workspace) *RPCSubmitter {
	return &RPCSubmitter{client: client, commitment: ws.Commitment}
}

// Submit builds, signs and sends a transaction
func (s *RPCSubmitter) Submit(ctx context.Context, signers []solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	if len(signers) == 0 {
		return solana.Signature{}, errors.New("at least one signer is required")
	}

	recent, err := s.client.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"signature":    sig.String(),
		"instructions": len(instructions),
	}).Debug("Transaction submitted")

	return sig, nil
}
