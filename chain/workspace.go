// Package chain talks to the on-chain escrow program: it derives the
// program-derived addresses of a bet, resolves token accounts and submits the
// initialize, deposit, outcome and cancel instructions.
package chain

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Workspace is the explicit chain context shared by the chain components.
// It is built once from configuration and passed to constructors.
type Workspace struct {
	ProgramID       solana.PublicKey
	Mint            solana.PublicKey
	Commitment      rpc.CommitmentType
	ExplorerCluster string
}

// NewWorkspace parses the program and mint addresses
func NewWorkspace(programID, mint, commitment, explorerCluster string) (*Workspace, error) {
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid escrow program id %q: %w", programID, err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint %q: %w", mint, err)
	}
	level, err := ParseCommitment(commitment)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		ProgramID:       program,
		Mint:            mintKey,
		Commitment:      level,
		ExplorerCluster: explorerCluster,
	}, nil
}

// ParseCommitment maps a config string to an RPC commitment level
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unknown commitment level %q", s)
	}
}

// ExplorerURL links a transaction on the public explorer
func (w *Workspace) ExplorerURL(sig solana.Signature) string {
	if w.ExplorerCluster == "" || w.ExplorerCluster == "mainnet-beta" {
		return fmt.Sprintf("https://explorer.solana.com/tx/%s", sig)
	}
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", sig, w.ExplorerCluster)
}
