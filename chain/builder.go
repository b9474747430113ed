package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

// OpenParams are the inputs of the initialize call
type OpenParams struct {
	GameIdentifier          string
	Initializer             solana.PrivateKey
	InitializerTokenAccount solana.PublicKey
	Amount                  uint64
	Addresses               Addresses
}

// JoinParams are the inputs of the deposit call
type JoinParams struct {
	GameIdentifier     string
	Joiner             solana.PrivateKey
	JoinerTokenAccount solana.PublicKey
	Addresses          Addresses
}

// SettleParams are the inputs of the outcome call
type SettleParams struct {
	GameIdentifier     string
	Winner             solana.PublicKey
	Initializer        solana.PublicKey
	Joiner             solana.PublicKey
	WinnerTokenAccount solana.PublicKey
	Addresses          Addresses
}

// CancelParams are the inputs of the cancel call
type CancelParams struct {
	GameIdentifier          string
	Initializer             solana.PublicKey
	InitializerTokenAccount solana.PublicKey
	Addresses               Addresses
}

// CallRecorder observes escrow calls. Implemented by the metrics provider.
type CallRecorder interface {
	RecordEscrowCall(ctx context.Context, op string, err error)
}

// Builder constructs and submits escrow program instructions
type Builder struct {
	workspace *Workspace
	submitter Submitter
	authority solana.PrivateKey
	recorder  CallRecorder
}

// NewBuilder creates a builder. The authority signs and pays for settle and
// cancel, which need no bettor key.
func NewBuilder(ws *Workspace, submitter Submitter, authority solana.PrivateKey) *Builder {
	return &Builder{
		workspace: ws,
		submitter: submitter,
		authority: authority,
	}
}

// WithRecorder attaches a call recorder
func (b *Builder) WithRecorder(recorder CallRecorder) *Builder {
	b.recorder = recorder
	return b
}

// Open submits initialize signed by the initializer
func (b *Builder) Open(ctx context.Context, p OpenParams) (solana.Signature, error) {
	instruction, err := NewInitializeInstruction(b.workspace, p)
	if err != nil {
		return b.finish(ctx, InstructionInitialize, p.GameIdentifier, solana.Signature{}, err)
	}
	sig, err := b.submitter.Submit(ctx, []solana.PrivateKey{p.Initializer}, instruction)
	return b.finish(ctx, InstructionInitialize, p.GameIdentifier, sig, err)
}

// Join submits deposit signed by the joiner
func (b *Builder) Join(ctx context.Context, p JoinParams) (solana.Signature, error) {
	instruction, err := NewDepositInstruction(b.workspace, p)
	if err != nil {
		return b.finish(ctx, InstructionDeposit, p.GameIdentifier, solana.Signature{}, err)
	}
	sig, err := b.submitter.Submit(ctx, []solana.PrivateKey{p.Joiner}, instruction)
	return b.finish(ctx, InstructionDeposit, p.GameIdentifier, sig, err)
}

// Settle submits outcome signed by the settlement authority
func (b *Builder) Settle(ctx context.Context, p SettleParams) (solana.Signature, error) {
	instruction, err := NewOutcomeInstruction(b.workspace, p)
	if err != nil {
		return b.finish(ctx, InstructionOutcome, p.GameIdentifier, solana.Signature{}, err)
	}
	sig, err := b.submitter.Submit(ctx, []solana.PrivateKey{b.authority}, instruction)
	return b.finish(ctx, InstructionOutcome, p.GameIdentifier, sig, err)
}

// Cancel submits cancel signed by the settlement authority
func (b *Builder) Cancel(ctx context.Context, p CancelParams) (solana.Signature, error) {
	instruction, err := NewCancelInstruction(b.workspace, p)
	if err != nil {
		return b.finish(ctx, InstructionCancel, p.GameIdentifier, solana.Signature{}, err)
	}
	sig, err := b.submitter.Submit(ctx, []solana.PrivateKey{b.authority}, instruction)
	return b.finish(ctx, InstructionCancel, p.GameIdentifier, sig, err)
}

func (b *Builder) finish(ctx context.Context, op, gameIdentifier string, sig solana.Signature, err error) (solana.Signature, error) {
	if b.recorder != nil {
		b.recorder.RecordEscrowCall(ctx, op, err)
	}

	if err != nil {
		log.WithFields(log.Fields{
			"op":              op,
			"game_identifier": gameIdentifier,
			"error":           err,
		}).Warn("Escrow call failed")
		return solana.Signature{}, newTransactionError(op, gameIdentifier, err)
	}

	log.WithFields(log.Fields{
		"op":              op,
		"game_identifier": gameIdentifier,
		"signature":       sig.String(),
	}).Info("Escrow call submitted")

	return sig, nil
}
