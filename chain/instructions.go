package chain

import (
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction names of the escrow program
const (
	InstructionInitialize = "initialize"
	InstructionDeposit    = "deposit"
	InstructionOutcome    = "outcome"
	InstructionCancel     = "cancel"
)

type initializeArgs struct {
	Amount     uint64
	Identifier string
}

type identifierArgs struct {
	Identifier string
}

type outcomeArgs struct {
	Identifier string
	Winner     solana.PublicKey
}

// Discriminator is the 8-byte method selector the program dispatches on
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

func encodeInstruction(name string, args interface{}) ([]byte, error) {
	payload, err := bin.MarshalBorsh(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s arguments: %w", name, err)
	}
	disc := Discriminator(name)
	return append(disc[:], payload...), nil
}

// NewInitializeInstruction locks amount tokens from the initializer into escrow
func NewInitializeInstruction(ws *Workspace, p OpenParams) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionInitialize, initializeArgs{
		Amount:     p.Amount,
		Identifier: p.GameIdentifier,
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ws.ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Addresses.TransactionState, true, false),
		solana.NewAccountMeta(p.Addresses.EscrowWallet, true, false),
		solana.NewAccountMeta(p.Initializer.PublicKey(), true, true),
		solana.NewAccountMeta(p.InitializerTokenAccount, true, false),
		solana.NewAccountMeta(ws.Mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}, data), nil
}

// NewDepositInstruction matches the stake recorded by initialize
func NewDepositInstruction(ws *Workspace, p JoinParams) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionDeposit, identifierArgs{Identifier: p.GameIdentifier})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ws.ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Addresses.TransactionState, true, false),
		solana.NewAccountMeta(p.Addresses.EscrowWallet, true, false),
		solana.NewAccountMeta(p.Joiner.PublicKey(), true, true),
		solana.NewAccountMeta(p.JoinerTokenAccount, true, false),
		solana.NewAccountMeta(ws.Mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

// NewOutcomeInstruction pays the pot to the winner and closes both accounts
func NewOutcomeInstruction(ws *Workspace, p SettleParams) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionOutcome, outcomeArgs{
		Identifier: p.GameIdentifier,
		Winner:     p.Winner,
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ws.ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Addresses.TransactionState, true, false),
		solana.NewAccountMeta(p.Addresses.EscrowWallet, true, false),
		solana.NewAccountMeta(p.Initializer, true, false),
		solana.NewAccountMeta(p.Joiner, true, false),
		solana.NewAccountMeta(p.WinnerTokenAccount, true, false),
		solana.NewAccountMeta(ws.Mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

// NewCancelInstruction refunds an unjoined bet to the initializer
func NewCancelInstruction(ws *Workspace, p CancelParams) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionCancel, identifierArgs{Identifier: p.GameIdentifier})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ws.ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Addresses.TransactionState, true, false),
		solana.NewAccountMeta(p.Addresses.EscrowWallet, true, false),
		solana.NewAccountMeta(p.Initializer, true, false),
		solana.NewAccountMeta(p.InitializerTokenAccount, true, false),
		solana.NewAccountMeta(ws.Mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}
