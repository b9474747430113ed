package chain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Program errors raised by FakeLedger, mirroring the escrow program
var (
	ErrProgramInvalidIdentifier  = errors.New("program error: invalid identifier")
	ErrProgramInvalidStage       = errors.New("program error: invalid stage")
	ErrProgramInsufficientFunds  = errors.New("program error: insufficient balance")
	ErrProgramAccountNotFound    = errors.New("program error: account not initialized")
	ErrProgramAccountMismatch    = errors.New("program error: account constraint violated")
	ErrProgramAccountInitialized = errors.New("program error: account already in use")
)

type ledgerStage int

const (
	stageDeposited ledgerStage = iota + 1
	stageJoined
)

type ledgerState struct {
	initializer solana.PublicKey
	amount      uint64
	stage       ledgerStage
}

// FakeLedger simulates the escrow program and the token program in memory.
// It enforces the same ordering rules as the deployed program so callers can
// be tested without a validator.
type FakeLedger struct {
	workspace *Workspace

	mu       sync.Mutex
	states   map[string]*ledgerState
	balances map[solana.PublicKey]uint64
	accounts map[solana.PublicKey]bool
	failNext map[string]error
	calls    []string
}

// NewFakeLedger creates an empty ledger for the workspace program
func NewFakeLedger(ws *Workspace) *FakeLedger {
	return &FakeLedger{
		workspace: ws,
		states:    make(map[string]*ledgerState),
		balances:  make(map[solana.PublicKey]uint64),
		accounts:  make(map[solana.PublicKey]bool),
		failNext:  make(map[string]error),
	}
}

// Fund credits the owner's token account, creating it if needed
func (l *FakeLedger) Fund(owner solana.PublicKey, amount uint64) {
	ata := l.tokenAccount(owner)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[ata] = true
	l.balances[ata] += amount
}

// Balance returns the owner's token balance
func (l *FakeLedger) Balance(owner solana.PublicKey) uint64 {
	ata := l.tokenAccount(owner)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[ata]
}

// StateExists reports whether the bet's transaction state account is open
func (l *FakeLedger) StateExists(gameIdentifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.states[gameIdentifier]
	return ok
}

// FailNext makes the next call to op fail with err
func (l *FakeLedger) FailNext(op string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext[op] = err
}

// Calls returns the instruction names executed so far, in order
func (l *FakeLedger) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// ResolveOrCreate returns the owner's associated token account
func (l *FakeLedger) ResolveOrCreate(_ context.Context, owner solana.PublicKey, _ solana.PrivateKey) (solana.PublicKey, error) {
	ata := l.tokenAccount(owner)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[ata] = true
	return ata, nil
}

// Open executes initialize
func (l *FakeLedger) Open(_ context.Context, p OpenParams) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(InstructionInitialize, p.GameIdentifier, p.Addresses); err != nil {
		return l.fail(InstructionInitialize, p.GameIdentifier, err)
	}
	if _, exists := l.states[p.GameIdentifier]; exists {
		return l.fail(InstructionInitialize, p.GameIdentifier, ErrProgramAccountInitialized)
	}
	initializer := p.Initializer.PublicKey()
	if p.InitializerTokenAccount != l.tokenAccount(initializer) {
		return l.fail(InstructionInitialize, p.GameIdentifier, ErrProgramAccountMismatch)
	}
	if l.balances[p.InitializerTokenAccount] < p.Amount {
		return l.fail(InstructionInitialize, p.GameIdentifier, ErrProgramInsufficientFunds)
	}

	l.balances[p.InitializerTokenAccount] -= p.Amount
	l.balances[p.Addresses.EscrowWallet] += p.Amount
	l.states[p.GameIdentifier] = &ledgerState{
		initializer: initializer,
		amount:      p.Amount,
		stage:       stageDeposited,
	}
	return l.succeed(InstructionInitialize)
}

// Join executes deposit
func (l *FakeLedger) Join(_ context.Context, p JoinParams) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(InstructionDeposit, p.GameIdentifier, p.Addresses); err != nil {
		return l.fail(InstructionDeposit, p.GameIdentifier, err)
	}
	state, exists := l.states[p.GameIdentifier]
	if !exists {
		return l.fail(InstructionDeposit, p.GameIdentifier, ErrProgramAccountNotFound)
	}
	if state.stage != stageDeposited {
		return l.fail(InstructionDeposit, p.GameIdentifier, ErrProgramInvalidStage)
	}
	joiner := p.Joiner.PublicKey()
	if p.JoinerTokenAccount != l.tokenAccount(joiner) {
		return l.fail(InstructionDeposit, p.GameIdentifier, ErrProgramAccountMismatch)
	}
	if l.balances[p.JoinerTokenAccount] < state.amount {
		return l.fail(InstructionDeposit, p.GameIdentifier, ErrProgramInsufficientFunds)
	}

	l.balances[p.JoinerTokenAccount] -= state.amount
	l.balances[p.Addresses.EscrowWallet] += state.amount
	state.stage = stageJoined
	return l.succeed(InstructionDeposit)
}

// Settle executes outcome, paying the pot and closing both accounts
func (l *FakeLedger) Settle(_ context.Context, p SettleParams) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(InstructionOutcome, p.GameIdentifier, p.Addresses); err != nil {
		return l.fail(InstructionOutcome, p.GameIdentifier, err)
	}
	state, exists := l.states[p.GameIdentifier]
	if !exists {
		return l.fail(InstructionOutcome, p.GameIdentifier, ErrProgramAccountNotFound)
	}
	if state.stage != stageJoined {
		return l.fail(InstructionOutcome, p.GameIdentifier, ErrProgramInvalidStage)
	}
	// outcome never checks who the parties are, only that the winner owns
	// the receiving token account
	if p.WinnerTokenAccount != l.tokenAccount(p.Winner) {
		return l.fail(InstructionOutcome, p.GameIdentifier, ErrProgramAccountMismatch)
	}

	pot := 2 * state.amount
	l.balances[p.Addresses.EscrowWallet] -= pot
	l.balances[p.WinnerTokenAccount] += pot
	delete(l.balances, p.Addresses.EscrowWallet)
	delete(l.states, p.GameIdentifier)
	return l.succeed(InstructionOutcome)
}

// Cancel executes cancel, refunding an unjoined bet
func (l *FakeLedger) Cancel(_ context.Context, p CancelParams) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(InstructionCancel, p.GameIdentifier, p.Addresses); err != nil {
		return l.fail(InstructionCancel, p.GameIdentifier, err)
	}
	state, exists := l.states[p.GameIdentifier]
	if !exists {
		return l.fail(InstructionCancel, p.GameIdentifier, ErrProgramAccountNotFound)
	}
	if state.stage != stageDeposited {
		return l.fail(InstructionCancel, p.GameIdentifier, ErrProgramInvalidStage)
	}
	if p.Initializer != state.initializer || p.InitializerTokenAccount != l.tokenAccount(state.initializer) {
		return l.fail(InstructionCancel, p.GameIdentifier, ErrProgramAccountMismatch)
	}

	l.balances[p.Addresses.EscrowWallet] -= state.amount
	l.balances[p.InitializerTokenAccount] += state.amount
	delete(l.balances, p.Addresses.EscrowWallet)
	delete(l.states, p.GameIdentifier)
	return l.succeed(InstructionCancel)
}

// begin runs the checks shared by every instruction. Callers hold mu.
func (l *FakeLedger) begin(op, gameIdentifier string, addrs Addresses) error {
	l.calls = append(l.calls, op)

	if err, ok := l.failNext[op]; ok {
		delete(l.failNext, op)
		return err
	}
	if !ValidGameIdentifier(gameIdentifier) {
		return ErrProgramInvalidIdentifier
	}
	expected, err := l.workspace.Derive(gameIdentifier)
	if err != nil {
		return err
	}
	if expected != addrs {
		return ErrProgramAccountMismatch
	}
	return nil
}

func (l *FakeLedger) fail(op, gameIdentifier string, err error) (solana.Signature, error) {
	return solana.Signature{}, newTransactionError(op, gameIdentifier, err)
}

func (l *FakeLedger) succeed(op string) (solana.Signature, error) {
	var sig solana.Signature
	if _, err := rand.Read(sig[:]); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to generate signature for %s: %w", op, err)
	}
	return sig, nil
}

func (l *FakeLedger) tokenAccount(owner solana.PublicKey) solana.PublicKey {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, l.workspace.Mint)
	if err != nil {
		panic(fmt.Sprintf("derive token account: %v", err))
	}
	return ata
}
