package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"escrowbot/chain"
	"escrowbot/events"
	"escrowbot/models"
	"escrowbot/wallet"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testProgramID = "J9mANdmdHKN8xANP1LTdpRhDxPYcWWgn7N2FiEU8A3Vr"
	testMint      = "So11111111111111111111111111111111111111112"
)

// memoryIdentities is an in-process identity index
type memoryIdentities struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdentities() *memoryIdentities {
	return &memoryIdentities{keys: make(map[string]string)}
}

func (m *memoryIdentities) Get(_ context.Context, externalID string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[externalID]
	if !ok {
		return nil, nil
	}
	return &models.Identity{ExternalID: externalID, PublicKey: key}, nil
}

func (m *memoryIdentities) Set(_ context.Context, externalID, publicKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[externalID] = publicKey
	return nil
}

// fixedRandom always returns the same value
type fixedRandom int

func (f fixedRandom) Intn(n int) int {
	return int(f) % n
}

// alternatingRandom cycles through 0..n-1
type alternatingRandom struct {
	mu   sync.Mutex
	next int
}

func (a *alternatingRandom) Intn(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.next % n
	a.next++
	return v
}

// memoryJournal is an in-process bet journal with the repository's phase updates
type memoryJournal struct {
	mu       sync.Mutex
	sessions map[string]models.BetSession
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{sessions: make(map[string]models.BetSession)}
}

func (j *memoryJournal) Create(_ context.Context, session *models.BetSession) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sessions[session.GameIdentifier] = *session
	return nil
}

func (j *memoryJournal) GetByGameIdentifier(_ context.Context, gameIdentifier string) (*models.BetSession, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	session, ok := j.sessions[gameIdentifier]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (j *memoryJournal) MarkJoined(_ context.Context, gameIdentifier, joinerID, txRef string) error {
	return j.update(gameIdentifier, func(s *models.BetSession) {
		s.Phase = models.BetPhaseJoined
		s.JoinerID = &joinerID
		s.JoinTx = &txRef
	})
}

func (j *memoryJournal) MarkSettled(_ context.Context, gameIdentifier, winnerID, txRef string) error {
	return j.update(gameIdentifier, func(s *models.BetSession) {
		s.Phase = models.BetPhaseSettled
		s.WinnerID = &winnerID
		s.SettleTx = &txRef
	})
}

func (j *memoryJournal) MarkCancelled(_ context.Context, gameIdentifier, txRef string) error {
	return j.update(gameIdentifier, func(s *models.BetSession) {
		s.Phase = models.BetPhaseCancelled
		s.CancelTx = &txRef
	})
}

func (j *memoryJournal) update(gameIdentifier string, apply func(*models.BetSession)) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	session, ok := j.sessions[gameIdentifier]
	if !ok {
		return fmt.Errorf("bet session %s not found", gameIdentifier)
	}
	apply(&session)
	j.sessions[gameIdentifier] = session
	return nil
}

// phase returns the journaled phase of a bet, or "" if it was never journaled
func (j *memoryJournal) phase(gameIdentifier string) models.BetPhase {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sessions[gameIdentifier].Phase
}

type harness struct {
	ws         *chain.Workspace
	ledger     *chain.FakeLedger
	store      *wallet.MemoryStore
	identities *memoryIdentities
	journal    *memoryJournal
	publisher  *MockEventPublisher
	accounts   AccountService
	bets       BetOrchestrator
}

func newHarness(t *testing.T, random RandomSource, policy LogoutPolicy) *harness {
	t.Helper()
	journal := newMemoryJournal()
	h := newHarnessWithJournal(t, random, policy, journal)
	h.journal = journal
	return h
}

// newHarnessWithJournal builds a harness around a caller-supplied journal.
// Callers inspect their own journal; h.journal is only set by newHarness.
func newHarnessWithJournal(t *testing.T, random RandomSource, policy LogoutPolicy, journal BetJournal) *harness {
	t.Helper()
	ws, err := chain.NewWorkspace(testProgramID, testMint, "confirmed", "devnet")
	require.NoError(t, err)

	publisher := new(MockEventPublisher)
	publisher.On("Emit", mock.Anything, mock.Anything).Return().Maybe()

	h := &harness{
		ws:         ws,
		ledger:     chain.NewFakeLedger(ws),
		store:      wallet.NewMemoryStore(),
		identities: newMemoryIdentities(),
		publisher:  publisher,
	}
	h.accounts = NewAccountService(wallet.NewCustodian(h.store, h.identities), publisher, nil)
	h.bets = h.orchestrator(journal, random, policy)
	return h
}

func (h *harness) orchestrator(journal BetJournal, random RandomSource, policy LogoutPolicy) BetOrchestrator {
	return NewBetOrchestrator(OrchestratorDeps{
		Wallet:       h.store,
		Identities:   h.identities,
		Journal:      journal,
		Escrow:       h.ledger,
		Tokens:       h.ledger,
		Deriver:      h.ws,
		Events:       h.publisher,
		Random:       random,
		LogoutPolicy: policy,
	})
}

// funded creates an account for id and credits its token account
func (h *harness) funded(t *testing.T, id string, amount uint64) solana.PublicKey {
	t.Helper()
	account, err := h.accounts.CreateAccount(context.Background(), id)
	require.NoError(t, err)
	owner := solana.MustPublicKeyFromBase58(account.PublicKey)
	h.ledger.Fund(owner, amount)
	return owner
}

func (h *harness) loggedIn(t *testing.T, id string) bool {
	t.Helper()
	ok, err := h.store.IsLoggedIn(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func (h *harness) emitted(eventType events.EventType) int {
	count := 0
	for _, call := range h.publisher.Calls {
		if call.Method != "Emit" {
			continue
		}
		if event, ok := call.Arguments.Get(1).(events.Event); ok && event.Type() == eventType {
			count++
		}
	}
	return count
}
