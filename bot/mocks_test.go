package bot

import (
	"context"
	"sync"

	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockAccountService is a mock implementation of service.AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, externalID string) (*models.NewAccount, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewAccount), args.Error(1)
}

// MockBetOrchestrator is a mock implementation of service.BetOrchestrator
type MockBetOrchestrator struct {
	mock.Mock
}

func (m *MockBetOrchestrator) Open(ctx context.Context, initializerID string, amount uint64) (*models.OpenResult, error) {
	args := m.Called(ctx, initializerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OpenResult), args.Error(1)
}

func (m *MockBetOrchestrator) Join(ctx context.Context, joinerID, initializerID, gameIdentifier string) (solana.Signature, error) {
	args := m.Called(ctx, joinerID, initializerID, gameIdentifier)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockBetOrchestrator) Settle(ctx context.Context, gameIdentifier, joinerID, initializerID string) (*models.SettleResult, error) {
	args := m.Called(ctx, gameIdentifier, joinerID, initializerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettleResult), args.Error(1)
}

func (m *MockBetOrchestrator) Accept(ctx context.Context, joinerID, initializerID, gameIdentifier string) (*models.AcceptResult, error) {
	args := m.Called(ctx, joinerID, initializerID, gameIdentifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcceptResult), args.Error(1)
}

func (m *MockBetOrchestrator) Cancel(ctx context.Context, requesterID, gameIdentifier string) (solana.Signature, error) {
	args := m.Called(ctx, requesterID, gameIdentifier)
	return args.Get(0).(solana.Signature), args.Error(1)
}

type sentMessage struct {
	to   string
	text string
}

// recordingReplier keeps replies and direct messages in memory
type recordingReplier struct {
	mu         sync.Mutex
	replies    []sentMessage
	private    []sentMessage
	privateErr error
}

func (r *recordingReplier) Reply(_ context.Context, post models.PostRef, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, sentMessage{to: post.ID, text: text})
	return nil
}

func (r *recordingReplier) SendPrivate(_ context.Context, userID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.privateErr != nil {
		return r.privateErr
	}
	r.private = append(r.private, sentMessage{to: userID, text: text})
	return nil
}

func (r *recordingReplier) MentionUser(userID string) string {
	return "@" + userID
}

func (r *recordingReplier) lastReply() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1].text
}

// staticLinks renders signatures without a cluster
type staticLinks struct{}

func (staticLinks) ExplorerURL(sig solana.Signature) string {
	return "https://explorer.solana.com/tx/" + sig.String()
}

// countingRecorder tallies commands by verb and outcome
type countingRecorder struct {
	mu         sync.Mutex
	commands   map[string]int
	failures   map[string]int
	duplicates int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{commands: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) RecordCommand(_ context.Context, verb string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[verb]++
	if err != nil {
		r.failures[verb]++
	}
}

func (r *countingRecorder) RecordDuplicateEvent(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duplicates++
}
