package service

import (
	"context"

	"escrowbot/chain"
	"escrowbot/events"
	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockCustodialWallet is a mock implementation of CustodialWallet
type MockCustodialWallet struct {
	mock.Mock
}

func (m *MockCustodialWallet) GetKeypair(ctx context.Context, id string) (*models.KeyPair, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KeyPair), args.Error(1)
}

func (m *MockCustodialWallet) Logout(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustodialWallet) IsLoggedIn(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockAccountCreator is a mock implementation of AccountCreator
type MockAccountCreator struct {
	mock.Mock
}

func (m *MockAccountCreator) CreateAccount(ctx context.Context, id string) (*models.NewAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewAccount), args.Error(1)
}

// MockAccountRecorder is a mock implementation of AccountRecorder
type MockAccountRecorder struct {
	mock.Mock
}

func (m *MockAccountRecorder) RecordAccountCreated(ctx context.Context) {
	m.Called(ctx)
}

// MockIdentityIndex is a mock implementation of IdentityIndex
type MockIdentityIndex struct {
	mock.Mock
}

func (m *MockIdentityIndex) Get(ctx context.Context, externalID string) (*models.Identity, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

// MockBetJournal is a mock implementation of BetJournal
type MockBetJournal struct {
	mock.Mock
}

func (m *MockBetJournal) Create(ctx context.Context, session *models.BetSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockBetJournal) GetByGameIdentifier(ctx context.Context, gameIdentifier string) (*models.BetSession, error) {
	args := m.Called(ctx, gameIdentifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetSession), args.Error(1)
}

func (m *MockBetJournal) MarkJoined(ctx context.Context, gameIdentifier, joinerID, txRef string) error {
	args := m.Called(ctx, gameIdentifier, joinerID, txRef)
	return args.Error(0)
}

func (m *MockBetJournal) MarkSettled(ctx context.Context, gameIdentifier, winnerID, txRef string) error {
	args := m.Called(ctx, gameIdentifier, winnerID, txRef)
	return args.Error(0)
}

func (m *MockBetJournal) MarkCancelled(ctx context.Context, gameIdentifier, txRef string) error {
	args := m.Called(ctx, gameIdentifier, txRef)
	return args.Error(0)
}

// MockEscrowProgram is a mock implementation of EscrowProgram
type MockEscrowProgram struct {
	mock.Mock
}

func (m *MockEscrowProgram) Open(ctx context.Context, p chain.OpenParams) (solana.Signature, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockEscrowProgram) Join(ctx context.Context, p chain.JoinParams) (solana.Signature, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockEscrowProgram) Settle(ctx context.Context, p chain.SettleParams) (solana.Signature, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockEscrowProgram) Cancel(ctx context.Context, p chain.CancelParams) (solana.Signature, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(solana.Signature), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
