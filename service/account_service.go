package service

import (
	"context"
	"fmt"

	"escrowbot/events"
	"escrowbot/models"
)

// accountService implements the AccountService interface
type accountService struct {
	creator        AccountCreator
	eventPublisher EventPublisher
	recorder       AccountRecorder
}

// NewAccountService creates a new account service. recorder may be nil.
func NewAccountService(creator AccountCreator, eventPublisher EventPublisher, recorder AccountRecorder) AccountService {
	return &accountService{
		creator:        creator,
		eventPublisher: eventPublisher,
		recorder:       recorder,
	}
}

// CreateAccount creates a custodial account and announces it
func (s *accountService) CreateAccount(ctx context.Context, externalID string) (*models.NewAccount, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing author", ErrInvalidCommand)
	}

	account, err := s.creator.CreateAccount(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordAccountCreated(ctx)
	}
	s.eventPublisher.Emit(ctx, events.AccountCreatedEvent{
		ExternalID: account.ExternalID,
		PublicKey:  account.PublicKey,
	})

	return account, nil
}
