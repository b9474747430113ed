package service

import (
	"context"
	"fmt"
	"math"

	"escrowbot/chain"
	"escrowbot/events"
	"escrowbot/models"
	"escrowbot/wallet"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const opResolveTokenAccount = "resolve_token_account"

// MaxStake is the largest stake the bet journal can record
const MaxStake = math.MaxInt64

// OrchestratorDeps are the collaborators of a BetOrchestrator
type OrchestratorDeps struct {
	Wallet       CustodialWallet
	Identities   IdentityIndex
	Journal      BetJournal
	Escrow       EscrowProgram
	Tokens       TokenAccountResolver
	Deriver      AddressDeriver
	Events       EventPublisher
	Random       RandomSource
	LogoutPolicy LogoutPolicy
}

// betOrchestrator implements the BetOrchestrator interface.
// It holds no per-bet state and takes no locks: the escrow program's account
// checks order the phases of a bet, so every rejection from the chain is an
// expected outcome under concurrent commands.
type betOrchestrator struct {
	deps              OrchestratorDeps
	newGameIdentifier func() string
}

// NewBetOrchestrator creates a new bet orchestrator
func NewBetOrchestrator(deps OrchestratorDeps) BetOrchestrator {
	if deps.Random == nil {
		deps.Random = NewCryptoRandom()
	}
	if deps.LogoutPolicy == "" {
		deps.LogoutPolicy = LogoutInitializer
	}
	return &betOrchestrator{
		deps:              deps,
		newGameIdentifier: chain.NewGameIdentifier,
	}
}

// Open locks the initializer's stake under a fresh game identifier
func (o *betOrchestrator) Open(ctx context.Context, initializerID string, amount uint64) (*models.OpenResult, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: stake must be positive", ErrInvalidAmount)
	}
	if amount > MaxStake {
		return nil, fmt.Errorf("%w: stake exceeds %d", ErrInvalidAmount, uint64(MaxStake))
	}

	pair, err := o.deps.Wallet.GetKeypair(ctx, initializerID)
	if err != nil {
		return nil, err
	}
	defer wallet.Wipe(pair.SecretKey)

	gameIdentifier := o.newGameIdentifier()
	initializer := pair.SecretKey.PublicKey()

	tokenAccount, err := o.deps.Tokens.ResolveOrCreate(ctx, initializer, pair.SecretKey)
	if err != nil {
		return nil, tokenAccountError(gameIdentifier, err)
	}

	addrs, err := o.deps.Deriver.Derive(gameIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}

	sig, err := o.deps.Escrow.Open(ctx, chain.OpenParams{
		GameIdentifier:          gameIdentifier,
		Initializer:             pair.SecretKey,
		InitializerTokenAccount: tokenAccount,
		Amount:                  amount,
		Addresses:               addrs,
	})
	if err != nil {
		return nil, err
	}

	txRef := sig.String()
	o.journal("create", gameIdentifier, o.deps.Journal.Create(ctx, &models.BetSession{
		GameIdentifier:          gameIdentifier,
		InitializerID:           initializerID,
		Amount:                  amount,
		TransactionStateAddress: addrs.TransactionState.String(),
		EscrowWalletAddress:     addrs.EscrowWallet.String(),
		Phase:                   models.BetPhaseOpened,
		OpenTx:                  &txRef,
	}))

	o.deps.Events.Emit(ctx, events.BetOpenedEvent{
		GameIdentifier: gameIdentifier,
		InitializerID:  initializerID,
		Amount:         amount,
		TxRef:          txRef,
	})

	log.WithFields(log.Fields{
		"game_identifier": gameIdentifier,
		"initializer_id":  initializerID,
		"amount":          amount,
	}).Info("Bet opened")

	return &models.OpenResult{GameIdentifier: gameIdentifier, TxRef: sig}, nil
}

// Join deposits the joiner's matching stake
func (o *betOrchestrator) Join(ctx context.Context, joinerID, initializerID, gameIdentifier string) (solana.Signature, error) {
	if !chain.ValidGameIdentifier(gameIdentifier) {
		return solana.Signature{}, fmt.Errorf("%w: malformed game identifier", ErrInvalidCommand)
	}

	pair, err := o.deps.Wallet.GetKeypair(ctx, joinerID)
	if err != nil {
		return solana.Signature{}, err
	}
	defer wallet.Wipe(pair.SecretKey)

	tokenAccount, err := o.deps.Tokens.ResolveOrCreate(ctx, pair.SecretKey.PublicKey(), pair.SecretKey)
	if err != nil {
		return solana.Signature{}, tokenAccountError(gameIdentifier, err)
	}

	addrs, err := o.deps.Deriver.Derive(gameIdentifier)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive addresses: %w", err)
	}

	sig, err := o.deps.Escrow.Join(ctx, chain.JoinParams{
		GameIdentifier:     gameIdentifier,
		Joiner:             pair.SecretKey,
		JoinerTokenAccount: tokenAccount,
		Addresses:          addrs,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	o.journal("join", gameIdentifier, o.deps.Journal.MarkJoined(ctx, gameIdentifier, joinerID, sig.String()))

	o.deps.Events.Emit(ctx, events.BetJoinedEvent{
		GameIdentifier: gameIdentifier,
		InitializerID:  initializerID,
		JoinerID:       joinerID,
		TxRef:          sig.String(),
	})

	log.WithFields(log.Fields{
		"game_identifier": gameIdentifier,
		"initializer_id":  initializerID,
		"joiner_id":       joinerID,
	}).Info("Bet joined")

	return sig, nil
}

// Settle resolves both public keys, flips the coin and pays the winner
func (o *betOrchestrator) Settle(ctx context.Context, gameIdentifier, joinerID, initializerID string) (*models.SettleResult, error) {
	if !chain.ValidGameIdentifier(gameIdentifier) {
		return nil, fmt.Errorf("%w: malformed game identifier", ErrInvalidCommand)
	}

	p, err := o.lookupParties(ctx, initializerID, joinerID)
	if err != nil {
		return nil, err
	}
	return o.settle(ctx, gameIdentifier, p)
}

func (o *betOrchestrator) settle(ctx context.Context, gameIdentifier string, p *parties) (*models.SettleResult, error) {
	winnerID, loserID := PickWinner(o.deps.Random, p.initializerID, p.joinerID)
	winner := p.initializer
	if winnerID == p.joinerID {
		winner = p.joiner
	}

	winnerTokenAccount, err := o.deps.Tokens.ResolveOrCreate(ctx, winner, nil)
	if err != nil {
		return nil, tokenAccountError(gameIdentifier, err)
	}

	addrs, err := o.deps.Deriver.Derive(gameIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}

	sig, err := o.deps.Escrow.Settle(ctx, chain.SettleParams{
		GameIdentifier:     gameIdentifier,
		Winner:             winner,
		Initializer:        p.initializer,
		Joiner:             p.joiner,
		WinnerTokenAccount: winnerTokenAccount,
		Addresses:          addrs,
	})
	if err != nil {
		return nil, err
	}

	o.logoutAfterSettle(ctx, gameIdentifier, p.initializerID, p.joinerID)
	o.journal("settle", gameIdentifier, o.deps.Journal.MarkSettled(ctx, gameIdentifier, winnerID, sig.String()))

	o.deps.Events.Emit(ctx, events.BetSettledEvent{
		GameIdentifier: gameIdentifier,
		WinnerID:       winnerID,
		LoserID:        loserID,
		TxRef:          sig.String(),
	})

	log.WithFields(log.Fields{
		"game_identifier": gameIdentifier,
		"winner_id":       winnerID,
		"loser_id":        loserID,
	}).Info("Bet settled")

	return &models.SettleResult{
		GameIdentifier:  gameIdentifier,
		TxRef:           sig,
		WinnerID:        winnerID,
		LoserID:         loserID,
		WinnerPublicKey: winner.String(),
	}, nil
}

// Accept joins then settles in one command. initializerID comes from the
// post the joiner replied to and must match the journaled initializer.
// The program keeps no record of who opened a bet, so an unjournaled bet
// cannot be accepted.
func (o *betOrchestrator) Accept(ctx context.Context, joinerID, initializerID, gameIdentifier string) (*models.AcceptResult, error) {
	if !chain.ValidGameIdentifier(gameIdentifier) {
		return nil, fmt.Errorf("%w: malformed game identifier", ErrInvalidCommand)
	}

	session, err := o.deps.Journal.GetByGameIdentifier(ctx, gameIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up bet: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: unknown bet %s", ErrInvalidCommand, gameIdentifier)
	}
	if session.InitializerID != initializerID {
		return nil, ErrNotBetInitializer
	}
	if !session.CanTransitionTo(models.BetPhaseJoined) {
		return nil, fmt.Errorf("%w: bet is already %s", ErrInvalidCommand, session.Phase)
	}

	// Settlement needs both keys, so they are resolved before any deposit
	p, err := o.lookupParties(ctx, initializerID, joinerID)
	if err != nil {
		return nil, err
	}

	joinRef, err := o.Join(ctx, joinerID, initializerID, gameIdentifier)
	if err != nil {
		return nil, err
	}

	settlement, err := o.settle(ctx, gameIdentifier, p)
	if err != nil {
		return &models.AcceptResult{JoinTxRef: joinRef}, err
	}

	return &models.AcceptResult{JoinTxRef: joinRef, Settlement: settlement}, nil
}

// Cancel refunds an unjoined bet to its initializer
func (o *betOrchestrator) Cancel(ctx context.Context, requesterID, gameIdentifier string) (solana.Signature, error) {
	if !chain.ValidGameIdentifier(gameIdentifier) {
		return solana.Signature{}, fmt.Errorf("%w: malformed game identifier", ErrInvalidCommand)
	}

	session, err := o.deps.Journal.GetByGameIdentifier(ctx, gameIdentifier)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to look up bet: %w", err)
	}
	if session == nil || session.InitializerID != requesterID {
		return solana.Signature{}, fmt.Errorf("%w: only the initializer of a bet can cancel it", ErrInvalidCommand)
	}
	// The journal only trails the chain, so a later phase here is final
	if !session.CanTransitionTo(models.BetPhaseCancelled) {
		return solana.Signature{}, fmt.Errorf("%w: bet is already %s", ErrInvalidCommand, session.Phase)
	}

	initializer, err := o.lookupPublicKey(ctx, requesterID)
	if err != nil {
		return solana.Signature{}, err
	}

	tokenAccount, err := o.deps.Tokens.ResolveOrCreate(ctx, initializer, nil)
	if err != nil {
		return solana.Signature{}, tokenAccountError(gameIdentifier, err)
	}

	addrs, err := o.deps.Deriver.Derive(gameIdentifier)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive addresses: %w", err)
	}

	sig, err := o.deps.Escrow.Cancel(ctx, chain.CancelParams{
		GameIdentifier:          gameIdentifier,
		Initializer:             initializer,
		InitializerTokenAccount: tokenAccount,
		Addresses:               addrs,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	o.journal("cancel", gameIdentifier, o.deps.Journal.MarkCancelled(ctx, gameIdentifier, sig.String()))

	o.deps.Events.Emit(ctx, events.BetCancelledEvent{
		GameIdentifier: gameIdentifier,
		InitializerID:  requesterID,
		TxRef:          sig.String(),
	})

	log.WithFields(log.Fields{
		"game_identifier": gameIdentifier,
		"initializer_id":  requesterID,
	}).Info("Bet cancelled")

	return sig, nil
}

// parties are the two sides of a bet with their resolved public keys
type parties struct {
	initializerID string
	joinerID      string
	initializer   solana.PublicKey
	joiner        solana.PublicKey
}

func (o *betOrchestrator) lookupParties(ctx context.Context, initializerID, joinerID string) (*parties, error) {
	p := &parties{initializerID: initializerID, joinerID: joinerID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p.initializer, err = o.lookupPublicKey(gctx, initializerID)
		return err
	})
	g.Go(func() error {
		var err error
		p.joiner, err = o.lookupPublicKey(gctx, joinerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

func (o *betOrchestrator) lookupPublicKey(ctx context.Context, externalID string) (solana.PublicKey, error) {
	identity, err := o.deps.Identities.Get(ctx, externalID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to look up identity for %s: %w", externalID, err)
	}
	if identity == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrUnknownIdentity, externalID)
	}

	publicKey, err := solana.PublicKeyFromBase58(identity.PublicKey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: stored key for %s is malformed", ErrUnknownIdentity, externalID)
	}
	return publicKey, nil
}

// logoutAfterSettle applies the logout policy. The payout already happened,
// so failures are logged rather than returned.
func (o *betOrchestrator) logoutAfterSettle(ctx context.Context, gameIdentifier, initializerID, joinerID string) {
	for _, id := range o.deps.LogoutPolicy.Targets(initializerID, joinerID) {
		if err := o.deps.Wallet.Logout(ctx, id); err != nil {
			log.WithFields(log.Fields{
				"game_identifier": gameIdentifier,
				"external_id":     id,
				"error":           err,
			}).Error("Failed to log out after settlement")
		}
	}
}

// journal logs a failed journal write. The chain is authoritative.
func (o *betOrchestrator) journal(step, gameIdentifier string, err error) {
	if err == nil {
		return
	}
	log.WithFields(log.Fields{
		"step":            step,
		"game_identifier": gameIdentifier,
		"error":           err,
	}).Warn("Failed to update bet journal")
}

func tokenAccountError(gameIdentifier string, err error) error {
	return &chain.TransactionError{
		Op:             opResolveTokenAccount,
		GameIdentifier: gameIdentifier,
		Cause:          err,
	}
}
