package cmd

import (
	"context"
	"fmt"
	"time"

	"escrowbot/bot"
	"escrowbot/chain"
	"escrowbot/config"
	"escrowbot/database"
	"escrowbot/events"
	"escrowbot/infrastructure"
	"escrowbot/infrastructure/observability"
	"escrowbot/repository"
	"escrowbot/service"
	"escrowbot/wallet"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting escrow bot...")

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database connection established successfully")

	identities := repository.NewIdentityRepository(db)
	journal := repository.NewBetSessionRepository(db)

	// Initialize custodial key store and event dedupe
	var store wallet.Store
	var deduper bot.Deduper
	dedupeTTL := time.Duration(cfg.EventDedupeTTLSecs) * time.Second
	if cfg.RedisEnabled() {
		log.Info("Connecting to Redis...")
		redisClient, err := infrastructure.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		sealer, err := wallet.NewSealer(cfg.WalletSealPassphrase, []byte(cfg.WalletSealSalt))
		if err != nil {
			return fmt.Errorf("failed to create wallet sealer: %w", err)
		}
		store = wallet.NewRedisStore(redisClient, sealer)
		deduper = infrastructure.NewRedisDeduper(redisClient, dedupeTTL)
		log.Info("Custodial key store backed by Redis")
	} else {
		store = wallet.NewMemoryStore()
		deduper = infrastructure.NewMemoryDeduper(dedupeTTL)
		log.Warn("REDIS_URL not set, custodial keys are held in process memory only")
	}

	// Initialize chain access
	ws, err := chain.NewWorkspace(cfg.EscrowProgramID, cfg.TokenMint, cfg.Commitment, cfg.ExplorerCluster)
	if err != nil {
		return fmt.Errorf("failed to configure workspace: %w", err)
	}
	authority, err := solana.PrivateKeyFromBase58(cfg.SettlementAuthorityKey)
	if err != nil {
		return fmt.Errorf("failed to parse settlement authority key: %w", err)
	}
	rpcClient := rpc.New(cfg.SolanaRPCURL)
	submitter := chain.NewRPCSubmitter(rpcClient, ws)
	tokens := chain.NewTokenAccounts(ws, rpcClient, submitter, authority)
	builder := chain.NewBuilder(ws, submitter, authority).WithRecorder(metrics)
	log.WithFields(log.Fields{
		"program":   ws.ProgramID,
		"mint":      ws.Mint,
		"authority": authority.PublicKey(),
	}).Info("Chain workspace ready")

	// Initialize event bus
	eventBus := events.NewBus()
	if cfg.NATSEnabled() {
		log.Info("Connecting to NATS...")
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()
		if err := natsClient.EnsureEscrowEventStream(); err != nil {
			return fmt.Errorf("failed to ensure escrow event stream: %w", err)
		}
		infrastructure.NewEventForwarder(natsClient, metrics).Attach(eventBus)
		log.Info("Forwarding escrow events to NATS")
	}

	// Initialize services
	policy, err := service.ParseLogoutPolicy(cfg.LogoutOnSettle)
	if err != nil {
		return err
	}
	accountService := service.NewAccountService(wallet.NewCustodian(store, identities), eventBus, metrics)
	betOrchestrator := service.NewBetOrchestrator(service.OrchestratorDeps{
		Wallet:       store,
		Identities:   identities,
		Journal:      journal,
		Escrow:       builder,
		Tokens:       tokens,
		Deriver:      ws,
		Events:       eventBus,
		Random:       service.NewCryptoRandom(),
		LogoutPolicy: policy,
	})
	log.Info("Services initialized successfully")

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discord, err := bot.NewDiscord(cfg.DiscordToken, cfg.BotMention)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	handler := bot.NewHandler(bot.HandlerDeps{
		Mention:  cfg.BotMention,
		Accounts: accountService,
		Bets:     betOrchestrator,
		Replier:  discord,
		Deduper:  deduper,
		Links:    ws,
		Recorder: metrics,
	})
	if err := discord.Start(handler); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discord.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
