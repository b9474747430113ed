package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"escrowbot/database"
)

// Default on-chain escrow program deployed on devnet
const DefaultEscrowProgramID = "J9mANdmdHKN8xANP1LTdpRhDxPYcWWgn7N2FiEU8A3Vr"

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	BotMention   string // Leading token every command must start with

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Custodial wallet configuration
	RedisURL             string // Empty keeps custodial keys in process memory
	WalletSealPassphrase string // Key-encryption passphrase for secrets stored in Redis
	WalletSealSalt       string
	EventDedupeTTLSecs   int

	// Chain configuration
	SolanaRPCURL           string
	EscrowProgramID        string
	TokenMint              string
	SettlementAuthorityKey string // Base58 secret key of the fee payer that settles bets
	Commitment             string
	ExplorerCluster        string

	// Session policy
	LogoutOnSettle string // "initializer", "both" or "none"

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables forwarding

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NATSEnabled reports whether lifecycle events should be forwarded to NATS
func (c *Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// RedisEnabled reports whether the custodial store is backed by Redis
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		BotMention:   getEnvWithDefault("BOT_MENTION", "@deadprimatesbot"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Custodial wallet
		RedisURL:             os.Getenv("REDIS_URL"),
		WalletSealPassphrase: os.Getenv("WALLET_SEAL_PASSPHRASE"),
		WalletSealSalt:       getEnvWithDefault("WALLET_SEAL_SALT", "escrowbot/wallet/v1"),
		EventDedupeTTLSecs:   24 * 60 * 60,

		// Chain
		SolanaRPCURL:           getEnvWithDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		EscrowProgramID:        getEnvWithDefault("ESCROW_PROGRAM_ID", DefaultEscrowProgramID),
		TokenMint:              os.Getenv("TOKEN_MINT"),
		SettlementAuthorityKey: os.Getenv("SETTLEMENT_AUTHORITY_KEY"),
		Commitment:             getEnvWithDefault("SOLANA_COMMITMENT", "confirmed"),
		ExplorerCluster:        getEnvWithDefault("EXPLORER_CLUSTER", "devnet"),

		// Session policy
		LogoutOnSettle: strings.ToLower(getEnvWithDefault("LOGOUT_ON_SETTLE", "initializer")),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "escrowbot"),
		OTelExportIntervalMillis: 30000,

		// Logging
		LogLevel: strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if ttl := os.Getenv("EVENT_DEDUPE_TTL_SECONDS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil && parsed > 0 {
			config.EventDedupeTTLSecs = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	switch config.LogoutOnSettle {
	case "initializer", "both", "none":
	default:
		return nil, fmt.Errorf("LOGOUT_ON_SETTLE must be one of initializer, both, none (got %q)", config.LogoutOnSettle)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.TokenMint == "" {
			return nil, fmt.Errorf("TOKEN_MINT is required")
		}
		if config.SettlementAuthorityKey == "" {
			return nil, fmt.Errorf("SETTLEMENT_AUTHORITY_KEY is required")
		}
		if config.RedisEnabled() && config.WalletSealPassphrase == "" {
			return nil, fmt.Errorf("WALLET_SEAL_PASSPHRASE is required when REDIS_URL is set")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		BotMention:               "@deadprimatesbot",
		EscrowProgramID:          DefaultEscrowProgramID,
		TokenMint:                "So11111111111111111111111111111111111111112",
		Commitment:               "confirmed",
		ExplorerCluster:          "devnet",
		LogoutOnSettle:           "initializer",
		WalletSealSalt:           "escrowbot/wallet/v1",
		EventDedupeTTLSecs:       60,
		OTelExporterType:         "none",
		OTelServiceName:          "escrowbot-test",
		OTelExportIntervalMillis: 1000,
		LogLevel:                 "debug",
	}
}
