package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("BOT_MENTION", "")
	t.Setenv("LOGOUT_ON_SETTLE", "")
	t.Setenv("ESCROW_PROGRAM_ID", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "@deadprimatesbot", cfg.BotMention)
	assert.Equal(t, DefaultEscrowProgramID, cfg.EscrowProgramID)
	assert.Equal(t, "initializer", cfg.LogoutOnSettle)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.NATSEnabled())
}

func TestLoad_RejectsUnknownLogoutPolicy(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOGOUT_ON_SETTLE", "sometimes")

	_, err := load()
	assert.Error(t, err)
}

func TestLoad_RequiresSealPassphraseWithRedis(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("TOKEN_MINT", "So11111111111111111111111111111111111111112")
	t.Setenv("SETTLEMENT_AUTHORITY_KEY", "key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WALLET_SEAL_PASSPHRASE", "")
	t.Setenv("LOGOUT_ON_SETTLE", "")

	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WALLET_SEAL_PASSPHRASE")
}

func TestSetTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	testCfg := NewTestConfig()
	testCfg.BotMention = "@custom"
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
}
