package wallet

import (
	"context"
	"fmt"

	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "wallet:v1:"
	fieldSecretKey = "secret"
	fieldPublicKey = "public"
)

// RedisStore keeps key pairs in Redis, one hash per user. Both halves are
// written by a single HSET so readers never observe half a pair. Secret keys
// are sealed before they leave the process.
type RedisStore struct {
	client redis.Cmdable
	sealer *Sealer
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client redis.Cmdable, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, sealer: sealer}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Login seals the secret key and stores the pair
func (s *RedisStore) Login(ctx context.Context, id string, secretKey solana.PrivateKey, publicKey string) error {
	if err := validatePair(id, secretKey, publicKey); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(id, secretKey)
	if err != nil {
		return err
	}

	if err := s.client.HSet(ctx, redisKey(id), fieldSecretKey, sealed, fieldPublicKey, publicKey).Err(); err != nil {
		return fmt.Errorf("failed to store key pair: %w", err)
	}
	return nil
}

// GetKeypair reads and unseals the pair
func (s *RedisStore) GetKeypair(ctx context.Context, id string) (*models.KeyPair, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read key pair: %w", err)
	}

	sealed, hasSecret := fields[fieldSecretKey]
	publicKey, hasPublic := fields[fieldPublicKey]
	if !hasSecret || !hasPublic || sealed == "" || publicKey == "" {
		return nil, ErrNotLoggedIn
	}

	secretKey, err := s.sealer.Open(id, []byte(sealed))
	if err != nil {
		return nil, err
	}

	return &models.KeyPair{
		SecretKey: solana.PrivateKey(secretKey),
		PublicKey: publicKey,
	}, nil
}

// Logout deletes the pair
func (s *RedisStore) Logout(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete key pair: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a sealed secret is present
func (s *RedisStore) IsLoggedIn(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.HExists(ctx, redisKey(id), fieldSecretKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key pair: %w", err)
	}
	return ok, nil
}
