// Package cache wraps redis behind a small JSON cache used for wallet reads.
// The database is always the source of truth; the ledger invalidates wallet
// entries after every mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vestra/internal/models"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{client: client, ttl: defaultTTL}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache value: %w", err)
	}
	return json.Unmarshal(data, dest)
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

// WalletKey builds the cache key for one (user, kind) wallet.
func WalletKey(userID uint, kind models.WalletKind) string {
	return fmt.Sprintf("wallet:%d:%s", userID, kind)
}

// CacheWallet stores a wallet under its (user, kind) key.
func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet == nil {
		return errors.New("cannot cache nil wallet")
	}
	return s.SetWithTTL(ctx, WalletKey(wallet.UserID, wallet.Kind), wallet, 5*time.Minute)
}

// GetWallet reads a wallet from cache; ErrCacheMiss on absence.
func (s *CacheService) GetWallet(ctx context.Context, userID uint, kind models.WalletKind) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.Get(ctx, WalletKey(userID, kind), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// InvalidateWallet drops one wallet entry.
func (s *CacheService) InvalidateWallet(ctx context.Context, userID uint, kind models.WalletKind) error {
	return s.Delete(ctx, WalletKey(userID, kind))
}

// InvalidateUserWallets drops every wallet entry a user owns.
func (s *CacheService) InvalidateUserWallets(ctx context.Context, userID uint) error {
	keys := make([]string, 0, len(models.WalletKinds))
	for _, kind := range models.WalletKinds {
		keys = append(keys, WalletKey(userID, kind))
	}
	return s.Delete(ctx, keys...)
}
