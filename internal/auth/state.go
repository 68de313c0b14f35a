package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateTTL       = 10 * time.Minute
)

var ErrUnknownState = errors.New("unknown or expired oauth state")

// StateStore carries the referral code across the provider redirect. Each
// state value is single use.
type StateStore interface {
	Issue(ctx context.Context, referralCode string) (string, error)
	Consume(ctx context.Context, state string) (string, error)
}

type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Issue(ctx context.Context, referralCode string) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, stateKeyPrefix+state, referralCode, stateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrUnknownState
	}
	ref, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if err == redis.Nil {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", err
	}
	return ref, nil
}
