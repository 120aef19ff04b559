package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

const (
	lockTTL     = 15 * time.Second
	lockBackoff = 50 * time.Millisecond
	lockRetries = 100
)

// UserLocker serializes ledger writes per user across service instances.
// With no Redis client every Lock succeeds immediately.
type UserLocker struct {
	client *redislock.Client
}

func NewUserLocker(client *redislock.Client) *UserLocker {
	return &UserLocker{client: client}
}

var ErrBusy = errors.New("ledger is busy, try again")

func (l *UserLocker) Lock(ctx context.Context, userID uint) (release func(), err error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("ledger:user:%d", userID)
	lock, err := l.client.Obtain(ctx, key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockBackoff), lockRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// the write already committed; a failed release only delays the next
		// writer until the TTL expires
		_ = lock.Release(context.Background())
	}, nil
}
