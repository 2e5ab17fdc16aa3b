package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockBusy = errors.New("lock is held by another request")

// Locker serializes redemptions per user. Acquire returns a release func.
type Locker interface {
	Acquire(ctx context.Context, userID uint) (func(), error)
}

// RedisLocker implements Locker on a redis SET NX lock with expiry, so a
// crashed holder cannot wedge redemptions for its user.
type RedisLocker struct {
	client        *redis.Client
	expiration    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:        client,
		expiration:    30 * time.Second,
		retryInterval: 100 * time.Millisecond,
		maxRetries:    30,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, userID uint) (func(), error) {
	key := fmt.Sprintf("redeem:lock:user:%d", userID)
	value := uuid.NewString()

	for i := 0; i < l.maxRetries; i++ {
		ok, err := l.client.SetNX(ctx, key, value, l.expiration).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, value) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}

	return nil, ErrLockBusy
}

// release deletes the lock only if this request still holds it. The value
// check and delete run atomically in a Lua script so an expired holder never
// removes a successor's lock.
func (l *RedisLocker) release(key, value string) {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = l.client.Eval(ctx, script, []string{key}, value).Result()
}

// LocalLocker is an in-process Locker for single-node deployments and tests
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uint]*sync.Mutex)}
}

func (l *LocalLocker) Acquire(ctx context.Context, userID uint) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
