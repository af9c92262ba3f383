package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PairLocker serialises mutations touching the same two users.
type PairLocker interface {
	// Lock blocks until the pair is held or ctx is done. The pair is
	// unordered: (a, b) and (b, a) share one lock.
	Lock(ctx context.Context, a, b string) (unlock func(), err error)
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "wavvly:lock:follow:" + a + ":" + b
}

// LocalPairLocker is an in-process keyed mutex, used when Redis is not configured.
type LocalPairLocker struct {
	mu    sync.Mutex
	locks map[string]*pairEntry
}

type pairEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocalPairLocker() *LocalPairLocker {
	return &LocalPairLocker{locks: make(map[string]*pairEntry)}
}

func (l *LocalPairLocker) Lock(ctx context.Context, a, b string) (func(), error) {
	key := pairKey(a, b)

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &pairEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(key, entry)
		})
	}, nil
}

func (l *LocalPairLocker) release(key string, entry *pairEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPairLocker holds pair locks in Redis so that several API processes
// sharing one MongoDB serialise on the same keys.
type RedisPairLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisPairLocker(client *redis.Client) *RedisPairLocker {
	return &RedisPairLocker{client: client, ttl: 5 * time.Second, retry: 20 * time.Millisecond}
}

func (l *RedisPairLocker) Lock(ctx context.Context, a, b string) (func(), error) {
	key := pairKey(a, b)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// The request context may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}
