package repositories_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wavvly/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseLocker(t *testing.T, locker repositories.PairLocker) {
	t.Helper()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			unlock, err := locker.Lock(ctx, a, b)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside, "pair lock must be exclusive in both orders")

	// Different pairs do not block each other.
	unlockA, err := locker.Lock(ctx, "alice", "bob")
	require.NoError(t, err)
	unlockB, err := locker.Lock(ctx, "alice", "carol")
	require.NoError(t, err)
	unlockA()
	unlockB()
}

func TestLocalPairLocker(t *testing.T) {
	exerciseLocker(t, repositories.NewLocalPairLocker())
}

func TestLocalPairLockerHonoursContext(t *testing.T) {
	locker := repositories.NewLocalPairLocker()
	unlock, err := locker.Lock(context.Background(), "a", "b")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "b", "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisPairLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseLocker(t, repositories.NewRedisPairLocker(client))
	assert.Empty(t, mr.Keys(), "every lock key must be released")
}

func TestRedisPairLockerTimesOutWhileHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	locker := repositories.NewRedisPairLocker(client)

	unlock, err := locker.Lock(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "a", "b")
	assert.Error(t, err)

	unlock()
	unlock2, err := locker.Lock(context.Background(), "b", "a")
	require.NoError(t, err)
	unlock2()
}
