package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// KeyedMutex
// ============================================================================

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "company-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&maxActive)
				if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	m := NewKeyedMutex()

	unlockA, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	m := NewKeyedMutex()

	unlock, err := m.Lock(context.Background(), "company-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "company-1")
	assert.True(t, errors.Is(err, ErrNotAcquired))

	unlock()
	unlock()
	assert.Equal(t, 0, m.Len())
}

// ============================================================================
// RedisLocker
// ============================================================================

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client, 30*time.Second, time.Second)

	unlock, err := l.Lock(context.Background(), "company-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("pipeline:lock:company-1"))
	assert.Equal(t, 30*time.Second, mr.TTL("pipeline:lock:company-1"))

	unlock()
	assert.False(t, mr.Exists("pipeline:lock:company-1"))
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	_, client := newMiniredis(t)
	l := NewRedisLocker(client, 30*time.Second, 2*time.Second)

	unlock, err := l.Lock(context.Background(), "company-1")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		unlock()
	}()

	unlock2, err := l.Lock(context.Background(), "company-1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLocker_TimesOut(t *testing.T) {
	_, client := newMiniredis(t)
	l := NewRedisLocker(client, 30*time.Second, 100*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "company-1")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), "company-1")
	assert.True(t, errors.Is(err, ErrNotAcquired))
}

func TestRedisLocker_ReleaseKeepsForeignLease(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client, time.Second, time.Second)

	unlock, err := l.Lock(context.Background(), "company-1")
	require.NoError(t, err)

	// lease expired and another worker took over
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("pipeline:lock:company-1", "someone-else"))

	unlock()
	got, err := mr.Get("pipeline:lock:company-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_RedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLocker(client, 30*time.Second, time.Second)

	mock.Regexp().ExpectSetNX("pipeline:lock:company-1", `.+`, 30*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), "company-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotAcquired))
	assert.Contains(t, err.Error(), "connection refused")
}
