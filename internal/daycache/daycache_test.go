package daycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	dels    []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) Printf(format string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

func TestLoaderConcurrentCallsShareOneLoad(t *testing.T) {
	loader := New[[]string]("day", nil, time.Minute, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"apple"}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([][]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := loader.Load(context.Background(), "u1", "2024-05-01", fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"apple"}, r)
	}
}

func TestLoaderUsesCache(t *testing.T) {
	cache := newFakeCache()
	loader := New[[]int]("day", cache, time.Minute, nil)
	ctx := context.Background()

	var calls int
	fn := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	v, err := loader.Load(ctx, "u1", "2024-05-01", fn)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)

	v, err = loader.Load(ctx, "u1", "2024-05-01", fn)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
	assert.Equal(t, 1, calls)

	_, err = loader.Load(ctx, "u1", "2024-05-02", fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoaderInvalidate(t *testing.T) {
	cache := newFakeCache()
	loader := New[int]("day", cache, time.Minute, nil)
	ctx := context.Background()

	value := 1
	fn := func(context.Context) (int, error) { return value, nil }

	v, _ := loader.Load(ctx, "u1", "2024-05-01", fn)
	assert.Equal(t, 1, v)

	value = 2
	loader.Invalidate(ctx, "u1", "2024-05-01")
	assert.Equal(t, []string{"day:u1:2024-05-01"}, cache.dels)

	v, _ = loader.Load(ctx, "u1", "2024-05-01", fn)
	assert.Equal(t, 2, v)
}

func TestLoaderInvalidateDuringLoadSkipsCacheWrite(t *testing.T) {
	cache := newFakeCache()
	loader := New[int]("day", cache, time.Minute, nil)
	ctx := context.Background()

	var source atomic.Int32
	source.Store(1)
	read := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)
	go func() {
		v, _ := loader.Load(ctx, "u1", "2024-05-01", func(context.Context) (int, error) {
			v := int(source.Load())
			close(read)
			<-release
			return v, nil
		})
		done <- v
	}()

	<-read
	source.Store(2)
	loader.Invalidate(ctx, "u1", "2024-05-01")
	close(release)
	assert.Equal(t, 1, <-done)
	assert.Empty(t, cache.data)

	v, err := loader.Load(ctx, "u1", "2024-05-01", func(context.Context) (int, error) {
		return int(source.Load()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLoaderSharedLoadIgnoresCallerCancel(t *testing.T) {
	loader := New[string]("day", nil, time.Minute, nil)

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (string, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "loaded", nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(first, "u1", "2024-05-01", fn)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, err := loader.Load(context.Background(), "u1", "2024-05-01", fn)
		assert.NoError(t, err)
		second <- v
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	assert.Equal(t, "loaded", <-second)
	assert.NoError(t, <-firstErr)
}

func TestLoaderCacheFailureFallsBack(t *testing.T) {
	cache := newFakeCache()
	cache.failGet = true
	logger := &captureLogger{}
	loader := New[string]("day", cache, time.Minute, logger)

	v, err := loader.Load(context.Background(), "u1", "2024-05-01", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	require.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[0], "WARN daycache")
}

func TestLoaderErrorsAreNotCached(t *testing.T) {
	cache := newFakeCache()
	loader := New[string]("day", cache, time.Minute, nil)
	ctx := context.Background()

	boom := errors.New("db down")
	_, err := loader.Load(ctx, "u1", "2024-05-01", func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, cache.data)

	v, err := loader.Load(ctx, "u1", "2024-05-01", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("not a url")
	assert.Error(t, err)
}
