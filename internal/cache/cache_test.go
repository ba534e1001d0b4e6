package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type report struct {
	Symbol string    `json:"symbol"`
	Prices []float64 `json:"prices"`
}

func newTestCache(opts ...Option) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(NewMemoryStore(), append([]Option{WithClock(clock)}, opts...)...), clock
}

func TestGetOrCompute_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()
	var calls int
	fn := func() (report, error) {
		calls++
		return report{Symbol: "BTCUSDT", Prices: []float64{1, 2, float64(calls)}}, nil
	}

	first, err := GetOrCompute(ctx, c, "predict:BTCUSDT:7", 60*time.Second, fn)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	clock.Advance(59 * time.Second)
	second, err := GetOrCompute(ctx, c, "predict:BTCUSDT:7", 60*time.Second, fn)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 computation within ttl, got %d", calls)
	}
	if second.Symbol != first.Symbol || len(second.Prices) != 3 || second.Prices[2] != 1 {
		t.Errorf("cached value differs: %+v vs %+v", second, first)
	}

	clock.Advance(time.Second) // exactly ttl old: stale
	third, err := GetOrCompute(ctx, c, "predict:BTCUSDT:7", 60*time.Second, fn)
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected recomputation after ttl, got %d calls", calls)
	}
	if third.Prices[2] != 2 {
		t.Errorf("expected refreshed value, got %+v", third)
	}
}

func TestGetOrCompute_DistinctKeys(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	var calls int
	fn := func() (int, error) { calls++; return calls, nil }

	a, _ := GetOrCompute(ctx, c, c.Key("klines", "BTC", "60", 200), time.Minute, fn)
	b, _ := GetOrCompute(ctx, c, c.Key("klines", "BTC", "60", 100), time.Minute, fn)
	if a == b || calls != 2 {
		t.Errorf("expected distinct keys to compute separately, got a=%d b=%d calls=%d", a, b, calls)
	}
}

func TestGetOrCompute_ErrorsNotCached(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	boom := errors.New("upstream down")
	var calls int

	_, err := GetOrCompute(ctx, c, "crypto:ETH", time.Minute, func() (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	v, err := GetOrCompute(ctx, c, "crypto:ETH", time.Minute, func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || v != 7 || calls != 2 {
		t.Errorf("expected recomputation after failure, got v=%d err=%v calls=%d", v, err, calls)
	}
}

func TestGetOrCompute_NonPositiveTTL(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	var calls int
	fn := func() (int, error) { calls++; return calls, nil }
	for i := 0; i < 3; i++ {
		if _, err := GetOrCompute(ctx, c, "search:btc", 0, fn); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Errorf("expected every call to compute with ttl 0, got %d", calls)
	}
}

func TestGetOrCompute_DedupeComputesOnce(t *testing.T) {
	c, _ := newTestCache(WithDedupe(true))
	if !c.Dedupe() {
		t.Fatal("Dedupe() = false with WithDedupe(true)")
	}
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func() (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 16)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = GetOrCompute(ctx, c, "predict:SOL:7", time.Minute, fn)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = GetOrCompute(ctx, c, "predict:SOL:7", time.Minute, fn)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single computation with dedupe, got %d", n)
	}
	for i, r := range results {
		if r != 42 {
			t.Errorf("caller %d got %d", i, r)
		}
	}
}

func TestGetOrCompute_DedupeSurvivesCanceledStarter(t *testing.T) {
	c, _ := newTestCache(WithDedupe(true))

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fn := func() (int, error) {
		calls.Add(1)
		close(started)
		<-release
		return 7, nil
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := GetOrCompute(ctx1, c, "crypto:BTC", time.Minute, fn)
		first <- err
	}()
	<-started

	second := make(chan int, 1)
	go func() {
		v, _ := GetOrCompute(context.Background(), c, "crypto:BTC", time.Minute, fn)
		second <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancel1()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller: err = %v, want context.Canceled", err)
	}

	close(release)
	if v := <-second; v != 7 {
		t.Errorf("joined caller got %d, want 7", v)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single computation, got %d", n)
	}
}

func TestGetOrCompute_NoDedupeLastWriterWins(t *testing.T) {
	c, _ := newTestCache()
	if c.Dedupe() {
		t.Fatal("Dedupe() = true by default")
	}
	ctx := context.Background()

	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrCompute(ctx, c, "predict:XRP:7", time.Minute, func() (string, error) {
				calls.Add(1)
				return "same", nil
			})
			if err != nil || v != "same" {
				t.Errorf("unexpected result %q, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if n := calls.Load(); n < 1 || n > 8 {
		t.Errorf("unexpected computation count %d", n)
	}

	// settled: a later read is a hit
	before := calls.Load()
	if _, err := GetOrCompute(ctx, c, "predict:XRP:7", time.Minute, func() (string, error) {
		calls.Add(1)
		return "other", nil
	}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != before {
		t.Error("expected a cache hit once the key is populated")
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("store offline")
}
func (failingStore) Set(context.Context, string, Entry) error { return errors.New("store offline") }

func TestGetOrCompute_StoreFailureDegradesToCompute(t *testing.T) {
	c := New(failingStore{})
	v, err := GetOrCompute(context.Background(), c, "crypto:BTC", time.Minute, func() (int, error) { return 5, nil })
	if err != nil || v != 5 {
		t.Errorf("expected computed value despite store failure, got %d, %v", v, err)
	}
}

func TestDefaultKey(t *testing.T) {
	tests := []struct {
		op     string
		params []any
		want   string
	}{
		{"predict", []any{"BTCUSDT", 7}, "predict:BTCUSDT:7"},
		{"klines", []any{"ETH", "60", 200}, "klines:ETH:60:200"},
		{"search", []any{"a:b"}, "search:a%3Ab"},
		{"all_cryptos", nil, "all_cryptos"},
	}
	for _, tt := range tests {
		if got := DefaultKey(tt.op, tt.params...); got != tt.want {
			t.Errorf("DefaultKey(%q, %v) = %q, want %q", tt.op, tt.params, got, tt.want)
		}
	}
	if DefaultKey("search", "a:b") == DefaultKey("search", "a", "b") {
		t.Error("separator inside a parameter must not collide")
	}
}

func TestMemoryStore_LazyEviction(t *testing.T) {
	store := NewMemoryStore()
	c, clock := New(store), &fakeClock{now: time.Unix(0, 0)}
	WithClock(clock)(c)

	ctx := context.Background()
	_, _ = GetOrCompute(ctx, c, "crypto:BTC", time.Second, func() (int, error) { return 1, nil })
	clock.Advance(time.Hour)
	if store.Len() != 1 {
		t.Errorf("stale entries stay until overwritten, got %d keys", store.Len())
	}
}
