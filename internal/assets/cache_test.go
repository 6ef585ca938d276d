package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
)

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

type stubFetcher struct {
	mu     sync.Mutex
	params map[uint64]*domain.AssetParams
	calls  map[uint64]int
	times  []time.Time
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		params: map[uint64]*domain.AssetParams{},
		calls:  map[uint64]int{},
	}
}

func (f *stubFetcher) AssetParams(_ context.Context, assetID uint64) (*domain.AssetParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[assetID]++
	f.times = append(f.times, time.Now())
	if p, ok := f.params[assetID]; ok {
		return p, nil
	}
	return nil, errors.New("asset not found")
}

func (f *stubFetcher) callCount(assetID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[assetID]
}

func newTestCache(fetcher Fetcher, interval time.Duration) *Cache {
	return NewCache(newMemStore(), fetcher, Config{MinFetchInterval: interval}, nil)
}

func waitAll(t *testing.T, done []chan struct{}, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for i, ch := range done {
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("callback %d never fired", i)
		}
	}
}

func TestRequestAssetCachedFiresImmediately(t *testing.T) {
	fetcher := newStubFetcher()
	c := newTestCache(fetcher, time.Millisecond)

	fired := make(chan struct{})
	c.RequestAsset(domain.AlgoAssetID, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback for the native asset did not fire synchronously")
	}
	if fetcher.callCount(domain.AlgoAssetID) != 0 {
		t.Fatal("native asset must never be fetched")
	}
}

func TestRequestAssetCoalescesConcurrentRequests(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.params[123] = &domain.AssetParams{Name: "Test", UnitName: "TST", Decimals: 6}
	c := newTestCache(fetcher, time.Millisecond)

	done := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	for _, ch := range done {
		ch := ch
		c.RequestAsset(123, func() { close(ch) })
	}

	waitAll(t, done, 5*time.Second)

	if n := fetcher.callCount(123); n != 1 {
		t.Fatalf("coalesced requests produced %d fetches, want 1", n)
	}
	info := c.GetAssetInfo(123)
	if info == nil || info.UnitName != "TST" {
		t.Fatalf("GetAssetInfo after fetch = %+v", info)
	}
}

func TestRequestAssetFailureStillFiresCallback(t *testing.T) {
	fetcher := newStubFetcher() // knows no assets
	c := newTestCache(fetcher, time.Millisecond)

	fired := make(chan struct{})
	c.RequestAsset(999, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not fired after a failed fetch")
	}
	if c.GetAssetInfo(999) != nil {
		t.Fatal("failed fetch must not populate the cache")
	}
}

func TestDrainPacesConsecutiveFetches(t *testing.T) {
	const interval = 120 * time.Millisecond
	fetcher := newStubFetcher()
	fetcher.params[1] = &domain.AssetParams{Name: "One", Decimals: 0}
	fetcher.params[2] = &domain.AssetParams{Name: "Two", Decimals: 0}
	fetcher.params[3] = &domain.AssetParams{Name: "Three", Decimals: 0}
	c := newTestCache(fetcher, interval)

	done := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	for i, ch := range done {
		ch := ch
		c.RequestAsset(uint64(i+1), func() { close(ch) })
	}

	waitAll(t, done, 10*time.Second)

	fetcher.mu.Lock()
	times := append([]time.Time(nil), fetcher.times...)
	fetcher.mu.Unlock()

	if len(times) != 3 {
		t.Fatalf("got %d fetches, want 3", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval-20*time.Millisecond {
			t.Fatalf("fetches %d and %d only %s apart, want ~%s", i-1, i, gap, interval)
		}
	}
}

func TestDrainPacingSurvivesIdleQueue(t *testing.T) {
	const interval = 200 * time.Millisecond
	fetcher := newStubFetcher()
	for id := uint64(1); id <= 4; id++ {
		fetcher.params[id] = &domain.AssetParams{Name: fmt.Sprintf("A%d", id), Decimals: 0}
	}
	c := newTestCache(fetcher, interval)

	primed := make(chan struct{})
	c.RequestAsset(1, func() { close(primed) })
	waitAll(t, []chan struct{}{primed}, 10*time.Second)

	// An idle limiter must not bank permits for a later burst.
	time.Sleep(6 * interval)

	done := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	for i, ch := range done {
		ch := ch
		c.RequestAsset(uint64(i+2), func() { close(ch) })
	}
	waitAll(t, done, 10*time.Second)

	fetcher.mu.Lock()
	times := append([]time.Time(nil), fetcher.times...)
	fetcher.mu.Unlock()

	if len(times) != 4 {
		t.Fatalf("got %d fetches, want 4", len(times))
	}
	// Only the burst after the idle period is under test; the first of the
	// three may fire immediately, the rest must keep the spacing.
	burst := times[1:]
	for i := 1; i < len(burst); i++ {
		if gap := burst[i].Sub(burst[i-1]); gap < interval-20*time.Millisecond {
			t.Fatalf("fetches %d and %d only %s apart, want >= %s", i, i+1, gap, interval)
		}
	}
}

func TestGetAssetInfoReadsThroughStore(t *testing.T) {
	store := newMemStore()
	_ = store.Set(context.Background(), "asset_55", `{"name":"Stored","unit-name":"STO","total":100,"decimals":2}`)

	c := NewCache(store, newStubFetcher(), Config{MinFetchInterval: time.Millisecond}, nil)

	info := c.GetAssetInfo(55)
	if info == nil || info.UnitName != "STO" {
		t.Fatalf("store read-through failed: %+v", info)
	}
}

func TestGetAssetInfoAlgoHardCoded(t *testing.T) {
	c := newTestCache(newStubFetcher(), time.Millisecond)

	info := c.GetAssetInfo(domain.AlgoAssetID)
	if info == nil || info.UnitName != "ALGO" || info.Decimals != 6 {
		t.Fatalf("native asset params = %+v", info)
	}
}

func TestCallbackPanicDoesNotStopQueue(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.params[1] = &domain.AssetParams{Name: "One", Decimals: 0}
	fetcher.params[2] = &domain.AssetParams{Name: "Two", Decimals: 0}
	c := newTestCache(fetcher, time.Millisecond)

	second := make(chan struct{})
	c.RequestAsset(1, func() { panic(fmt.Errorf("boom")) })
	c.RequestAsset(2, func() { close(second) })

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("queue stalled after a panicking callback")
	}
}
