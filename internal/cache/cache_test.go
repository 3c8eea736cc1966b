package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 2, 19, 30, 0, 0, time.UTC)}
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

func TestCache_SetAndGet(t *testing.T) {
	cache := New[string](time.Hour)

	cache.Set("key1", "value1")
	value, found := cache.Get("key1")

	if !found {
		t.Fatal("expected to find key1")
	}
	if value != "value1" {
		t.Errorf("expected value1, got %v", value)
	}
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New[int](time.Hour)

	value, found := cache.Get("nonexistent")
	if found {
		t.Error("expected not to find nonexistent key")
	}
	if value != 0 {
		t.Errorf("expected zero value, got %v", value)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	clock := newFakeClock()
	cache := NewWithClock[string](time.Second, clock.Now)

	cache.Set("flash", "msg-1")

	clock.Advance(999 * time.Millisecond)
	if !cache.Has("flash") {
		t.Fatal("expected entry to be live just before expiry")
	}

	clock.Advance(time.Millisecond)
	if cache.Has("flash") {
		t.Error("expected entry to expire exactly at its TTL")
	}
}

func TestCache_TTLReportsTimeLeft(t *testing.T) {
	clock := newFakeClock()
	cache := NewWithClock[string](5*time.Second, clock.Now)

	if _, ok := cache.TTL("highlight"); ok {
		t.Error("TTL reported a missing key")
	}

	cache.Set("highlight", "msg-1")
	clock.Advance(2 * time.Second)
	if left, ok := cache.TTL("highlight"); !ok || left != 3*time.Second {
		t.Errorf("TTL = %s/%v, want 3s/true", left, ok)
	}

	clock.Advance(3 * time.Second)
	if _, ok := cache.TTL("highlight"); ok {
		t.Error("TTL reported an expired entry")
	}
}

func TestCache_SetRestartsWindow(t *testing.T) {
	clock := newFakeClock()
	cache := NewWithClock[string](5*time.Second, clock.Now)

	cache.Set("highlight", "a")
	clock.Advance(4 * time.Second)
	cache.Set("highlight", "b")
	clock.Advance(4 * time.Second)

	value, found := cache.Get("highlight")
	if !found || value != "b" {
		t.Errorf("Get = %q, %v; want b, true", value, found)
	}
}

func TestCache_CustomTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewWithClock[string](time.Hour, clock.Now)

	cache.SetWithTTL("key1", "value1", 100*time.Millisecond)
	if !cache.Has("key1") {
		t.Fatal("expected to find key1 immediately")
	}

	clock.Advance(150 * time.Millisecond)
	if cache.Has("key1") {
		t.Error("expected key1 to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New[string](time.Hour)

	cache.Set("key1", "value1")
	cache.Delete("key1")

	if cache.Has("key1") {
		t.Error("expected key1 to be deleted")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := New[string](time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	if cache.Size() != 3 {
		t.Errorf("expected size 3, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", cache.Size())
	}
}

func TestCache_Cleanup(t *testing.T) {
	clock := newFakeClock()
	cache := NewWithClock[string](100*time.Millisecond, clock.Now)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.SetWithTTL("key3", "value3", time.Hour)

	clock.Advance(150 * time.Millisecond)

	if cache.Size() != 3 {
		t.Errorf("expected size 3 before cleanup, got %d", cache.Size())
	}

	cache.Cleanup()

	if cache.Size() != 1 {
		t.Errorf("expected size 1 after cleanup, got %d", cache.Size())
	}
	if value, found := cache.Get("key3"); !found || value != "value3" {
		t.Errorf("expected key3 to survive cleanup, got %q, %v", value, found)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New[int](time.Hour)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cache.Set("key", i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cache.Get("key")
		}
	}()
	wg.Wait()
}
