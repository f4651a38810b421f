package transfer

import (
	"errors"
	"testing"
)

func TestMemoryCache_RunOnce(t *testing.T) {
	t.Run("executes once per key", func(t *testing.T) {
		cache := NewMemoryCache()
		calls := 0

		for i := 0; i < 3; i++ {
			v, err := cache.RunOnce("create album 42", func() (string, error) {
				calls++
				return "dest-42", nil
			})
			if err != nil {
				t.Fatalf("run once failed: %v", err)
			}
			if v != "dest-42" {
				t.Errorf("expected cached value dest-42, got %s", v)
			}
		}

		if calls != 1 {
			t.Errorf("side effect invoked %d times, want 1", calls)
		}
	})

	t.Run("distinct keys execute separately", func(t *testing.T) {
		cache := NewMemoryCache()
		calls := 0
		run := func() (string, error) {
			calls++
			return "v", nil
		}

		cache.RunOnce("key-1", run)
		cache.RunOnce("key-2", run)

		if calls != 2 {
			t.Errorf("side effect invoked %d times, want 2", calls)
		}
	})

	t.Run("failures are recorded, not cached", func(t *testing.T) {
		cache := NewMemoryCache()
		boom := errors.New("upload rejected")
		calls := 0

		_, err := cache.RunOnce("upload photo 7", func() (string, error) {
			calls++
			return "", boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped failure, got %v", err)
		}

		if _, ok := cache.Lookup("upload photo 7"); ok {
			t.Error("failed key should not be cached")
		}

		if failure, ok := cache.LastFailure("upload photo 7"); !ok || !errors.Is(failure, boom) {
			t.Errorf("expected recorded failure, got %v (%v)", failure, ok)
		}

		// A later attempt with the same key runs again and can succeed.
		v, err := cache.RunOnce("upload photo 7", func() (string, error) {
			calls++
			return "dest-7", nil
		})
		if err != nil || v != "dest-7" {
			t.Fatalf("retry should succeed, got %s, %v", v, err)
		}
		if calls != 2 {
			t.Errorf("side effect invoked %d times, want 2", calls)
		}

		if _, ok := cache.LastFailure("upload photo 7"); ok {
			t.Error("success should clear the recorded failure")
		}
	})

	t.Run("failure does not poison other keys", func(t *testing.T) {
		cache := NewMemoryCache()

		cache.RunOnce("bad", func() (string, error) { return "", errors.New("nope") })
		v, err := cache.RunOnce("good", func() (string, error) { return "ok", nil })
		if err != nil || v != "ok" {
			t.Errorf("unrelated key affected by failure: %s, %v", v, err)
		}
	})
}

func TestMemoryCache_Lookup(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok := cache.Lookup("missing"); ok {
		t.Error("lookup of absent key should report absence")
	}

	cache.RunOnce("album 1", func() (string, error) { return "dest-1", nil })

	v, ok := cache.Lookup("album 1")
	if !ok || v != "dest-1" {
		t.Errorf("expected dest-1, got %s (%v)", v, ok)
	}
}
