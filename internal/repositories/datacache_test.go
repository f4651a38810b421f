package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/portage/internal/transfer"
)

func TestSQLiteDataCache(t *testing.T) {
	var _ transfer.DataCache = (*SQLiteDataCache)(nil)

	t.Run("RunOnce Executes Once Per Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		cache := NewSQLiteDataCache(db, "job-1")
		calls := 0

		for i := 0; i < 3; i++ {
			v, err := cache.RunOnce("create album a", func() (string, error) {
				calls++
				return "dest-a", nil
			})
			if err != nil {
				t.Fatalf("run once failed: %v", err)
			}
			if v != "dest-a" {
				t.Errorf("expected dest-a, got %s", v)
			}
		}

		if calls != 1 {
			t.Errorf("side effect invoked %d times, want 1", calls)
		}
	})

	t.Run("Survives Cache Instances", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		first := NewSQLiteDataCache(db, "job-1")
		if _, err := first.RunOnce("create album a", func() (string, error) { return "dest-a", nil }); err != nil {
			t.Fatalf("run once failed: %v", err)
		}

		// A resumed job builds a fresh cache over the same rows.
		second := NewSQLiteDataCache(db, "job-1")
		v, err := second.RunOnce("create album a", func() (string, error) {
			t.Error("side effect should not run again after resume")
			return "", nil
		})
		if err != nil || v != "dest-a" {
			t.Errorf("expected cached value after resume, got %s, %v", v, err)
		}
	})

	t.Run("Jobs Are Isolated", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		jobA := NewSQLiteDataCache(db, "job-a")
		jobB := NewSQLiteDataCache(db, "job-b")

		if _, err := jobA.RunOnce("create album a", func() (string, error) { return "dest-a", nil }); err != nil {
			t.Fatalf("run once failed: %v", err)
		}

		if _, ok := jobB.Lookup("create album a"); ok {
			t.Error("job-b should not see job-a's entries")
		}
	})

	t.Run("Failures Recorded Not Cached", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		cache := NewSQLiteDataCache(db, "job-1")
		boom := errors.New("upload rejected")

		if _, err := cache.RunOnce("upload p1", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped failure, got %v", err)
		}

		if _, ok := cache.Lookup("upload p1"); ok {
			t.Error("failed key should not be cached")
		}

		msg, attempts, ok := cache.LastFailure("upload p1")
		if !ok || msg != "upload rejected" || attempts != 1 {
			t.Errorf("unexpected failure record: %q, %d, %v", msg, attempts, ok)
		}

		v, err := cache.RunOnce("upload p1", func() (string, error) { return "dest-p1", nil })
		if err != nil || v != "dest-p1" {
			t.Fatalf("retry should succeed, got %s, %v", v, err)
		}

		if _, _, ok := cache.LastFailure("upload p1"); ok {
			t.Error("success should clear the failure record")
		}
	})

	t.Run("Lookup Missing Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		cache := NewSQLiteDataCache(db, "job-1")
		if _, ok := cache.Lookup("missing"); ok {
			t.Error("lookup of absent key should report absence")
		}
	})
}
