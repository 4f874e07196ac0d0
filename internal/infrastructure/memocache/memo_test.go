package memocache

import (
	"testing"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// fakeClock advances only when told to, making TTL behavior deterministic.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func records(ids ...string) []domain.FoodRecord {
	out := make([]domain.FoodRecord, len(ids))
	for i, id := range ids {
		out[i] = domain.FoodRecord{FoodID: id, Name: "food " + id}
	}
	return out
}

func TestMemo_SetAndGet(t *testing.T) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	memo := New(5*time.Minute, clock.now)

	memo.Set("apple", 10, records("a1", "a2"))

	got, ok := memo.Get("apple", 10)
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if len(got) != 2 {
		t.Errorf("Get() returned %d records, want 2", len(got))
	}
	if got[0].FoodID != "a1" {
		t.Errorf("Get()[0].FoodID = %s, want a1", got[0].FoodID)
	}
}

func TestMemo_KeyIncludesLimit(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	memo := New(5*time.Minute, clock.now)

	memo.Set("apple", 10, records("a1"))

	if _, ok := memo.Get("apple", 20); ok {
		t.Error("Get() with different limit ok = true, want false")
	}
	if _, ok := memo.Get("banana", 10); ok {
		t.Error("Get() with different query ok = true, want false")
	}
}

func TestMemo_Expiration(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	memo := New(5*time.Minute, clock.now)

	memo.Set("apple", 10, records("a1"))

	clock.advance(4 * time.Minute)
	if _, ok := memo.Get("apple", 10); !ok {
		t.Error("Get() before TTL ok = false, want true")
	}

	clock.advance(time.Minute)
	if _, ok := memo.Get("apple", 10); ok {
		t.Error("Get() at TTL ok = true, want false")
	}
}

func TestMemo_SetSweepsExpired(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	memo := New(5*time.Minute, clock.now)

	memo.Set("apple", 10, records("a1"))
	memo.Set("banana", 10, records("b1"))
	if memo.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", memo.Len())
	}

	clock.advance(6 * time.Minute)
	memo.Set("cherry", 10, records("c1"))

	// Expired apple and banana entries are removed by the write.
	if memo.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", memo.Len())
	}
	if _, ok := memo.Get("cherry", 10); !ok {
		t.Error("Get() for fresh entry ok = false, want true")
	}
}

func TestMemo_Clear(t *testing.T) {
	memo := New(5*time.Minute, nil)

	memo.Set("apple", 10, records("a1"))
	memo.Set("banana", 10, records("b1"))

	memo.Clear()

	if memo.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", memo.Len())
	}
	if _, ok := memo.Get("apple", 10); ok {
		t.Error("Get() after Clear ok = true, want false")
	}
}
