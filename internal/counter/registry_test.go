package counter

import (
	"errors"
	"math"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestRegistry_CreateThenGet(t *testing.T) {
	r := NewRegistry()

	created, err := r.Create("hits")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created != (Counter{Name: "hits", Value: 0}) {
		t.Fatalf("unexpected created counter: %+v", created)
	}

	got, err := r.Get("hits")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != (Counter{Name: "hits", Value: 0}) {
		t.Fatalf("unexpected counter: %+v", got)
	}
}

func TestRegistry_CreateDuplicateConflicts(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("hits"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Increment("hits"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	_, err := r.Create("hits")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := r.Get("hits")
	if got.Value != 1 {
		t.Fatalf("expected value unchanged at 1, got %d", got.Value)
	}
}

func TestRegistry_IncrementAddsOne(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("hits"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := uint64(1); i <= 25; i++ {
		c, err := r.Increment("hits")
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if c.Value != i {
			t.Fatalf("expected %d after increment, got %d", i, c.Value)
		}
	}
}

func TestRegistry_UnknownNameNotFound(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
	if _, err := r.Increment("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Increment, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("increment of unknown name must not create it, len=%d", r.Len())
	}
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("hits"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if !r.Delete("hits") {
		t.Fatal("expected first delete to remove counter")
	}
	if r.Delete("hits") {
		t.Fatal("expected second delete to be a no-op")
	}
	if r.Delete("never-created") {
		t.Fatal("expected delete of unknown name to be a no-op")
	}
	if _, err := r.Get("hits"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRegistry_RecreateAfterDeleteStartsAtZero(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Create("hits")
	_, _ = r.Increment("hits")
	r.Delete("hits")

	c, err := r.Create("hits")
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if c.Value != 0 {
		t.Fatalf("expected fresh counter at 0, got %d", c.Value)
	}
}

func TestRegistry_ListSortedByName(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"b", "c", "a"} {
		if _, err := r.Create(name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	_, _ = r.Increment("c")
	r.Delete("a")

	got := r.List()
	want := []Counter{{Name: "b", Value: 0}, {Name: "c", Value: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRegistry_ListEmpty(t *testing.T) {
	got := NewRegistry().List()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Create("a")
	_, _ = r.Create("b")

	r.Reset()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry after reset, len=%d", r.Len())
	}
	if _, err := r.Create("a"); err != nil {
		t.Fatalf("create after reset: %v", err)
	}
}

func TestRegistry_IncrementWraps(t *testing.T) {
	r := NewRegistry()
	r.counters["max"] = math.MaxUint64

	c, err := r.Increment("max")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if c.Value != 0 {
		t.Fatalf("expected wrap to 0, got %d", c.Value)
	}
}

func TestRegistry_ConcurrentIncrementsAreNotLost(t *testing.T) {
	const n = 500

	r := NewRegistry()
	if _, err := r.Create("hits"); err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool, n)
		g    errgroup.Group
	)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			c, err := r.Increment("hits")
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[c.Value] {
				t.Errorf("value %d observed twice", c.Value)
			}
			seen[c.Value] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("increment: %v", err)
	}

	got, _ := r.Get("hits")
	if got.Value != n {
		t.Fatalf("expected %d, got %d", n, got.Value)
	}
	for v := uint64(1); v <= n; v++ {
		if !seen[v] {
			t.Fatalf("value %d never observed", v)
		}
	}
}

func TestRegistry_ConcurrentCreateSingleWinner(t *testing.T) {
	const n = 64

	r := NewRegistry()
	var (
		mu        sync.Mutex
		wins      int
		conflicts int
		g         errgroup.Group
	)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := r.Create("hits")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d and %d", n-1, wins, conflicts)
	}
}
