package control

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type call struct{ application, option string }

type fakeApplier struct {
	mu    sync.Mutex
	calls []call
	err   error
	delay time.Duration
}

func (f *fakeApplier) Apply(_ context.Context, application, option string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{application, option})
	return f.err
}

func (f *fakeApplier) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func TestController_DebounceCoalesces(t *testing.T) {
	fa := &fakeApplier{}
	c := New(fa, 30*time.Millisecond, nil)
	defer c.Close()

	c.Select("Seat", "Red")
	c.Select("Seat", "Green")
	c.Select("Seat", "Pumpkin")

	time.Sleep(150 * time.Millisecond)

	calls := fa.recorded()
	if len(calls) != 1 {
		t.Fatalf("applies = %d, want 1 (events coalesced)", len(calls))
	}
	if calls[0] != (call{"Seat", "Pumpkin"}) {
		t.Errorf("applied %+v, want the last event's arguments", calls[0])
	}
}

func TestController_PerApplicationTimers(t *testing.T) {
	fa := &fakeApplier{}
	c := New(fa, 30*time.Millisecond, nil)
	defer c.Close()

	// Rapid selections on two different applications must not cancel
	// each other.
	c.Select("Seat", "Pumpkin")
	c.Select("Legs", "Wood")

	time.Sleep(150 * time.Millisecond)

	calls := fa.recorded()
	if len(calls) != 2 {
		t.Fatalf("applies = %d, want one per application", len(calls))
	}
	seen := map[string]string{}
	for _, cl := range calls {
		seen[cl.application] = cl.option
	}
	if seen["Seat"] != "Pumpkin" || seen["Legs"] != "Wood" {
		t.Errorf("applied %v", seen)
	}
}

func TestController_ErrorContainment(t *testing.T) {
	fa := &fakeApplier{}
	c := New(fa, 10*time.Millisecond, nil)
	defer c.Close()

	var mu sync.Mutex
	var results []Result
	c.OnResult(func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	c.Select("Seat", "Pumpkin")
	time.Sleep(100 * time.Millisecond)

	fa.err = errors.New("viewer exploded")
	c.Select("Seat", "Red")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("first result err = %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatal("second result must carry the apply error")
	}
	if results[1].PriorOption != "Pumpkin" {
		t.Errorf("PriorOption = %q, want last applied Pumpkin for UI revert", results[1].PriorOption)
	}

	snap := c.Snapshot()
	if snap.Applies != 2 || snap.Failures != 1 {
		t.Errorf("snapshot = %+v, want 2 applies / 1 failure", snap)
	}
	if snap.Applied["Seat"] != "Pumpkin" {
		t.Errorf("Applied[Seat] = %q, want unchanged Pumpkin", snap.Applied["Seat"])
	}
}

func TestController_SerializesApplies(t *testing.T) {
	fa := &fakeApplier{delay: 40 * time.Millisecond}
	c := New(fa, 5*time.Millisecond, nil)
	defer c.Close()

	// Two applies at 40ms each must take at least 80ms when serialized.
	start := time.Now()
	c.Select("Seat", "Pumpkin")
	c.Select("Legs", "Wood")

	for time.Since(start) < 500*time.Millisecond {
		if len(fa.recorded()) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := len(fa.recorded()); got != 2 {
		t.Fatalf("applies = %d, want 2", got)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 80ms for serialized applies", elapsed)
	}
}

func TestController_RapidReselectAccounting(t *testing.T) {
	// A Select landing just after the timer fired but before fire takes the
	// lock must not reuse the consumed timer slot. With broken accounting
	// this loop drives the WaitGroup negative and panics within a few
	// milliseconds; passing means every fire paired with exactly one Add.
	fa := &fakeApplier{}
	c := New(fa, time.Microsecond, nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				c.Select("Seat", "Pumpkin")
			}
		}()
	}
	wg.Wait()

	c.Close()
}

func TestController_CloseDropsPending(t *testing.T) {
	fa := &fakeApplier{}
	c := New(fa, 50*time.Millisecond, nil)

	c.Select("Seat", "Pumpkin")
	c.Close()

	time.Sleep(120 * time.Millisecond)
	if got := len(fa.recorded()); got != 0 {
		t.Errorf("applies after Close = %d, want 0", got)
	}

	// Selections after Close are ignored.
	c.Select("Seat", "Red")
	time.Sleep(120 * time.Millisecond)
	if got := len(fa.recorded()); got != 0 {
		t.Errorf("applies after closed Select = %d, want 0", got)
	}
}
