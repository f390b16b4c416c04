package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSecondsUntilNextCycleOnBoundary(t *testing.T) {
	boundary := time.Date(2026, 7, 31, 14, 2, 0, 0, time.UTC)
	if got := secondsUntilNextCycle(boundary); got != 0 {
		t.Errorf("secondsUntilNextCycle(even minute, :00) = %v, want 0", got)
	}
}

func TestSecondsUntilNextCycleMidOddMinute(t *testing.T) {
	mid := time.Date(2026, 7, 31, 14, 3, 30, 0, time.UTC)
	want := 30 * time.Second
	if got := secondsUntilNextCycle(mid); got != want {
		t.Errorf("secondsUntilNextCycle(14:03:30) = %v, want %v", got, want)
	}
}

func TestSecondsUntilNextCycleMidEvenMinute(t *testing.T) {
	mid := time.Date(2026, 7, 31, 14, 2, 45, 0, time.UTC)
	want := 75 * time.Second
	if got := secondsUntilNextCycle(mid); got != want {
		t.Errorf("secondsUntilNextCycle(14:02:45) = %v, want %v", got, want)
	}
}

func TestSchedulerRunsCaptureAndDeliversResult(t *testing.T) {
	var mu sync.Mutex
	var gotSlots []Slot
	var gotErrs []error

	capture := func(ctx context.Context, s Slot) ([]byte, error) {
		return []byte("pcm"), nil
	}
	done := make(chan struct{}, 1)
	onSlot := func(s Slot, pcm []byte, err error) {
		mu.Lock()
		gotSlots = append(gotSlots, s)
		gotErrs = append(gotErrs, err)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}

	sched := &SlotScheduler{capture: capture, onSlot: onSlot}
	sched.mu.Lock()
	sched.running = true
	sched.stopCh = make(chan struct{})
	sched.mu.Unlock()

	sched.wg.Add(1)
	go sched.loop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a scheduled slot")
	}

	sched.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(gotSlots) == 0 {
		t.Fatal("expected at least one slot result")
	}
	if gotSlots[0].RunID == "" {
		t.Error("Slot.RunID should not be empty")
	}
	if gotErrs[0] != nil {
		t.Errorf("unexpected capture error: %v", gotErrs[0])
	}
}
