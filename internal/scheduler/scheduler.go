// Package scheduler synchronizes slot capture to WSPR's UTC even-minute
// cycle boundary. Grounded on the teacher's kiwi_wspr/wspr_coordinator.go
// (waitForWSPRCycle/recordingLoop) and the multi-instance
// kiwi_wspr/coordinator_manager.go (map-of-running-workers-under-a-mutex,
// Start/StopAll), collapsed to the single-receiver case: wsprd has exactly
// one capture source, not one coordinator per band.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the length of one WSPR transmission window.
const SlotDuration = 120 * time.Second

// Slot identifies one capture window.
type Slot struct {
	RunID string    // correlates this window's logs/MQTT/web-feed entries
	Start time.Time // UTC, on an even minute boundary
	End   time.Time
}

// CaptureFunc captures and returns raw PCM covering one Slot. A scheduler
// caller supplies this; internal/audiosource provides the RTP source in
// production, a fixture provides it in tests.
type CaptureFunc func(ctx context.Context, s Slot) ([]byte, error)

// ResultFunc is called with the PCM captured for a Slot, for the caller to
// run through internal/wspr.Decode and fan out to reporters.
type ResultFunc func(s Slot, pcm []byte, captureErr error)

// SlotScheduler runs CaptureFunc once per WSPR cycle, synchronized to the
// UTC even-minute boundary.
type SlotScheduler struct {
	capture CaptureFunc
	onSlot  ResultFunc

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a SlotScheduler. capture is invoked once per slot; onSlot
// receives the result (including a non-nil error if capture failed).
func New(capture CaptureFunc, onSlot ResultFunc) *SlotScheduler {
	return &SlotScheduler{capture: capture, onSlot: onSlot}
}

// Start synchronizes to the next even-minute boundary and begins the
// capture loop in a background goroutine.
func (s *SlotScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	waitForCycleBoundary()

	s.wg.Add(1)
	go s.loop()
	log.Println("scheduler: synchronized to WSPR cycle")
}

// Stop ends the capture loop and waits for the in-flight slot to finish.
func (s *SlotScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *SlotScheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		start := time.Now().UTC()
		slot := Slot{
			RunID: uuid.New().String(),
			Start: start,
			End:   start.Add(SlotDuration),
		}

		ctx, cancel := context.WithTimeout(context.Background(), SlotDuration)
		pcm, err := s.capture(ctx, slot)
		cancel()

		s.onSlot(slot, pcm, err)

		if remaining := time.Until(slot.End); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-s.stopCh:
				return
			}
		}
	}
}

// waitForCycleBoundary blocks until the next even UTC minute boundary, the
// instant WSPR transmissions begin.
func waitForCycleBoundary() {
	now := time.Now().UTC()
	wait := secondsUntilNextCycle(now)
	if wait > 0 {
		log.Printf("scheduler: waiting %v for next WSPR cycle", wait)
		time.Sleep(wait)
	}
}

// secondsUntilNextCycle computes the delay from now until the next even
// UTC minute with zero seconds, the convention WSPR transmissions start on.
func secondsUntilNextCycle(now time.Time) time.Duration {
	minute := now.Minute()
	second := now.Second()
	nanosecond := now.Nanosecond()

	nextEvenMinute := minute
	if minute%2 == 1 {
		nextEvenMinute = minute + 1
	} else if second > 0 || nanosecond > 0 {
		nextEvenMinute = minute + 2
	}

	minutesToWait := nextEvenMinute - minute
	wait := time.Duration(minutesToWait)*time.Minute - time.Duration(second)*time.Second - time.Duration(nanosecond)
	if wait < 0 {
		return 0
	}
	return wait
}
