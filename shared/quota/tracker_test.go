package quota

import (
	"sync"
	"testing"
)

func TestTrackerGuardsCeiling(t *testing.T) {
	tracker := NewTracker(250)

	if !tracker.Remaining(CostSearchList) {
		t.Fatal("fresh tracker should allow a search call")
	}
	tracker.Consume(CostSearchList)
	tracker.Consume(CostSearchList)

	if !tracker.Remaining(50) {
		t.Error("Remaining(50) = false at 200/250 used")
	}
	if tracker.Remaining(51) {
		t.Error("Remaining(51) = true would cross the ceiling at 200/250")
	}
	if got := tracker.Used(); got != 200 {
		t.Errorf("Used() = %d, want 200", got)
	}
}

func TestTrackerExactCeilingAllowed(t *testing.T) {
	tracker := NewTracker(100)
	if !tracker.Remaining(100) {
		t.Error("a call landing exactly on the ceiling must be allowed")
	}
	tracker.Consume(100)
	if tracker.Remaining(1) {
		t.Error("Remaining(1) = true with quota fully consumed")
	}
}

func TestTrackerConcurrentConsume(t *testing.T) {
	tracker := NewTracker(10000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Consume(CostVideosList)
		}()
	}
	wg.Wait()

	if got := tracker.Used(); got != 100 {
		t.Errorf("Used() = %d after 100 concurrent consumes, want 100", got)
	}
}

func TestTrackerStatus(t *testing.T) {
	tracker := NewTracker(10000)
	tracker.Consume(101)
	if got := tracker.Status(); got != "101/10000 quota units used" {
		t.Errorf("Status() = %q", got)
	}
}
