package quota

import (
	"errors"
	"fmt"
	"sync"
)

// ErrQuotaExceeded signals that an API call was refused because it would
// push consumption past the configured daily ceiling. Fatal for the run.
var ErrQuotaExceeded = errors.New("daily API quota exceeded")

// Documented YouTube Data API costs, in quota units per call.
const (
	CostSearchList = 100
	CostVideosList = 1
)

// Tracker counts quota units consumed against a daily ceiling. It is an
// explicitly passed handle, not a singleton, so callers share one counter
// and tests can substitute their own limits. Increment is the only mutation.
type Tracker struct {
	mu    sync.Mutex
	limit int
	used  int
}

func NewTracker(dailyLimit int) *Tracker {
	return &Tracker{limit: dailyLimit}
}

// Remaining reports whether unitsRequested more units fit under the ceiling.
// Callers must consult this before issuing the corresponding API call.
func (t *Tracker) Remaining(unitsRequested int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used+unitsRequested <= t.limit
}

// Consume records units as spent.
func (t *Tracker) Consume(units int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used += units
}

func (t *Tracker) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

func (t *Tracker) Limit() int {
	return t.limit
}

// Status returns a human-readable usage summary for logs.
func (t *Tracker) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%d/%d quota units used", t.used, t.limit)
}
