// Package stats tracks process-lifetime classification counts. Counts reset
// on restart; there is deliberately no persistence behind them.
package stats

import (
	"sync"

	"github.com/sortyx/sortyx-backend/internal/waste"
)

// Tracker counts classifications per category. Safe for concurrent use; the
// total always equals the sum of the per-category counts, including in
// snapshots taken while increments are in flight.
type Tracker struct {
	mu     sync.Mutex
	total  int64
	counts map[waste.Category]int64
}

// Snapshot is a consistent point-in-time copy of the counters.
type Snapshot struct {
	Total  int64                    `json:"total_classifications"`
	Counts map[waste.Category]int64 `json:"category_breakdown"`
}

// NewTracker returns a Tracker with every known category pre-seeded at
// zero, so stats responses always list all four bins.
func NewTracker() *Tracker {
	counts := make(map[waste.Category]int64, len(waste.All))
	for _, c := range waste.All {
		counts[c] = 0
	}
	return &Tracker{counts: counts}
}

// Record increments the counter for cat and the total. Unknown categories
// are attributed to the default bin, matching normalizer behavior.
func (t *Tracker) Record(cat waste.Category) {
	if !cat.Valid() {
		cat = waste.DefaultCategory
	}
	t.mu.Lock()
	t.counts[cat]++
	t.total++
	t.mu.Unlock()
}

// Snapshot returns a copy of the counters consistent with some
// serialization of completed Record calls.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[waste.Category]int64, len(t.counts))
	for c, n := range t.counts {
		counts[c] = n
	}
	return Snapshot{Total: t.total, Counts: counts}
}
