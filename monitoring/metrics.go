package monitoring

import (
	"sync"
	"time"
)

// Stats tracks serving counters for the delay scorer.
type Stats struct {
	mu sync.RWMutex

	predictionsServed int64
	delayedPredicted  int64
	cacheHits         int64
	rejectedRequests  int64
	retrains          int64
	startTime         time.Time
	lastPrediction    time.Time
}

// StatsSnapshot is the JSON shape pushed to dashboard clients.
type StatsSnapshot struct {
	PredictionsServed int64     `json:"predictions_served"`
	DelayedPredicted  int64     `json:"delayed_predicted"`
	CacheHits         int64     `json:"cache_hits"`
	RejectedRequests  int64     `json:"rejected_requests"`
	Retrains          int64     `json:"retrains"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
	LastPrediction    time.Time `json:"last_prediction"`
}

// NewStats creates a stats tracker starting now.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// RecordPredictions counts a served batch and how many of its labels were
// delayed.
func (s *Stats) RecordPredictions(labels []int, cacheHits int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.predictionsServed += int64(len(labels))
	for _, label := range labels {
		if label == 1 {
			s.delayedPredicted++
		}
	}
	s.cacheHits += int64(cacheHits)
	s.lastPrediction = time.Now()
}

// RecordRejection counts a request that failed domain validation.
func (s *Stats) RecordRejection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectedRequests++
}

// RecordRetrain counts a model swap.
func (s *Stats) RecordRetrain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retrains++
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		PredictionsServed: s.predictionsServed,
		DelayedPredicted:  s.delayedPredicted,
		CacheHits:         s.cacheHits,
		RejectedRequests:  s.rejectedRequests,
		Retrains:          s.retrains,
		UptimeSeconds:     time.Since(s.startTime).Seconds(),
		LastPrediction:    s.lastPrediction,
	}
}
