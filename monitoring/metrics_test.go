package monitoring

import (
	"testing"
)

func TestStatsRecordPredictions(t *testing.T) {
	stats := NewStats()
	stats.RecordPredictions([]int{1, 0, 1, 1}, 2)
	stats.RecordPredictions([]int{0}, 0)
	stats.RecordRejection()
	stats.RecordRetrain()

	snap := stats.Snapshot()
	if snap.PredictionsServed != 5 {
		t.Fatalf("expected 5 served, got %d", snap.PredictionsServed)
	}
	if snap.DelayedPredicted != 3 {
		t.Fatalf("expected 3 delayed, got %d", snap.DelayedPredicted)
	}
	if snap.CacheHits != 2 {
		t.Fatalf("expected 2 cache hits, got %d", snap.CacheHits)
	}
	if snap.RejectedRequests != 1 || snap.Retrains != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastPrediction.IsZero() {
		t.Fatal("expected last prediction time to be set")
	}
}
