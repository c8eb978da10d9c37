package http

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"flightdelay/ml"
)

// ModelInfo describes the currently serving model.
type ModelInfo struct {
	TrainedAt  time.Time `json:"trained_at"`
	Rows       int       `json:"rows"`
	DelayRatio float64   `json:"delay_ratio"`
	Features   []string  `json:"features"`
}

// ModelHolder is the single shared reference to the trained classifier. The
// classifier itself does no locking; this holder serializes model swaps
// against concurrent predictions, which is the discipline the core requires.
// Scored triples are memoized in an LRU cache since the input space is tiny;
// the cache is purged on every swap so it can never serve a stale model.
type ModelHolder struct {
	mu        sync.RWMutex
	clf       *ml.DelayClassifier
	operators map[string]bool
	info      ModelInfo

	cache *lru.Cache[string, int]
}

// NewModelHolder returns a holder around an untrained classifier.
func NewModelHolder(cacheSize int) (*ModelHolder, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, int](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ModelHolder{
		clf:       ml.NewDelayClassifier(),
		operators: make(map[string]bool),
		cache:     cache,
	}, nil
}

// Swap replaces the serving model, catalog and metadata wholesale and drops
// all cached predictions.
func (h *ModelHolder) Swap(clf *ml.DelayClassifier, operators []string, info ModelInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clf = clf
	h.operators = make(map[string]bool, len(operators))
	for _, op := range operators {
		h.operators[op] = true
	}
	h.info = info
	h.cache.Purge()
}

// ValidOperator reports whether the operator was seen during training.
func (h *ModelHolder) ValidOperator(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.operators[name]
}

// Info returns the serving model's metadata.
func (h *ModelHolder) Info() ModelInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info
}

// Trained reports whether a fitted model is serving.
func (h *ModelHolder) Trained() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clf.Trained()
}

// Predict scores a batch of flights, serving repeated triples from the cache.
// Returns one 0/1 label per flight in input order plus the cache hit count.
func (h *ModelHolder) Predict(flights []Flight) ([]int, int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	labels := make([]int, len(flights))
	misses := make([]int, 0, len(flights))
	hits := 0
	for i, f := range flights {
		if label, ok := h.cache.Get(cacheKey(f)); ok {
			labels[i] = label
			hits++
			continue
		}
		misses = append(misses, i)
	}
	if len(misses) == 0 {
		return labels, hits, nil
	}

	rows := make([][]string, len(misses))
	for i, idx := range misses {
		f := flights[idx]
		rows[i] = []string{f.Opera, f.TipoVuelo, strconv.Itoa(f.Mes)}
	}
	frame, err := ml.NewFrame([]string{ml.ColOperator, ml.ColFlightType, ml.ColMonth}, rows)
	if err != nil {
		return nil, 0, fmt.Errorf("build frame: %w", err)
	}
	features, err := ml.EncodeFeatures(frame)
	if err != nil {
		return nil, 0, err
	}

	predicted := h.clf.Predict(features)
	for i, idx := range misses {
		labels[idx] = predicted[i]
		h.cache.Add(cacheKey(flights[idx]), predicted[i])
	}
	return labels, hits, nil
}

func cacheKey(f Flight) string {
	return f.Opera + "|" + f.TipoVuelo + "|" + strconv.Itoa(f.Mes)
}
