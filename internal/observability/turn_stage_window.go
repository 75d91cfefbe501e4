package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// StageStats summarizes one latency stage over the window.
type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type Indicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TurnStageSnapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	WindowSize  int          `json:"window_size"`
	Stages      []StageStats `json:"stages"`
	Indicators  []Indicator  `json:"indicators,omitempty"`
}

// TurnStageWindow keeps the most recent samples per stage in fixed-size rings.
type TurnStageWindow struct {
	mu         sync.RWMutex
	size       int
	rings      map[string]*sampleRing
	indicators map[string]int
}

type sampleRing struct {
	values []float64
	next   int
	full   bool
	last   float64
}

func NewTurnStageWindow(size int) *TurnStageWindow {
	if size <= 0 {
		size = 256
	}
	return &TurnStageWindow{
		size:       size,
		rings:      make(map[string]*sampleRing),
		indicators: make(map[string]int),
	}
}

func (w *TurnStageWindow) Observe(stage string, ms float64) {
	if w == nil || stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ring, ok := w.rings[stage]
	if !ok {
		ring = &sampleRing{values: make([]float64, w.size)}
		w.rings[stage] = ring
	}
	ring.push(ms)
}

// Indicate counts an occurrence of a named event such as a turn outcome.
func (w *TurnStageWindow) Indicate(name string) {
	name = strings.TrimSpace(name)
	if w == nil || name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indicators[name]++
}

func (w *TurnStageWindow) Snapshot() TurnStageSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := TurnStageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageStats, 0, len(w.rings)),
	}
	for _, stage := range sortedKeys(w.rings) {
		if stats, ok := w.rings[stage].stats(stage); ok {
			snap.Stages = append(snap.Stages, stats)
		}
	}
	for _, name := range sortedKeys(w.indicators) {
		snap.Indicators = append(snap.Indicators, Indicator{Name: name, Count: w.indicators[name]})
	}
	return snap
}

func (w *TurnStageWindow) Reset() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rings = make(map[string]*sampleRing)
	w.indicators = make(map[string]int)
}

func (r *sampleRing) push(v float64) {
	r.values[r.next] = v
	r.last = v
	r.next = (r.next + 1) % len(r.values)
	if r.next == 0 {
		r.full = true
	}
}

func (r *sampleRing) stats(stage string) (StageStats, bool) {
	n := r.next
	if r.full {
		n = len(r.values)
	}
	if n == 0 {
		return StageStats{}, false
	}
	sorted := append([]float64(nil), r.values[:n]...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return StageStats{
		Stage:       stage,
		Samples:     n,
		LastMS:      round2(r.last),
		AvgMS:       round2(sum / float64(n)),
		P50MS:       round2(quantile(sorted, 0.50)),
		P95MS:       round2(quantile(sorted, 0.95)),
		TargetP95MS: stageTargets[stage],
	}, true
}

var stageTargets = map[string]float64{
	"first_chunk":  1200,
	"first_speech": 1800,
	"turn_total":   8000,
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
