package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnStageWindowSnapshot(t *testing.T) {
	w := NewTurnStageWindow(8)
	w.Observe("first_chunk", 500)
	w.Observe("first_chunk", 700)
	w.Observe("first_chunk", 900)
	w.Observe("first_chunk", -1)
	w.Indicate("turn_completed")
	w.Indicate("turn_completed")
	w.Indicate(" ")

	snap := w.Snapshot()
	assert.Equal(t, 8, snap.WindowSize)
	require.Len(t, snap.Stages, 1)

	s := snap.Stages[0]
	assert.Equal(t, "first_chunk", s.Stage)
	assert.Equal(t, 3, s.Samples)
	assert.Equal(t, 900.0, s.LastMS)
	assert.Equal(t, 700.0, s.AvgMS)
	assert.Equal(t, 700.0, s.P50MS)
	assert.Greater(t, s.P95MS, 700.0)
	assert.LessOrEqual(t, s.P95MS, 900.0)
	assert.Equal(t, 1200.0, s.TargetP95MS)

	require.Len(t, snap.Indicators, 1)
	assert.Equal(t, Indicator{Name: "turn_completed", Count: 2}, snap.Indicators[0])
}

func TestTurnStageWindowWrapsAround(t *testing.T) {
	w := NewTurnStageWindow(2)
	w.Observe("turn_total", 10)
	w.Observe("turn_total", 20)
	w.Observe("turn_total", 30)

	snap := w.Snapshot()
	require.Len(t, snap.Stages, 1)
	assert.Equal(t, 2, snap.Stages[0].Samples)
	assert.Equal(t, 25.0, snap.Stages[0].AvgMS)
	assert.Equal(t, 30.0, snap.Stages[0].LastMS)

	w.Reset()
	assert.Empty(t, w.Snapshot().Stages)
}

func TestMetricsRecordTurnsAndLatency(t *testing.T) {
	m := NewMetrics("nova_test", prometheus.NewRegistry())

	m.ObserveTurn("completed")
	m.ObserveTurn("cancelled")
	m.ObserveTurn("completed")
	m.ObserveFirstChunkLatency(300 * time.Millisecond)
	m.ObserveSpokenUnit("english")

	snap := m.LatencySnapshot()
	require.Len(t, snap.Stages, 1)
	assert.Equal(t, "first_chunk", snap.Stages[0].Stage)
	assert.Equal(t, []Indicator{
		{Name: "turn_cancelled", Count: 1},
		{Name: "turn_completed", Count: 2},
	}, snap.Indicators)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTurn("completed")
	m.ObserveChunk()
	m.ObserveSpeechStop()
	m.ObserveBackendError("transport")
	assert.Empty(t, m.LatencySnapshot().Stages)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel(" DEBUG ").String())
	assert.Equal(t, "info", ParseLevel("nonsense").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
}
