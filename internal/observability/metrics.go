package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the client and gateway.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ActiveSessions    prometheus.Gauge
	SessionEvents     *prometheus.CounterVec
	WSMessages        *prometheus.CounterVec
	Turns             *prometheus.CounterVec
	StreamChunks      prometheus.Counter
	SpokenUnits       *prometheus.CounterVec
	SpeechStops       prometheus.Counter
	BackendErrors     *prometheus.CounterVec
	FirstChunkLatency prometheus.Histogram

	window *TurnStageWindow
}

// NewMetrics registers instruments on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open websocket chat sessions.",
		}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns by terminal state.",
		}, []string{"outcome"}),
		StreamChunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_chunks_total",
			Help:      "Decoded response chunks applied to a live turn.",
		}),
		SpokenUnits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spoken_units_total",
			Help:      "Speech units queued by language tag.",
		}, []string{"lang"}),
		SpeechStops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_stops_total",
			Help:      "Times queued and in-flight speech was cancelled.",
		}),
		BackendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Backend failures by error kind.",
		}, []string{"kind"}),
		FirstChunkLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "first_chunk_latency_ms",
			Help:      "Latency from send to first decoded response chunk in milliseconds.",
			Buckets:   []float64{100, 200, 300, 500, 700, 900, 1200, 2000, 4000},
		}),
		window: NewTurnStageWindow(256),
	}
}

func (m *Metrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(outcome).Inc()
	m.window.Indicate("turn_" + outcome)
}

func (m *Metrics) ObserveChunk() {
	if m == nil {
		return
	}
	m.StreamChunks.Inc()
}

func (m *Metrics) ObserveFirstChunkLatency(d time.Duration) {
	if m == nil {
		return
	}
	ms := float64(d.Milliseconds())
	m.FirstChunkLatency.Observe(ms)
	m.window.Observe("first_chunk", ms)
}

func (m *Metrics) ObserveTurnDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.window.Observe("turn_total", float64(d.Milliseconds()))
}

// ObserveFirstSpeech records send-to-first-queued-unit latency.
func (m *Metrics) ObserveFirstSpeech(d time.Duration) {
	if m == nil {
		return
	}
	m.window.Observe("first_speech", float64(d.Milliseconds()))
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) ObserveSessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) ObserveSpokenUnit(lang string) {
	if m == nil {
		return
	}
	m.SpokenUnits.WithLabelValues(lang).Inc()
}

func (m *Metrics) ObserveSpeechStop() {
	if m == nil {
		return
	}
	m.SpeechStops.Inc()
}

func (m *Metrics) ObserveBackendError(kind string) {
	if m == nil {
		return
	}
	m.BackendErrors.WithLabelValues(kind).Inc()
}

// LatencySnapshot summarizes the recent latency window.
func (m *Metrics) LatencySnapshot() TurnStageSnapshot {
	if m == nil {
		return NewTurnStageWindow(1).Snapshot()
	}
	return m.window.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
