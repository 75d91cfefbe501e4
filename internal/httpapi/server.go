// Package httpapi serves the chat engine to remote clients over HTTP and
// websockets.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/config"
	"github.com/ialtaf14/Nova-AI/internal/observability"
	"github.com/ialtaf14/Nova-AI/internal/protocol"
	"github.com/ialtaf14/Nova-AI/internal/session"
	"github.com/ialtaf14/Nova-AI/internal/speech"
	"github.com/ialtaf14/Nova-AI/internal/transcript"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 120 * time.Second
	wsPingInterval = 30 * time.Second
)

// BackendFactory builds a fresh backend per websocket session so history is
// not shared between conversations.
type BackendFactory func() (backend.Backend, error)

type Deps struct {
	Sessions *session.Manager
	Backends BackendFactory
	// Store may be nil; transcripts are then not kept.
	Store   transcript.Store
	Metrics *observability.Metrics
	// Voices is the server-side synthesizer listed by /v1/voices. May be nil.
	Voices speech.Synthesizer
	Logger zerolog.Logger
}

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	backends BackendFactory
	store    transcript.Store
	metrics  *observability.Metrics
	voices   speech.Synthesizer
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	static   http.Handler

	liveMu sync.Mutex
	live   map[string]context.CancelFunc
}

func New(cfg config.Config, deps Deps) *Server {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewManager(cfg.SessionInactivityTimeout)
	}
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		backends: deps.Backends,
		store:    deps.Store,
		metrics:  deps.Metrics,
		voices:   deps.Voices,
		logger:   deps.Logger.With().Str("component", "httpapi").Logger(),
		static:   newStaticHandler(),
		live:     make(map[string]context.CancelFunc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Get("/ws", s.handleSessionWS)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/end", s.handleEndSession)
		r.Get("/{id}/transcript", s.handleTranscript)
	})
	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Get("/v1/voices", s.handleListVoices)
	r.Get("/v1/models", s.handleListModels)
	r.Get("/v1/ui/settings", s.handleUISettings)

	return r
}

// CloseSession drops the live websocket of a session, if any.
func (s *Server) CloseSession(sessionID string) {
	s.liveMu.Lock()
	cancel, ok := s.live[sessionID]
	delete(s.live, sessionID)
	s.liveMu.Unlock()
	if ok {
		cancel()
	}
}

// CloseAll drops every live websocket. http.Server.Shutdown does not reach
// hijacked connections.
func (s *Server) CloseAll() {
	s.liveMu.Lock()
	live := s.live
	s.live = make(map[string]context.CancelFunc)
	s.liveMu.Unlock()
	for _, cancel := range live {
		cancel()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"backend_mode": s.cfg.BackendMode,
		"store_mode":   s.storeMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.backends == nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "backend not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
		"store_mode":      s.storeMode(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sess := s.sessions.Create(req)
	s.metrics.SetActiveSessions(s.sessions.ActiveCount())
	s.metrics.ObserveSessionEvent("created")

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		ConversationID:  sess.ConversationID,
		Status:          sess.Status,
		Cloud:           sess.Cloud,
		Muted:           sess.Muted,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.sessions.InactivityTimeout().Milliseconds(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.CloseSession(id)
	s.metrics.SetActiveSessions(s.sessions.ActiveCount())
	s.metrics.ObserveSessionEvent("ended")
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}
	records := []transcript.Record{}
	if s.store != nil {
		got, err := s.store.Recent(r.Context(), sess.ConversationID, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "transcript_unavailable", err.Error())
			return
		}
		if got != nil {
			records = got
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": sess.ConversationID,
		"records":         records,
	})
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if s.backends == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "backend not configured")
		return
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	if sess.Status != session.StatusActive {
		respondError(w, http.StatusGone, "session_ended", "session has ended")
		return
	}
	be, err := s.backends()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "backend_unavailable", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ObserveSessionEvent("ws_connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	s.CloseSession(sess.ID)
	s.liveMu.Lock()
	s.live[sess.ID] = cancel
	s.liveMu.Unlock()
	defer func() {
		s.liveMu.Lock()
		delete(s.live, sess.ID)
		s.liveMu.Unlock()
	}()

	inbound := make(chan any, 64)
	outbound := make(chan any, 256)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		s.runConnection(ctx, sess, be, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close()
		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					cancel()
					return
				}
			case msg := <-outbound:
				data, err := protocol.Encode(msg)
				if err != nil {
					s.logger.Error().Err(err).Msg("encode outbound message")
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					s.metrics.ObserveSessionEvent("ws_write_failed")
					cancel()
					return
				}
				if t, ok := protocol.TypeOf(msg); ok {
					s.metrics.ObserveWSMessage("outbound", string(t))
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			errEvent := protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Retryable: false,
				Detail:    err.Error(),
			}
			select {
			case outbound <- errEvent:
			default:
				// Writes stay single-threaded; drop if the queue is saturated.
				s.metrics.ObserveSessionEvent("outbound_drop_full")
			}
			continue
		}

		if t, ok := protocol.TypeOf(parsed); ok {
			s.metrics.ObserveWSMessage("inbound", string(t))
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	s.metrics.ObserveSessionEvent("ws_disconnected")
}

func (s *Server) storeMode() string {
	switch s.store.(type) {
	case nil:
		return "disabled"
	case *transcript.PostgresStore:
		return "postgres"
	default:
		return "in-memory"
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) || strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
