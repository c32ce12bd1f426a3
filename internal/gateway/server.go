// Package gateway exposes the chat agent over HTTP and WebSocket.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kalibr1/cinequery/internal/agent"
	"github.com/kalibr1/cinequery/internal/config"
	"github.com/kalibr1/cinequery/internal/domain"
	"github.com/kalibr1/cinequery/internal/logging"
	"github.com/kalibr1/cinequery/internal/store"
	"github.com/kalibr1/cinequery/internal/version"
)

// Chatter processes one user utterance and returns the agent's reply.
type Chatter interface {
	Run(ctx context.Context, key domain.SessionKey, userText string) (*agent.TurnResult, error)
}

// StatsProvider reports dataset aggregates for the stats endpoint.
type StatsProvider interface {
	AggregateStats(ctx context.Context) (*store.Stats, error)
}

// turnTimeout bounds one chat turn end to end, tool rounds included.
const turnTimeout = 5 * time.Minute

// Server is the cinequery HTTP + WebSocket server.
type Server struct {
	cfg     config.GatewayConfig
	log     *logging.Logger
	chatter Chatter
	stats   StatsProvider

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a gateway server.
func New(cfg config.GatewayConfig, chatter Chatter, stats StatsProvider, log *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log.Sub("gateway"),
		chatter: chatter,
		stats:   stats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler builds the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.requireAuth(s.handleChat))
	mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))
	mux.HandleFunc("GET /ws", s.requireAuth(s.handleWebSocket))
	mux.HandleFunc("/", handleNotFound)

	return withMiddleware(mux, s.log)
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: turnTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", version.Version).
		Bool("authEnabled", s.cfg.AuthToken != "").
		Msg("gateway server ready")

	if s.cfg.AuthToken == "" {
		s.log.Warn().Msg("no auth token configured — the gateway accepts unauthenticated requests")
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
