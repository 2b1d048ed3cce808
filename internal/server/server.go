package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

// Server serves one blackjack session per WebSocket connection
type Server struct {
	config      *Config
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	clock       quartz.Clock
	seed        *int64
	gameOpts    []game.Option
	stats       *StatsMonitor
	monitor     RoundMonitor
	httpServer  *http.Server
	closed      bool
	mu          sync.RWMutex
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock used to pace transitions
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithSeed makes every session shuffle from the same seed
func WithSeed(seed int64) Option {
	return func(s *Server) {
		s.seed = &seed
	}
}

// WithGameOptions adds options to every game the server creates
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Server) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// WithMonitor adds a monitor that is told about every session and settled
// round, alongside the server's own statistics.
func WithMonitor(monitor RoundMonitor) Option {
	return func(s *Server) {
		s.monitor = NewMultiRoundMonitor(s.monitor, monitor)
	}
}

// NewServer creates a new WebSocket server
func NewServer(config *Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
		clock:       quartz.NewReal(),
	}
	s.stats = NewStatsMonitor(s.logger)
	s.monitor = s.stats
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving /ws, /health and /stats
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/stats", s.stats)
	return mux
}

// Start listens on the configured address until Shutdown is called. It
// returns at once if Shutdown has already been called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every open session
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Stats returns the statistics collected over all sessions
func (s *Server) Stats() StatsSummary {
	return s.stats.Summary()
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket upgrades the request and starts a new session on it
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger)
	client.session = s.newSession(client)

	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", client.session.ID(), "total", total)

	client.Start()
	_ = client.session.SendState()

	go func() {
		<-client.Done()
		client.session.Stop()
		s.monitor.OnSessionEnd(client.session.ID())

		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "session", client.session.ID(), "total", total)
	}()
}

func (s *Server) newSession(client *Connection) *Session {
	seed, rng := randutil.Resolve(s.seed)
	opts := append([]game.Option{game.WithLogger(s.logger)}, s.gameOpts...)
	g := game.New(rng, opts...)
	pacer := game.NewPacer(s.clock, s.config.DealDelay(), s.config.AnimationTimeout())

	session := NewSession(g, pacer, client.SendMessage, s.logger)
	session.seed = seed
	session.monitor = s.monitor
	s.monitor.OnSessionStart(session.ID(), seed)
	session.logger.Debug("Session created", "seed", seed)
	return session
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
