// Package server exposes the read-only observer feed. Observers connect over
// websocket and receive snapshot frames as the world ticks; nothing they send
// reaches the simulation.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/config"
)

// sessionOutSize bounds each observer's frame queue. At the default snapshot
// cadence this is several seconds of backlog before a client counts as slow.
const sessionOutSize = 16

// Server upgrades observer websockets and fans snapshot frames out to them.
// Broadcast is called from the daemon's tick goroutine; each session runs its
// own read and write goroutines.
type Server struct {
	name string
	log  *zap.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	mu       sync.Mutex
	sessions map[uint64]*session
	last     []byte // most recent frame, handed to fresh connections

	nextID   atomic.Uint64
	lastTick atomic.Int64
}

func NewServer(cfg config.ServerConfig, log *zap.Logger) *Server {
	s := &Server{
		name: cfg.Name,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // feed is read-only
		},
		sessions: make(map[uint64]*session),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.httpSrv = &http.Server{Addr: cfg.BindAddress, Handler: mux}
	return s
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("observer server stopped", zap.Error(err))
		}
	}()
	s.log.Info("observer server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Broadcast queues one snapshot frame to every observer and remembers it for
// late joiners. Observers that cannot keep up are dropped.
func (s *Server) Broadcast(tick int64, frame []byte) {
	s.lastTick.Store(tick)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = frame
	for id, sess := range s.sessions {
		if !sess.send(frame) {
			delete(s.sessions, id)
		}
	}
}

// ObserverCount reports connected observers.
func (s *Server) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown stops accepting connections and closes every observer. Websockets
// are hijacked connections, so the HTTP shutdown alone would leave them open.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	return err
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	id := s.nextID.Add(1)
	sess := newSession(id, conn, sessionOutSize, s.log)

	s.mu.Lock()
	s.sessions[id] = sess
	if s.last != nil {
		sess.send(s.last) // start the new observer from the latest frame
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.log.Info("observer connected",
		zap.Uint64("observer", id),
		zap.String("ip", r.RemoteAddr),
		zap.Int("observers", n))

	go sess.writeLoop()
	sess.readLoop() // returns when the peer goes away

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.log.Info("observer disconnected", zap.Uint64("observer", id))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"name":      s.name,
		"tick":      s.lastTick.Load(),
		"observers": s.ObserverCount(),
	})
}
