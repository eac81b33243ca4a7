package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	readLimit  = 512 // observers only ever send control frames
)

// session is one connected observer. Frames flow one way, server to client;
// the read loop exists to service pongs and notice disconnects.
type session struct {
	id   uint64
	conn *websocket.Conn
	out  chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once

	log *zap.Logger
}

func newSession(id uint64, conn *websocket.Conn, outSize int, log *zap.Logger) *session {
	return &session{
		id:      id,
		conn:    conn,
		out:     make(chan []byte, outSize),
		closeCh: make(chan struct{}),
		log:     log.With(zap.Uint64("observer", id)),
	}
}

// send queues a frame without blocking. A full queue means the client is not
// keeping up with the broadcast rate; drop it rather than stall the tick loop.
func (s *session) send(frame []byte) bool {
	select {
	case s.out <- frame:
		return true
	case <-s.closeCh:
		return false
	default:
		s.log.Warn("observer too slow, dropping")
		s.close()
		return false
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.conn.Close()
	})
}

// writeLoop ships queued frames and keeps the connection alive with pings.
func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case frame := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// readLoop discards everything the peer sends. There is no input path into
// the simulation; the loop refreshes deadlines and detects closed peers.
func (s *session) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
