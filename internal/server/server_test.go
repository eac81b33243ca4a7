package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Defaults().Server
	cfg.BindAddress = "127.0.0.1:0"
	srv := NewServer(cfg, zap.NewNop())
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func dialObserver(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestObserverReceivesBroadcast(t *testing.T) {
	srv := newTestServer(t)
	conn := dialObserver(t, srv)

	require.Eventually(t, func() bool { return srv.ObserverCount() == 1 },
		time.Second, 10*time.Millisecond)

	srv.Broadcast(42, []byte(`{"v":1,"tick":42}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"v":1,"tick":42}`, string(frame))
}

func TestLateObserverStartsFromLatestFrame(t *testing.T) {
	srv := newTestServer(t)
	srv.Broadcast(7, []byte(`{"tick":7}`))

	conn := dialObserver(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"tick":7}`, string(frame))
}

func TestHealthReportsTickAndObservers(t *testing.T) {
	srv := newTestServer(t)
	srv.Broadcast(9, []byte(`{}`))

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status    string `json:"status"`
		Name      string `json:"name"`
		Tick      int64  `json:"tick"`
		Observers int    `json:"observers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "Mossvale", body.Name)
	require.Equal(t, int64(9), body.Tick)
	require.Zero(t, body.Observers)
}

func TestGoneObserverIsPruned(t *testing.T) {
	srv := newTestServer(t)
	conn := dialObserver(t, srv)

	require.Eventually(t, func() bool { return srv.ObserverCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return srv.ObserverCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}
