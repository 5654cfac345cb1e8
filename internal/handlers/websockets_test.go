package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWS_StreamsSnapshots(t *testing.T) {
	mon := &fakeMonitoring{snap: models.SystemSnapshot{Tick: 9, LuxAvailable: true}}
	mon.snap.Plants[0].MoisturePercent = 31

	srv := httptest.NewServer(newTestRouter(mon, &fakeEventLog{}))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws?interval=50ms")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg struct {
		Type string                `json:"type"`
		Data models.SystemSnapshot `json:"data"`
	}
	// initial snapshot arrives immediately
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "status" {
		t.Fatalf("envelope type %q", msg.Type)
	}
	if msg.Data.Tick != 9 || msg.Data.Plants[0].MoisturePercent != 31 {
		t.Fatalf("snapshot wrong: %+v", msg.Data)
	}

	// and again on the interval
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if msg.Data.Tick != 9 {
		t.Fatalf("second snapshot wrong: %+v", msg.Data)
	}
}

func TestWS_InvalidIntervalFallsBack(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&fakeMonitoring{}, &fakeEventLog{}))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws?interval=never")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "status" {
		t.Fatalf("envelope type %q", msg.Type)
	}
}
