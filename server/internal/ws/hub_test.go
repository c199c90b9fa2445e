package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/o2calc/o2calc/pkg/types"
	"github.com/o2calc/o2calc/server/internal/advisory"
	"github.com/o2calc/o2calc/server/internal/api"
	"github.com/o2calc/o2calc/server/internal/metrics"
	"github.com/o2calc/o2calc/server/internal/store"
	wsHub "github.com/o2calc/o2calc/server/internal/ws"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

type envelope struct {
	Event string          `json:"event"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func newService(t *testing.T, flows ...float64) *api.Service {
	t.Helper()
	svc := api.NewService(store.New(5*time.Minute, 100), advisory.New(nil), metrics.New())
	for _, f := range flows {
		if _, err := svc.Estimate(f); err != nil {
			t.Fatalf("seed estimate %v: %v", f, err)
		}
	}
	return svc
}

// startHub starts a test HTTP server with the hub as its handler.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// URL, the hub, and a cancel function.
func startHub(t *testing.T, svc *api.Service, interval time.Duration) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(svc, interval)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads messages until one with the given event type arrives.
func readEvent(t *testing.T, conn *websocket.Conn, event string) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage waiting for %q: %v", event, err)
		}
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("unmarshal: %v (raw: %s)", err, msg)
		}
		if env.Event == event {
			return env
		}
	}
}

func waitForCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Count: got %d, want %d", hub.Count(), want)
}

// --- connect ----------------------------------------------------------------

func TestHub_SendsHistoryOnConnect(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t, 2, 8), time.Hour)
	conn := dial(t, wsURL)

	env := readEvent(t, conn, "history")
	var hist types.HistoryResponse
	if err := json.Unmarshal(env.Data, &hist); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(hist.Entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(hist.Entries))
	}
	seen := map[float64]bool{}
	for _, e := range hist.Entries {
		seen[e.FlowRate] = true
	}
	if !seen[2] || !seen[8] {
		t.Errorf("entries: got %+v, want flows 2 and 8", hist.Entries)
	}
}

func TestHub_Count(t *testing.T) {
	wsURL, hub, _ := startHub(t, newService(t), time.Hour)

	c1 := dial(t, wsURL)
	c2 := dial(t, wsURL)
	waitForCount(t, hub, 2)

	c1.Close()
	waitForCount(t, hub, 1)
	c2.Close()
	waitForCount(t, hub, 0)
}

// --- requests ---------------------------------------------------------------

func TestHub_EstimateRequest(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t), time.Hour)
	conn := dial(t, wsURL)

	if err := conn.WriteJSON(map[string]interface{}{"id": "req-1", "flow_rate": 4}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	env := readEvent(t, conn, "estimate")
	if env.ID != "req-1" {
		t.Errorf("id: got %q, want req-1", env.ID)
	}
	var resp types.EstimateResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("unmarshal estimate: %v", err)
	}
	if resp.O2Pct != 37 {
		t.Errorf("o2_pct: got %v, want 37", resp.O2Pct)
	}
	if resp.DeviceSlug != "nasal_cannula" {
		t.Errorf("device_slug: got %q, want nasal_cannula", resp.DeviceSlug)
	}
}

func TestHub_EstimateRequestAssignsID(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t), time.Hour)
	conn := dial(t, wsURL)

	if err := conn.WriteJSON(map[string]interface{}{"flow_rate": 0}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	env := readEvent(t, conn, "estimate")
	if env.ID == "" {
		t.Error("expected a generated id, got empty string")
	}
}

func TestHub_EstimateRequestErrors(t *testing.T) {
	cases := map[string]string{
		"negative":   `{"id":"x","flow_rate":-1}`,
		"above max":  `{"id":"x","flow_rate":51}`,
		"missing":    `{"id":"x"}`,
		"not json":   `flow=4`,
		"wrong type": `{"id":"x","flow_rate":"four"}`,
	}
	wsURL, _, _ := startHub(t, newService(t), time.Hour)
	conn := dial(t, wsURL)

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			env := readEvent(t, conn, "error")
			if env.Error == "" {
				t.Error("expected error text, got empty string")
			}
		})
	}
}

func TestHub_RequestRecordsHistory(t *testing.T) {
	svc := newService(t)
	wsURL, _, _ := startHub(t, svc, time.Hour)
	conn := dial(t, wsURL)

	if err := conn.WriteJSON(map[string]interface{}{"id": "a", "flow_rate": 10}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readEvent(t, conn, "estimate")

	if got := len(svc.History().Entries); got != 1 {
		t.Errorf("history entries: got %d, want 1", got)
	}
}

// --- broadcast --------------------------------------------------------------

func TestHub_BroadcastsHistory(t *testing.T) {
	svc := newService(t)
	wsURL, _, _ := startHub(t, svc, testInterval)

	c1 := dial(t, wsURL)
	c2 := dial(t, wsURL)
	readEvent(t, c1, "history")
	readEvent(t, c2, "history")

	if _, err := svc.Estimate(6); err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	for i, conn := range []*websocket.Conn{c1, c2} {
		found := false
		for !found {
			env := readEvent(t, conn, "history")
			var hist types.HistoryResponse
			if err := json.Unmarshal(env.Data, &hist); err != nil {
				t.Fatalf("client %d: unmarshal: %v", i, err)
			}
			found = len(hist.Entries) == 1
		}
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	wsURL, hub, cancel := startHub(t, newService(t), time.Hour)
	conn := dial(t, wsURL)
	readEvent(t, conn, "history")
	waitForCount(t, hub, 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	waitForCount(t, hub, 0)
}
