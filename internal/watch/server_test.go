package watch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testMux wires up the same routes Server.Serve registers, without
// starting the watcher goroutine or binding a real listener address.
func testMux(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func TestRenderReadmeAbsent(t *testing.T) {
	r := newTestRepo(t)
	s := NewServer(r, nil)
	html := s.renderReadme()
	if !strings.Contains(html, "no README.md") {
		t.Fatalf("expected placeholder, got %q", html)
	}
}

func TestRenderReadmeRendersMarkdown(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(filepath.Join(r.Root(), "README.md"), []byte("# Title\n\nbody"), 0o644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	s := NewServer(r, nil)
	html := s.renderReadme()
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Fatalf("expected rendered heading, got %q", html)
	}
}

func TestComputeDeltaReflectsStatus(t *testing.T) {
	r := newTestRepo(t)
	commitOneFile(t, r)

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewServer(r, func() time.Time { return fixed })

	delta, err := s.computeDelta()
	if err != nil {
		t.Fatalf("compute delta: %v", err)
	}
	if delta.Branch != "main" {
		t.Fatalf("branch = %q, want main", delta.Branch)
	}
	if delta.Timestamp != fixed.Unix() {
		t.Fatalf("timestamp = %d, want %d", delta.Timestamp, fixed.Unix())
	}
	if delta.Head == "" {
		t.Fatal("expected non-empty head digest")
	}
}

func TestHandleIndexServesHTML(t *testing.T) {
	r := newTestRepo(t)
	s := NewServer(r, nil)

	srv := httptest.NewServer(testMux(s))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHandleWebSocketSendsInitialDelta(t *testing.T) {
	r := newTestRepo(t)
	commitOneFile(t, r)
	s := NewServer(r, nil)

	srv := httptest.NewServer(testMux(s))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp %v)", err, resp)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read initial message: %v", err)
	}

	var delta StatusDelta
	if err := json.Unmarshal(message, &delta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if delta.Branch != "main" {
		t.Fatalf("branch = %q, want main", delta.Branch)
	}
}

func TestHandleWebSocketBroadcastsOnStatusChange(t *testing.T) {
	r := newTestRepo(t)
	commitOneFile(t, r)
	s := NewServer(r, nil)

	srv := httptest.NewServer(testMux(s))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read initial message: %v", err)
	}

	s.broadcastStatus()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast message: %v", err)
	}
	var delta StatusDelta
	if err := json.Unmarshal(message, &delta); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if delta.Branch != "main" {
		t.Fatalf("branch = %q, want main", delta.Branch)
	}
}
