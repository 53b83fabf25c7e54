package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

// StatusDelta is the JSON payload pushed to dashboard clients whenever the
// repository's status changes.
type StatusDelta struct {
	Branch    string   `json:"branch"`
	Head      string   `json:"head"`
	Staged    []string `json:"staged"`
	Unstaged  []string `json:"unstaged"`
	Untracked []string `json:"untracked"`
	Timestamp int64    `json:"timestamp"`
}

// Server is a read-only HTTP+WebSocket dashboard over a single repository.
type Server struct {
	repository *repo.Repository
	hub        *hub
	logger     *slog.Logger
	now        func() time.Time
}

// NewServer builds a dashboard server for repository. now defaults to
// time.Now if nil (tests may override it for determinism).
func NewServer(repository *repo.Repository, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{repository: repository, hub: newHub(), logger: slog.Default(), now: now}
}

// Serve starts the HTTP server on addr and the repository watcher, running
// until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	watcher := NewWatcher(s.repository, s.broadcastStatus)

	errCh := make(chan error, 1)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watcher: %w", err)
		}
	}()
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) computeDelta() (*StatusDelta, error) {
	status, err := s.repository.ComputeStatus()
	if err != nil {
		return nil, err
	}
	branch, err := s.repository.CurrentBranch()
	if err != nil {
		return nil, err
	}
	head, err := s.repository.CurrentCommit()
	if err != nil {
		return nil, err
	}

	delta := &StatusDelta{Branch: branch, Head: head.String(), Timestamp: s.now().Unix()}
	for p := range status.Staged {
		delta.Staged = append(delta.Staged, p)
	}
	for p := range status.Unstaged {
		delta.Unstaged = append(delta.Unstaged, p)
	}
	delta.Untracked = append(delta.Untracked, status.Untracked...)
	return delta, nil
}

func (s *Server) broadcastStatus() {
	delta, err := s.computeDelta()
	if err != nil {
		s.logger.Warn("failed to compute status delta", "err", err)
		return
	}
	payload, err := json.Marshal(delta)
	if err != nil {
		return
	}
	s.hub.broadcast(payload)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	delta, err := s.computeDelta()
	if err != nil {
		http.Error(w, "failed to compute status", http.StatusInternalServerError)
		return
	}
	initial, _ := json.Marshal(delta)
	s.hub.handleWebSocket(w, r, initial)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>kestrel dashboard</title></head>
<body>
<h1>Repository dashboard</h1>
<div id="readme">%s</div>
<pre id="status"></pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => { document.getElementById("status").textContent = ev.data; };
</script>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	readmeHTML := s.renderReadme()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPage, readmeHTML)
}

// renderReadme reads the repository's root README.md, if present, and
// renders it to HTML with goldmark. Returns a placeholder when absent.
func (s *Server) renderReadme() string {
	path := filepath.Join(s.repository.Root(), "README.md")
	content, err := os.ReadFile(path) //nolint:gosec // fixed filename under the repository root
	if err != nil {
		return "<p><em>no README.md in this repository</em></p>"
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(content, &buf); err != nil {
		return "<p><em>failed to render README.md</em></p>"
	}
	return buf.String()
}
