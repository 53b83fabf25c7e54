package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	dir := t.TempDir()
	r, err := repo.Init(dir)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return r
}

func commitOneFile(t *testing.T, r *repo.Repository) {
	t.Helper()
	path := filepath.Join(r.Root(), "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write a.txt: %v", err)
	}
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Commit("first"); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func testContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(context.Background())
}
