package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMergeFastForward(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	commitFile(t, r, dir, "a.txt", "x", "on feature")
	featureTip, err := r.CurrentCommit()
	if err != nil {
		t.Fatalf("current commit: %v", err)
	}

	if err := r.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}

	outcome, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !outcome.FastForward {
		t.Fatalf("expected fast-forward outcome, got %+v", outcome)
	}
	if outcome.Commit != featureTip {
		t.Fatalf("expected fast-forward to %s, got %s", featureTip, outcome.Commit)
	}

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("read a.txt: %v", err)
	}
	if string(content) != "x" {
		t.Fatalf("a.txt = %q, want %q", content, "x")
	}
}

func TestMergeNoOpWhenAlreadyAncestor(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	// feature stays at the first commit while main advances past it, so
	// LCA(main, feature) is feature's tip (LCA == M) and merging feature
	// into main is a no-op.
	commitFile(t, r, dir, "b.txt", "only on main", "second")

	outcome, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !outcome.NoOp {
		t.Fatalf("expected no-op outcome, got %+v", outcome)
	}
}

func TestMergeWithSelfFails(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	if _, err := r.Merge("main"); !errors.Is(err, ErrMergeWithSelf) {
		t.Fatalf("expected ErrMergeWithSelf, got %v", err)
	}
}

func TestMergeRequiresCleanWorkingTree(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")
	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	commitFile(t, r, dir, "c.txt", "2", "on feature")
	if err := r.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	commitFile(t, r, dir, "b.txt", "1", "on main")

	writeFile(t, dir, "a.txt", "dirty")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := r.Merge("feature"); !errors.Is(err, ErrDirtyWorkingTree) {
		t.Fatalf("expected ErrDirtyWorkingTree, got %v", err)
	}
}

func TestMergeDivergentClean(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	commitFile(t, r, dir, "c.txt", "2", "add c on feature")

	if err := r.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	commitFile(t, r, dir, "b.txt", "1", "add b on main")

	outcome, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if outcome.FastForward || outcome.NoOp {
		t.Fatalf("expected a true merge commit, got %+v", outcome)
	}
	if len(outcome.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", outcome.Conflicts)
	}

	commit, err := r.LoadCommit(outcome.Commit)
	if err != nil {
		t.Fatalf("load merge commit: %v", err)
	}
	if len(commit.Parents) != 2 {
		t.Fatalf("expected 2 parents, got %d", len(commit.Parents))
	}

	for rel, want := range map[string]string{"a.txt": "hello", "b.txt": "1", "c.txt": "2"} {
		content, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(content) != want {
			t.Fatalf("%s = %q, want %q", rel, content, want)
		}
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	for _, rel := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, ok := ix.Get(rel); !ok {
			t.Fatalf("expected %s in merged index", rel)
		}
	}
}

func TestMergeConflictingEdits(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	commitFile(t, r, dir, "a.txt", "F", "feature edit")

	if err := r.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	commitFile(t, r, dir, "a.txt", "D", "main edit")

	outcome, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(outcome.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %v", len(outcome.Conflicts), outcome.Conflicts)
	}
	if outcome.Conflicts[0].Path != "a.txt" {
		t.Fatalf("conflict path = %q, want a.txt", outcome.Conflicts[0].Path)
	}

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("read a.txt: %v", err)
	}
	want := "<<<<<<< HEAD\nD\n=======\nF\n>>>>>>>\n"
	if string(content) != want {
		t.Fatalf("conflict content = %q, want %q", content, want)
	}
}

// TestMergeClassificationMatrix exercises the per-path outcomes of the
// three-way merge table against a single divergent merge: files named
// after the D_C/D_M pair they exercise. The added-on-both-sides and
// delete-versus-modify rows are not covered here.
func TestMergeClassificationMatrix(t *testing.T) {
	r, dir := initRepo(t)

	// Base commit: one file per table row that needs a base-side value,
	// plus the files that only appear on one side.
	writeFile(t, dir, "unmod-mod.txt", "base")      // D_C=Unmodified, D_M=Modified -> take branch
	writeFile(t, dir, "mod-unmod.txt", "base")      // D_C=Modified, D_M=Unmodified -> keep current
	writeFile(t, dir, "unmod-del.txt", "base")      // D_C=Unmodified, D_M=LeftOnly -> remove
	writeFile(t, dir, "del-unmod.txt", "base")      // D_C=LeftOnly, D_M=Unmodified -> keep absent
	writeFile(t, dir, "del-del.txt", "base")        // D_C=LeftOnly, D_M=LeftOnly -> keep absent
	writeFile(t, dir, "mod-mod-same.txt", "base")   // both modify identically -> keep
	writeFile(t, dir, "mod-mod-diff.txt", "base")   // both modify differently -> conflict
	if err := r.Add("unmod-mod.txt", "mod-unmod.txt", "unmod-del.txt", "del-unmod.txt",
		"del-del.txt", "mod-mod-same.txt", "mod-mod-diff.txt"); err != nil {
		t.Fatalf("add base files: %v", err)
	}
	if _, err := r.Commit("base"); err != nil {
		t.Fatalf("commit base: %v", err)
	}

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}

	// Feature-side (M) changes.
	writeFile(t, dir, "unmod-mod.txt", "branch-edit")
	writeFile(t, dir, "mod-mod-same.txt", "both-agree")
	writeFile(t, dir, "mod-mod-diff.txt", "branch-version")
	if err := r.Rm("unmod-del.txt"); err != nil {
		t.Fatalf("rm unmod-del.txt: %v", err)
	}
	if err := r.Rm("del-del.txt"); err != nil {
		t.Fatalf("rm del-del.txt: %v", err)
	}
	writeFile(t, dir, "right-only-branch.txt", "new on feature") // RightOnly only in M -> take branch
	if err := r.Add("unmod-mod.txt", "mod-mod-same.txt", "mod-mod-diff.txt", "right-only-branch.txt"); err != nil {
		t.Fatalf("add feature changes: %v", err)
	}
	if _, err := r.Commit("feature changes"); err != nil {
		t.Fatalf("commit feature changes: %v", err)
	}

	if err := r.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}

	// Current-side (C) changes.
	writeFile(t, dir, "mod-unmod.txt", "current-edit")
	writeFile(t, dir, "mod-mod-same.txt", "both-agree")
	writeFile(t, dir, "mod-mod-diff.txt", "current-version")
	if err := r.Rm("del-unmod.txt"); err != nil {
		t.Fatalf("rm del-unmod.txt: %v", err)
	}
	if err := r.Rm("del-del.txt"); err != nil {
		t.Fatalf("rm del-del.txt: %v", err)
	}
	writeFile(t, dir, "right-only-current.txt", "new on main") // RightOnly only in C -> keep current
	if err := r.Add("mod-unmod.txt", "mod-mod-same.txt", "mod-mod-diff.txt", "right-only-current.txt"); err != nil {
		t.Fatalf("add current changes: %v", err)
	}
	if _, err := r.Commit("current changes"); err != nil {
		t.Fatalf("commit current changes: %v", err)
	}

	outcome, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if outcome.FastForward || outcome.NoOp {
		t.Fatalf("expected a true merge, got %+v", outcome)
	}

	conflicted := make(map[string]bool)
	for _, c := range outcome.Conflicts {
		conflicted[c.Path] = true
	}
	if !conflicted["mod-mod-diff.txt"] {
		t.Fatalf("expected mod-mod-diff.txt to conflict, got conflicts %v", outcome.Conflicts)
	}
	if len(outcome.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %v", outcome.Conflicts)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("load index: %v", err)
	}

	mustHave := func(path, want string) {
		t.Helper()
		content, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(content) != want {
			t.Fatalf("%s = %q, want %q", path, content, want)
		}
		if _, ok := ix.Get(path); !ok {
			t.Fatalf("expected %s tracked in merged index", path)
		}
	}
	mustAbsent := func(path string) {
		t.Helper()
		if _, err := os.Stat(filepath.Join(dir, path)); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be absent from working tree", path)
		}
		if _, ok := ix.Get(path); ok {
			t.Fatalf("expected %s absent from merged index", path)
		}
	}

	mustHave("unmod-mod.txt", "branch-edit")          // Unmodified/Modified -> take branch
	mustHave("mod-unmod.txt", "current-edit")          // Modified/Unmodified -> keep current
	mustAbsent("unmod-del.txt")                        // Unmodified/LeftOnly -> remove
	mustAbsent("del-unmod.txt")                        // LeftOnly/Unmodified -> keep absent
	mustAbsent("del-del.txt")                          // LeftOnly/LeftOnly -> keep absent
	mustHave("mod-mod-same.txt", "both-agree")          // Modified/Modified equal -> keep
	mustHave("right-only-current.txt", "new on main")  // RightOnly only in C -> keep current
	mustHave("right-only-branch.txt", "new on feature") // RightOnly only in M -> take branch

	conflictContent, err := os.ReadFile(filepath.Join(dir, "mod-mod-diff.txt"))
	if err != nil {
		t.Fatalf("read mod-mod-diff.txt: %v", err)
	}
	if !strings.HasPrefix(string(conflictContent), "<<<<<<< HEAD\ncurrent-version\n=======\nbranch-version\n>>>>>>>") {
		t.Fatalf("unexpected conflict content: %q", conflictContent)
	}
}

func TestMergeRequiresBothSidesToHaveCommits(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", "hello", "first")

	// Create the branch file directly with no commit recorded on it.
	if err := r.Refs.CreateBranch("feature", ""); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if _, err := r.Merge("feature"); !errors.Is(err, ErrNoCommits) {
		t.Fatalf("expected ErrNoCommits, got %v", err)
	}
}
