package repo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kestrelvcs/kestrel/internal/index"
)

// Checkout switches the working tree and index to branch. If HEAD already
// symbolically names branch, it is a no-op. The safety check runs before
// any mutation: any path present only in the target (not in the current
// index) that already exists, untracked, on disk aborts the checkout.
func (r *Repository) Checkout(branch string) error {
	if _, err := r.Refs.LoadBranch(branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}

	head, err := r.Refs.LoadHead()
	if err != nil {
		return err
	}
	if head.Symbolic && head.Branch == branch {
		return nil
	}

	targetCommit, err := r.Refs.LoadBranch(branch)
	if err != nil {
		return err
	}
	targetIndex, err := r.IndexAtCommit(targetCommit)
	if err != nil {
		return err
	}

	currentCommit, err := r.CurrentCommit()
	if err != nil {
		return err
	}
	currentIndex, err := r.IndexAtCommit(currentCommit)
	if err != nil {
		return err
	}

	classes := Diff(currentIndex, targetIndex)
	if err := r.ensureSafeToApply(classes); err != nil {
		return err
	}
	if err := r.applyIndex(currentIndex, targetIndex, classes); err != nil {
		return err
	}

	if err := r.SaveIndex(targetIndex); err != nil {
		return err
	}
	if err := r.Refs.SaveHeadSymbolic(branch); err != nil {
		return err
	}
	slog.Info("checked out branch", "branch", branch)
	return nil
}

// ensureSafeToApply fails if any RightOnly path already exists, untracked,
// on disk — it would otherwise be silently overwritten.
func (r *Repository) ensureSafeToApply(classes map[string]Classification) error {
	for path, class := range classes {
		if class != RightOnly {
			continue
		}
		abs := filepath.Join(r.root, filepath.FromSlash(path))
		if _, err := os.Stat(abs); err == nil {
			return fmt.Errorf("%w: %s", ErrUntrackedInTheWay, path)
		}
	}
	return nil
}

// applyIndex materializes the difference between currentIndex and
// targetIndex onto the working tree: writes happen before deletes.
func (r *Repository) applyIndex(currentIndex, targetIndex *index.Index, classes map[string]Classification) error {
	for path, class := range classes {
		if class != RightOnly && class != Modified {
			continue
		}
		digest, _ := targetIndex.Get(path)
		content, err := r.blobContent(digest)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		abs := filepath.Join(r.root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("checkout: create parent dirs for %s: %w", path, err)
		}
		if err := os.WriteFile(abs, content, 0o644); err != nil { //nolint:gosec // working tree file, not sensitive
			return fmt.Errorf("checkout: write %s: %w", path, err)
		}
	}

	for path, class := range classes {
		if class != LeftOnly {
			continue
		}
		abs := filepath.Join(r.root, filepath.FromSlash(path))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("checkout: remove %s: %w", path, err)
		}
		removeEmptyParents(r.root, filepath.Dir(abs))
	}

	return nil
}

// removeEmptyParents prunes now-empty directories up to (but not
// including) root, mirroring checkout's tidy-as-you-go deletion style.
func removeEmptyParents(root, dir string) {
	for {
		if dir == root || dir == "." || dir == string(filepath.Separator) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
