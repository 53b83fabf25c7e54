package repo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrelvcs/kestrel/internal/index"
	"github.com/kestrelvcs/kestrel/internal/objects"
)

// Commit builds a commit from the current staging index and advances
// HEAD/the current branch to it. It fails if message is empty or if the
// resulting tree is identical to the parent's (nothing to commit).
func (r *Repository) Commit(message string) (objects.Digest, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	ix, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	root, err := index.WriteTree(r.Objects, ix)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parentDigest, err := r.CurrentCommit()
	if err != nil {
		return "", err
	}

	var parents []objects.Digest
	if parentDigest != "" {
		parent, err := r.LoadCommit(parentDigest)
		if err != nil {
			return "", err
		}
		if parent.Tree == root {
			return "", ErrEmptyCommit
		}
		parents = []objects.Digest{parentDigest}
	}

	now := time.Now()
	sig := objects.Signature{Name: r.Identity.Name, Email: r.Identity.Email, When: now}
	commit := &objects.Commit{
		Tree:      root,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   message,
	}

	digest, err := r.Objects.StoreObject(commit)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if err := r.advanceHead(digest); err != nil {
		return "", err
	}

	slog.Info("created commit", "digest", digest.Short(), "message", message)
	return digest, nil
}

// advanceHead moves the current branch (or, if detached, HEAD itself) to digest.
func (r *Repository) advanceHead(digest objects.Digest) error {
	head, err := r.Refs.LoadHead()
	if err != nil {
		return err
	}
	if head.Symbolic {
		return r.Refs.SaveBranch(head.Branch, digest)
	}
	return r.Refs.SaveHeadDetached(digest)
}
