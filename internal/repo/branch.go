package repo

import (
	"fmt"

	"github.com/kestrelvcs/kestrel/internal/objects"
)

// CreateBranch creates a new branch pointing at the current commit (or
// "no commit yet" if HEAD has none).
func (r *Repository) CreateBranch(name string) error {
	commit, err := r.CurrentCommit()
	if err != nil {
		return err
	}
	return r.Refs.CreateBranch(name, commit)
}

// DeleteBranch removes a branch, refusing to delete the one currently checked out.
func (r *Repository) DeleteBranch(name string) error {
	head, err := r.Refs.LoadHead()
	if err != nil {
		return err
	}
	if head.Symbolic && head.Branch == name {
		return fmt.Errorf("%w: %s", ErrActiveBranchDelete, name)
	}
	return r.Refs.RemoveBranch(name)
}

// Branches returns every branch name mapped to its commit digest (empty for "no commit yet").
func (r *Repository) Branches() (map[string]objects.Digest, error) {
	names, err := r.Refs.ListBranches()
	if err != nil {
		return nil, err
	}
	out := make(map[string]objects.Digest, len(names))
	for _, name := range names {
		digest, err := r.Refs.LoadBranch(name)
		if err != nil {
			return nil, err
		}
		out[name] = digest
	}
	return out, nil
}

// CurrentBranch returns the branch name HEAD symbolically points at, or ""
// if HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Refs.LoadHead()
	if err != nil {
		return "", err
	}
	if !head.Symbolic {
		return "", nil
	}
	return head.Branch, nil
}

// CheckoutNewBranch creates name at the current commit and switches to it.
func (r *Repository) CheckoutNewBranch(name string) error {
	if err := r.CreateBranch(name); err != nil {
		return err
	}
	return r.Checkout(name)
}
