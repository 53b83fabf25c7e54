package repo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrelvcs/kestrel/internal/index"
	"github.com/kestrelvcs/kestrel/internal/objects"
	"github.com/kestrelvcs/kestrel/internal/textdiff"
)

// MergeOutcome describes what happened as a result of Merge.
type MergeOutcome struct {
	FastForward bool
	NoOp        bool
	Commit      objects.Digest // set for a true merge or a fast-forward
	Conflicts   []ConflictReport
}

// ConflictReport names a conflicting path and the line ranges in the
// current-side content that differ from the branch side.
type ConflictReport struct {
	Path   string
	Ranges []textdiff.Range
}

// lca walks first-parents only: the contract is intentionally simplified
// and correct only on histories without merges on both sides.
func (r *Repository) lca(a, b objects.Digest) (objects.Digest, error) {
	ancestorsOfA := make(map[objects.Digest]struct{})
	for cur := a; cur != ""; {
		ancestorsOfA[cur] = struct{}{}
		c, err := r.LoadCommit(cur)
		if err != nil {
			return "", err
		}
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}

	for cur := b; cur != ""; {
		if _, ok := ancestorsOfA[cur]; ok {
			return cur, nil
		}
		c, err := r.LoadCommit(cur)
		if err != nil {
			return "", err
		}
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}
	return "", nil
}

// Merge merges branch into the current branch using a first-parent-only
// LCA and a per-path three-way classification. The working index must
// match HEAD's tree (no staged changes) before merging.
func (r *Repository) Merge(branch string) (*MergeOutcome, error) {
	currentHead, err := r.Refs.LoadHead()
	if err != nil {
		return nil, err
	}
	if currentHead.Symbolic && currentHead.Branch == branch {
		return nil, ErrMergeWithSelf
	}

	currentCommit, err := r.CurrentCommit()
	if err != nil {
		return nil, err
	}
	if currentCommit == "" {
		return nil, ErrNoCommits
	}
	branchCommit, err := r.Refs.LoadBranch(branch)
	if err != nil {
		return nil, err
	}
	if branchCommit == "" {
		return nil, ErrNoCommits
	}
	if currentCommit == branchCommit {
		return nil, ErrMergeWithSelf
	}

	headIndex, err := r.IndexAtCommit(currentCommit)
	if err != nil {
		return nil, err
	}
	workingIndex, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	if !sameEntries(headIndex, workingIndex) {
		return nil, ErrDirtyWorkingTree
	}

	base, err := r.lca(currentCommit, branchCommit)
	if err != nil {
		return nil, err
	}

	if base == currentCommit {
		if err := r.fastForward(branch, branchCommit); err != nil {
			return nil, err
		}
		return &MergeOutcome{FastForward: true, Commit: branchCommit}, nil
	}
	if base == branchCommit {
		return &MergeOutcome{NoOp: true}, nil
	}

	return r.trueMerge(branch, base, currentCommit, branchCommit)
}

func sameEntries(a, b *index.Index) bool {
	ae, be := a.Entries(), b.Entries()
	if len(ae) != len(be) {
		return false
	}
	for i := range ae {
		if ae[i] != be[i] {
			return false
		}
	}
	return true
}

// fastForward applies target's tree through Checkout of branch (whose tip is
// target), then points HEAD back at the current branch and advances it to
// target (or, with a detached HEAD, detaches HEAD at target).
func (r *Repository) fastForward(branch string, target objects.Digest) error {
	head, err := r.Refs.LoadHead()
	if err != nil {
		return err
	}
	if err := r.Checkout(branch); err != nil {
		return err
	}
	if head.Symbolic {
		err = r.Refs.SaveHeadSymbolic(head.Branch)
	} else {
		err = r.Refs.SaveHeadDetached(target)
	}
	if err != nil {
		return err
	}
	if err := r.advanceHead(target); err != nil {
		return err
	}
	slog.Info("fast-forwarded branch", "branch", branch, "to", target.Short())
	return nil
}

func (r *Repository) trueMerge(branch string, base, current, other objects.Digest) (*MergeOutcome, error) {
	baseIndex, err := r.IndexAtCommit(base)
	if err != nil {
		return nil, err
	}
	curIndex, err := r.IndexAtCommit(current)
	if err != nil {
		return nil, err
	}
	otherIndex, err := r.IndexAtCommit(other)
	if err != nil {
		return nil, err
	}

	curDiff := Diff(baseIndex, curIndex)
	otherDiff := Diff(baseIndex, otherIndex)

	paths := make(map[string]struct{})
	for p := range curDiff {
		paths[p] = struct{}{}
	}
	for p := range otherDiff {
		paths[p] = struct{}{}
	}

	merged := index.New()
	var conflicts []ConflictReport

	for p := range paths {
		cc, cok := curDiff[p]
		oc, ook := otherDiff[p]

		curDigest, curTracked := curIndex.Get(p)
		otherDigest, otherTracked := otherIndex.Get(p)

		switch {
		case cok && cc == Modified && (!ook || oc == Unmodified):
			// current changed, other didn't: keep current
			if curTracked {
				_ = merged.Update(p, curDigest)
			}
		case ook && oc == Modified && (!cok || cc == Unmodified):
			// other changed, current didn't: take other
			if otherTracked {
				_ = merged.Update(p, otherDigest)
			}
		case cok && cc == LeftOnly && (!ook || oc == Unmodified):
			// deleted on current, unchanged on other: stays deleted
		case ook && oc == LeftOnly && (!cok || cc == Unmodified):
			// deleted on other, unchanged on current: stays deleted
		case cok && cc == LeftOnly && ook && oc == LeftOnly:
			// deleted on both: stays deleted
		case cc == Modified && oc == Modified:
			if curDigest == otherDigest {
				_ = merged.Update(p, curDigest)
			} else {
				report, err := r.recordConflict(merged, p, curDigest, otherDigest)
				if err != nil {
					return nil, err
				}
				conflicts = append(conflicts, report)
			}
		case cc == RightOnly && oc == RightOnly:
			if curDigest == otherDigest {
				_ = merged.Update(p, curDigest)
			} else {
				report, err := r.recordConflict(merged, p, curDigest, otherDigest)
				if err != nil {
					return nil, err
				}
				conflicts = append(conflicts, report)
			}
		case cc == RightOnly && !ook:
			_ = merged.Update(p, curDigest)
		case oc == RightOnly && !cok:
			_ = merged.Update(p, otherDigest)
		case cc == LeftOnly && oc == Modified, cc == Modified && oc == LeftOnly:
			report, err := r.recordConflict(merged, p, curDigest, otherDigest)
			if err != nil {
				return nil, err
			}
			conflicts = append(conflicts, report)
		default:
			if curTracked {
				_ = merged.Update(p, curDigest)
			} else if otherTracked {
				_ = merged.Update(p, otherDigest)
			}
		}
	}

	if err := r.SaveIndex(merged); err != nil {
		return nil, err
	}

	targetIndex, err := r.IndexAtCommit(current)
	if err != nil {
		return nil, err
	}
	classes := Diff(targetIndex, merged)
	if err := r.ensureSafeToApply(classes); err != nil {
		return nil, err
	}
	if err := r.applyIndex(targetIndex, merged, classes); err != nil {
		return nil, err
	}

	root, err := index.WriteTree(r.Objects, merged)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sig := objects.Signature{Name: r.Identity.Name, Email: r.Identity.Email, When: now}
	commit := &objects.Commit{
		Tree:      root,
		Parents:   []objects.Digest{current, other},
		Author:    sig,
		Committer: sig,
		Message:   fmt.Sprintf("Merge %s", branch),
	}
	digest, err := r.Objects.StoreObject(commit)
	if err != nil {
		return nil, err
	}
	if err := r.advanceHead(digest); err != nil {
		return nil, err
	}

	slog.Info("created merge commit", "digest", digest.Short(), "conflicts", len(conflicts))
	return &MergeOutcome{Commit: digest, Conflicts: conflicts}, nil
}

// recordConflict writes a conflict-marker blob (full current content,
// then full branch content) into merged at p, and returns the line ranges
// in the current-side content that differ from the branch side.
func (r *Repository) recordConflict(merged *index.Index, p string, curDigest, otherDigest objects.Digest) (ConflictReport, error) {
	var curContent, otherContent []byte
	var err error
	if curDigest != "" {
		curContent, err = r.blobContent(curDigest)
		if err != nil {
			return ConflictReport{}, err
		}
	}
	if otherDigest != "" {
		otherContent, err = r.blobContent(otherDigest)
		if err != nil {
			return ConflictReport{}, err
		}
	}

	var conflictContent []byte
	conflictContent = append(conflictContent, "<<<<<<< HEAD\n"...)
	conflictContent = append(conflictContent, curContent...)
	if len(curContent) > 0 && curContent[len(curContent)-1] != '\n' {
		conflictContent = append(conflictContent, '\n')
	}
	conflictContent = append(conflictContent, "=======\n"...)
	conflictContent = append(conflictContent, otherContent...)
	if len(otherContent) > 0 && otherContent[len(otherContent)-1] != '\n' {
		conflictContent = append(conflictContent, '\n')
	}
	conflictContent = append(conflictContent, ">>>>>>>\n"...)

	digest, err := r.Objects.StoreObject(&objects.Blob{Content: conflictContent})
	if err != nil {
		return ConflictReport{}, err
	}
	if err := merged.Update(p, digest); err != nil {
		return ConflictReport{}, err
	}

	ranges := textdiff.ChangedRanges(textdiff.SplitLines(curContent), textdiff.SplitLines(otherContent))
	return ConflictReport{Path: p, Ranges: ranges}, nil
}
