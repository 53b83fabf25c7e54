package repo

import "errors"

// Sentinel errors surfaced by repo operations, matched with errors.Is.
var (
	ErrPathOutsideRepo     = errors.New("path is outside the repository")
	ErrPathInsideMetadata  = errors.New("path is inside the repository metadata directory")
	ErrNotTracked          = errors.New("path is not tracked")
	ErrRefExists           = errors.New("branch already exists")
	ErrRefNotFound         = errors.New("branch not found")
	ErrActiveBranchDelete  = errors.New("cannot delete the current branch")
	ErrNoCommits           = errors.New("no commits yet")
	ErrEmptyCommit         = errors.New("nothing to commit, working tree clean")
	ErrEmptyMessage        = errors.New("commit message must not be empty")
	ErrDirtyWorkingTree    = errors.New("cannot merge: you have staged changes, commit or reset them first")
	ErrUntrackedInTheWay   = errors.New("untracked file would be overwritten")
	ErrMergeWithSelf       = errors.New("cannot merge branch into itself")
	ErrAlreadyInitialized  = errors.New("repository already initialized")
	ErrNotARepository      = errors.New("not a kestrel repository")
)
