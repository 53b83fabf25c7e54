package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kestrelvcs/kestrel/internal/index"
	"github.com/kestrelvcs/kestrel/internal/objects"
)

// Classification is the four-way per-path outcome of comparing two indices.
type Classification int

const (
	Unmodified Classification = iota
	LeftOnly
	RightOnly
	Modified
)

func (c Classification) String() string {
	switch c {
	case LeftOnly:
		return "left-only"
	case RightOnly:
		return "right-only"
	case Modified:
		return "modified"
	default:
		return "unmodified"
	}
}

// Diff classifies every path appearing in left and/or right.
func Diff(left, right *index.Index) map[string]Classification {
	out := make(map[string]Classification)

	leftEntries := left.Entries()
	rightDigests := make(map[string]objects.Digest)
	for _, e := range right.Entries() {
		rightDigests[e.Path] = e.Digest
	}

	seen := make(map[string]struct{}, len(leftEntries))
	for _, e := range leftEntries {
		seen[e.Path] = struct{}{}
		rd, ok := rightDigests[e.Path]
		switch {
		case !ok:
			out[e.Path] = LeftOnly
		case rd != e.Digest:
			out[e.Path] = Modified
		default:
			out[e.Path] = Unmodified
		}
	}
	for path := range rightDigests {
		if _, ok := seen[path]; !ok {
			out[path] = RightOnly
		}
	}
	return out
}

func (r *Repository) blobContent(digest objects.Digest) ([]byte, error) {
	obj, err := r.Objects.LoadObject(digest, objects.KindBlob)
	if err != nil {
		return nil, err
	}
	return obj.(*objects.Blob).Content, nil
}

// Status describes the working tree's divergence from the staged index
// and the staged index's divergence from HEAD.
type Status struct {
	NoCommits bool
	Staged    map[string]Classification // path -> LeftOnly(deleted)/RightOnly(new)/Modified, vs HEAD
	Unstaged  map[string]string         // path -> "modified" or "deleted", vs on-disk working tree
	Untracked []string
}

// ComputeStatus computes the full three-way status: HEAD tree vs index,
// and index vs the on-disk working tree (including untracked files).
func (r *Repository) ComputeStatus() (*Status, error) {
	headCommit, err := r.CurrentCommit()
	if err != nil {
		return nil, err
	}
	headIndex, err := r.IndexAtCommit(headCommit)
	if err != nil {
		return nil, err
	}
	workingIndex, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}

	staged := Diff(headIndex, workingIndex)
	for p, c := range staged {
		if c == Unmodified {
			delete(staged, p)
		}
	}

	status := &Status{NoCommits: headCommit == "", Staged: staged, Unstaged: make(map[string]string)}

	trackedPaths := make(map[string]struct{})
	for _, e := range workingIndex.Entries() {
		trackedPaths[e.Path] = struct{}{}
		abs := filepath.Join(r.root, filepath.FromSlash(e.Path))
		_, statErr := os.Stat(abs)
		switch {
		case os.IsNotExist(statErr):
			status.Unstaged[e.Path] = "deleted"
		case statErr != nil:
			return nil, fmt.Errorf("status: stat %s: %w", abs, statErr)
		default:
			content, readErr := os.ReadFile(abs) //nolint:gosec // abs is derived from a tracked repo-relative path
			if readErr != nil {
				return nil, fmt.Errorf("status: read %s: %w", abs, readErr)
			}
			_, digest, encErr := objects.Encode(&objects.Blob{Content: content})
			if encErr != nil {
				return nil, fmt.Errorf("status: %w", encErr)
			}
			if want, _ := workingIndex.Get(e.Path); digest != want {
				status.Unstaged[e.Path] = "modified"
			}
		}
	}

	walkErr := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		if d.IsDir() {
			if path == r.metaDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(r.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if _, tracked := trackedPaths[rel]; tracked {
			return nil
		}
		status.Untracked = append(status.Untracked, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("status: walk working tree: %w", walkErr)
	}

	return status, nil
}
