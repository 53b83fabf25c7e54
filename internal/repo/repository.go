// Package repo ties the object store, index and refs together into the
// repository-level operations a caller actually invokes: init, staging,
// commit, checkout, status and merge.
package repo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kestrelvcs/kestrel/internal/config"
	"github.com/kestrelvcs/kestrel/internal/index"
	"github.com/kestrelvcs/kestrel/internal/objects"
	"github.com/kestrelvcs/kestrel/internal/refs"
)

// Repository is a loaded, validated repository: a working tree root plus
// its metadata directory, object store and ref store.
type Repository struct {
	root     string
	metaDir  string
	Objects  *objects.Store
	Refs     *refs.Store
	Identity config.Identity
}

// Root returns the working tree root directory.
func (r *Repository) Root() string { return r.root }

// MetaDir returns the repository's metadata directory.
func (r *Repository) MetaDir() string { return r.metaDir }

// IndexPath returns the on-disk location of the staging index.
func (r *Repository) IndexPath() string { return filepath.Join(r.metaDir, "index") }

// Init creates a new repository layout at root, which must not already
// contain one. It creates the metadata directory, object store, refs
// directory, the default branch (with no commit yet), and a symbolic HEAD
// pointing at it.
func Init(root string) (*Repository, error) {
	metaDir := filepath.Join(root, config.MetadataDirName)
	if _, err := os.Stat(metaDir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, metaDir)
	}

	for _, dir := range []string{
		metaDir,
		filepath.Join(metaDir, "objects"),
		filepath.Join(metaDir, "refs"),
		filepath.Join(metaDir, "refs", "heads"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("init: create %s: %w", dir, err)
		}
	}

	refStore := refs.NewStore(metaDir)
	if err := refStore.CreateBranch(config.DefaultBranch, ""); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := refStore.SaveHeadSymbolic(config.DefaultBranch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	slog.Info("initialized repository", "root", root, "branch", config.DefaultBranch)

	return &Repository{
		root:     root,
		metaDir:  metaDir,
		Objects:  objects.NewStore(filepath.Join(metaDir, "objects")),
		Refs:     refStore,
		Identity: config.LoadIdentity(),
	}, nil
}

// Open loads and validates an existing repository rooted at (or below) dir.
// Validation requires HEAD to be a file and objects/ and refs/ to be
// directories.
func Open(dir string) (*Repository, error) {
	root, metaDir, err := findMetaDir(dir)
	if err != nil {
		return nil, err
	}

	for name, wantDir := range map[string]bool{
		"HEAD":    false,
		"objects": true,
		"refs":    true,
	} {
		info, err := os.Stat(filepath.Join(metaDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: missing %s", ErrNotARepository, name)
		}
		if info.IsDir() != wantDir {
			return nil, fmt.Errorf("%w: %s has unexpected type", ErrNotARepository, name)
		}
	}

	return &Repository{
		root:     root,
		metaDir:  metaDir,
		Objects:  objects.NewStore(filepath.Join(metaDir, "objects")),
		Refs:     refs.NewStore(metaDir),
		Identity: config.LoadIdentity(),
	}, nil
}

// findMetaDir walks upward from dir looking for a metadata directory.
func findMetaDir(dir string) (root, metaDir string, err error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("resolve path: %w", err)
	}
	for {
		candidate := filepath.Join(cur, config.MetadataDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return cur, candidate, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", fmt.Errorf("%w: no %s directory found above %s", ErrNotARepository, config.MetadataDirName, dir)
		}
		cur = parent
	}
}

// ValidWorkingPath reports whether p, resolved against the repository
// root, is inside the working tree and outside the metadata directory.
func (r *Repository) ValidWorkingPath(p string) (abs string, err error) {
	abs = p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.root, p)
	}
	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || (len(rel) >= 3 && rel[:3] == "../") {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRepo, p)
	}

	metaRel, err := filepath.Rel(r.metaDir, abs)
	if err == nil && metaRel != ".." && !hasDotDotPrefix(metaRel) {
		return "", fmt.Errorf("%w: %s", ErrPathInsideMetadata, p)
	}

	return abs, nil
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

// LoadIndex loads the on-disk staging index.
func (r *Repository) LoadIndex() (*index.Index, error) {
	return index.Load(r.IndexPath())
}

// SaveIndex persists ix as the on-disk staging index.
func (r *Repository) SaveIndex(ix *index.Index) error {
	return index.Save(r.IndexPath(), ix)
}

// CurrentCommit resolves HEAD to a commit digest, or "" if there is none yet.
func (r *Repository) CurrentCommit() (objects.Digest, error) {
	head, err := r.Refs.LoadHead()
	if err != nil {
		return "", err
	}
	return r.Refs.Resolve(head)
}

// LoadCommit retrieves and decodes a commit object.
func (r *Repository) LoadCommit(digest objects.Digest) (*objects.Commit, error) {
	obj, err := r.Objects.LoadObject(digest, objects.KindCommit)
	if err != nil {
		return nil, err
	}
	return obj.(*objects.Commit), nil
}

// IndexAtCommit reads the tree of the given commit as an Index; an empty
// digest yields an empty index.
func (r *Repository) IndexAtCommit(commit objects.Digest) (*index.Index, error) {
	if commit == "" {
		return index.New(), nil
	}
	c, err := r.LoadCommit(commit)
	if err != nil {
		return nil, err
	}
	return index.ReadTree(r.Objects, c.Tree)
}
