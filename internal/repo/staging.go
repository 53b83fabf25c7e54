package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kestrelvcs/kestrel/internal/index"
	"github.com/kestrelvcs/kestrel/internal/objects"
)

// Add stages each given path: directories are recursively expanded to
// their regular files. A path that no longer exists on disk but is
// currently tracked is treated as a deletion; a path that neither exists
// nor is tracked is an error.
func (r *Repository) Add(paths ...string) error {
	ix, err := r.LoadIndex()
	if err != nil {
		return err
	}

	for _, p := range paths {
		abs, err := r.ValidWorkingPath(p)
		if err != nil {
			return err
		}

		info, statErr := os.Stat(abs)
		switch {
		case statErr == nil && info.IsDir():
			if err := r.addDir(ix, abs); err != nil {
				return err
			}
		case statErr == nil:
			if err := r.addFile(ix, abs); err != nil {
				return err
			}
		case os.IsNotExist(statErr):
			rel, relErr := filepath.Rel(r.root, abs)
			if relErr != nil {
				return fmt.Errorf("add %s: %w", p, relErr)
			}
			rel = filepath.ToSlash(rel)
			if _, tracked := ix.Get(rel); !tracked {
				return fmt.Errorf("add %s: %w", p, os.ErrNotExist)
			}
			ix.Remove(rel)
		default:
			return fmt.Errorf("add %s: %w", p, statErr)
		}
	}

	return r.SaveIndex(ix)
}

func (r *Repository) addDir(ix *index.Index, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if d.IsDir() {
			if path == r.metaDir {
				return fs.SkipDir
			}
			return nil
		}
		return r.addFile(ix, path)
	})
}

func (r *Repository) addFile(ix *index.Index, abs string) error {
	content, err := os.ReadFile(abs) //nolint:gosec // abs is validated against the repository root
	if err != nil {
		return fmt.Errorf("add: read %s: %w", abs, err)
	}
	digest, err := r.Objects.StoreObject(&objects.Blob{Content: content})
	if err != nil {
		return fmt.Errorf("add: store blob for %s: %w", abs, err)
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return fmt.Errorf("add: relativize %s: %w", abs, err)
	}
	return ix.Update(filepath.ToSlash(rel), digest)
}

// Rm unstages each given path and deletes it from the working tree. Every
// path must currently be tracked.
func (r *Repository) Rm(paths ...string) error {
	ix, err := r.LoadIndex()
	if err != nil {
		return err
	}

	for _, p := range paths {
		abs, err := r.ValidWorkingPath(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(r.root, abs)
		if err != nil {
			return fmt.Errorf("rm %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		if _, tracked := ix.Get(rel); !tracked {
			return fmt.Errorf("rm %s: %w", p, ErrNotTracked)
		}
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rm %s: %w", p, err)
		}
		ix.Remove(rel)
	}

	return r.SaveIndex(ix)
}
