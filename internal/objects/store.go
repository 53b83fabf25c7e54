package objects

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Store.Retrieve when the digest has no object on disk.
var ErrNotFound = errors.New("object not found")

// Store is a directory-backed content-addressed key-value store. Objects
// are written once under objects/xx/yyyy...y and never overwritten.
type Store struct {
	root string // the "objects" directory
}

// NewStore wraps an existing objects directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) pathFor(d Digest) (string, error) {
	if len(d) != 40 {
		return "", fmt.Errorf("%w: invalid digest %q", ErrInvalidDigest, d)
	}
	return filepath.Join(s.root, string(d[:2]), string(d[2:])), nil
}

// ErrInvalidDigest is returned when a caller-supplied digest is malformed.
var ErrInvalidDigest = errors.New("invalid digest")

// Put stores raw encoded object bytes (header+payload, as produced by
// Encode) under its digest, if not already present. Idempotent: writing
// the same bytes twice is a no-op that returns nil the second time.
func (s *Store) Put(digest Digest, raw []byte) error {
	path, err := s.pathFor(digest)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // already stored
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "obj-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp object file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp object file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		// Another writer may have raced us to the same digest; that's fine.
		if _, statErr := os.Stat(path); statErr == nil {
			return nil
		}
		return fmt.Errorf("rename object into place: %w", err)
	}
	return nil
}

// Retrieve returns the raw encoded bytes for digest.
func (s *Store) Retrieve(digest Digest) ([]byte, error) {
	path, err := s.pathFor(digest)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a validated digest under a fixed root
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, digest)
		}
		return nil, fmt.Errorf("read object %s: %w", digest, err)
	}
	return data, nil
}

// Has reports whether an object with the given digest is stored.
func (s *Store) Has(digest Digest) bool {
	path, err := s.pathFor(digest)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// StoreObject encodes o, writes it if not already present, and returns its digest.
func (s *Store) StoreObject(o Object) (Digest, error) {
	raw, digest, err := Encode(o)
	if err != nil {
		return "", err
	}
	if err := s.Put(digest, raw); err != nil {
		return "", err
	}
	return digest, nil
}

// LoadObject retrieves and decodes the object at digest.
func (s *Store) LoadObject(digest Digest, expect Kind) (Object, error) {
	raw, err := s.Retrieve(digest)
	if err != nil {
		return nil, err
	}
	obj, gotDigest, err := Decode(raw, expect)
	if err != nil {
		return nil, fmt.Errorf("decode object %s: %w", digest, err)
	}
	if gotDigest != digest {
		return nil, fmt.Errorf("%w: object %s rehashes to %s", errCorrupt, digest, gotDigest)
	}
	return obj, nil
}

var errCorrupt = errors.New("object corrupt")
