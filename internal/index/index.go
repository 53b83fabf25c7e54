// Package index implements the staging index: a canonical tree-shaped
// snapshot of tracked paths and their blob digests, with a flat sorted
// on-disk text form.
package index

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kestrelvcs/kestrel/internal/objects"
)

type node struct {
	isFile   bool
	digest   objects.Digest
	children map[string]*node
}

func newDirNode() *node {
	return &node{children: make(map[string]*node)}
}

// Index is the staging area: tracked repo-relative paths mapped to blob digests.
type Index struct {
	root *node
	size int
}

// New returns an empty index.
func New() *Index {
	return &Index{root: newDirNode()}
}

// Size returns the number of tracked file entries.
func (ix *Index) Size() int { return ix.size }

// Update records path as tracked with the given blob digest, creating any
// intermediate directory nodes as needed. It is an error for path to pass
// through, or land on, a node that is already of the other kind.
func (ix *Index) Update(path string, digest objects.Digest) error {
	path = Normalize(path)
	if path == "" {
		return fmt.Errorf("index update: empty path")
	}
	parts := strings.Split(path, "/")

	cur := ix.root
	for _, part := range parts[:len(parts)-1] {
		child, ok := cur.children[part]
		if !ok {
			child = newDirNode()
			cur.children[part] = child
		} else if child.isFile {
			return fmt.Errorf("index update: %q is a file, cannot descend into it as a directory", part)
		}
		cur = child
	}

	last := parts[len(parts)-1]
	existing, ok := cur.children[last]
	if ok && !existing.isFile {
		return fmt.Errorf("index update: %q is a directory, cannot treat it as a file", path)
	}
	if !ok {
		ix.size++
	}
	cur.children[last] = &node{isFile: true, digest: digest}
	return nil
}

// Remove deletes path from the index, if tracked, and returns its prior digest.
func (ix *Index) Remove(path string) (objects.Digest, bool) {
	path = Normalize(path)
	if path == "" {
		return "", false
	}
	parts := strings.Split(path, "/")

	cur := ix.root
	for _, part := range parts[:len(parts)-1] {
		child, ok := cur.children[part]
		if !ok || child.isFile {
			return "", false
		}
		cur = child
	}
	last := parts[len(parts)-1]
	leaf, ok := cur.children[last]
	if !ok || !leaf.isFile {
		return "", false
	}
	delete(cur.children, last)
	ix.size--
	return leaf.digest, true
}

// Get looks up the blob digest tracked at path.
func (ix *Index) Get(path string) (objects.Digest, bool) {
	path = Normalize(path)
	if path == "" {
		return "", false
	}
	parts := strings.Split(path, "/")
	cur := ix.root
	for _, part := range parts[:len(parts)-1] {
		child, ok := cur.children[part]
		if !ok || child.isFile {
			return "", false
		}
		cur = child
	}
	leaf, ok := cur.children[parts[len(parts)-1]]
	if !ok || !leaf.isFile {
		return "", false
	}
	return leaf.digest, true
}

// Entry is a single (path, digest) pair produced by Entries.
type Entry struct {
	Path   string
	Digest objects.Digest
}

// Entries returns every tracked (path, digest) pair, depth-first with
// children visited in ascending name order (so the result is sorted by path).
func (ix *Index) Entries() []Entry {
	var out []Entry
	walk(ix.root, "", &out)
	return out
}

func walk(n *node, prefix string, out *[]Entry) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := n.children[name]
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if child.isFile {
			*out = append(*out, Entry{Path: path, Digest: child.digest})
		} else {
			walk(child, path, out)
		}
	}
}

// Root exposes the index's directory tree for tree-building callers.
func (ix *Index) Root() Node { return Node{n: ix.root} }

// Node is a read-only view over one directory level of the index tree,
// used by tree-builder code that needs to recurse without reaching into
// package-private fields.
type Node struct{ n *node }

// IsFile reports whether this node is a file leaf.
func (nd Node) IsFile() bool { return nd.n.isFile }

// Digest returns the blob digest of a file leaf.
func (nd Node) Digest() objects.Digest { return nd.n.digest }

// Children returns child names in ascending order together with their nodes.
func (nd Node) Children() []struct {
	Name string
	Node Node
} {
	names := make([]string, 0, len(nd.n.children))
	for name := range nd.n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]struct {
		Name string
		Node Node
	}, len(names))
	for i, name := range names {
		out[i] = struct {
			Name string
			Node Node
		}{Name: name, Node: Node{n: nd.n.children[name]}}
	}
	return out
}

// Load reads an index from its on-disk flat text form ("<path> <digest>\n" per line).
func Load(path string) (*Index, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-supplied repository metadata location
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	ix := New()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		sp := strings.LastIndex(line, " ")
		if sp < 0 {
			return nil, fmt.Errorf("malformed index at line %d: %q", lineNo, line)
		}
		p, digestStr := line[:sp], line[sp+1:]
		digest, err := objects.NewDigest(digestStr)
		if err != nil {
			return nil, fmt.Errorf("malformed index at line %d: %w", lineNo, err)
		}
		if err := ix.Update(p, digest); err != nil {
			return nil, fmt.Errorf("malformed index at line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return ix, nil
}

// Save writes the index to its on-disk flat text form, sorted by path.
func Save(path string, ix *Index) error {
	var buf strings.Builder
	for _, e := range ix.Entries() {
		fmt.Fprintf(&buf, "%s %s\n", e.Path, e.Digest)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil { //nolint:gosec // index is not sensitive
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}
