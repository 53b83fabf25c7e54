package index

import (
	"fmt"

	"github.com/kestrelvcs/kestrel/internal/objects"
)

// WriteTree recursively stores a tree object for every directory node in
// the index and returns the digest of the root tree.
func WriteTree(store *objects.Store, ix *Index) (objects.Digest, error) {
	return writeTreeNode(store, ix.Root())
}

func writeTreeNode(store *objects.Store, n Node) (objects.Digest, error) {
	tree := &objects.Tree{}
	for _, c := range n.Children() {
		if c.Node.IsFile() {
			tree.Entries = append(tree.Entries, objects.TreeEntry{
				Kind: objects.KindBlob, Digest: c.Node.Digest(), Name: c.Name,
			})
			continue
		}
		subDigest, err := writeTreeNode(store, c.Node)
		if err != nil {
			return "", err
		}
		tree.Entries = append(tree.Entries, objects.TreeEntry{
			Kind: objects.KindTree, Digest: subDigest, Name: c.Name,
		})
	}
	return store.StoreObject(tree)
}

// ReadTree rebuilds an Index from a stored tree's contents, recursively.
// An empty root digest yields an empty index.
func ReadTree(store *objects.Store, root objects.Digest) (*Index, error) {
	ix := New()
	if root == "" {
		return ix, nil
	}
	if err := readTreeInto(store, root, "", ix); err != nil {
		return nil, err
	}
	return ix, nil
}

func readTreeInto(store *objects.Store, digest objects.Digest, prefix string, ix *Index) error {
	obj, err := store.LoadObject(digest, objects.KindTree)
	if err != nil {
		return fmt.Errorf("read tree %s: %w", digest, err)
	}
	tree := obj.(*objects.Tree)

	for _, e := range tree.Entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		switch e.Kind {
		case objects.KindBlob:
			if err := ix.Update(path, e.Digest); err != nil {
				return fmt.Errorf("read tree %s: %w", digest, err)
			}
		case objects.KindTree:
			if err := readTreeInto(store, e.Digest, path, ix); err != nil {
				return err
			}
		default:
			return fmt.Errorf("read tree %s: unexpected entry kind %s at %q", digest, e.Kind, path)
		}
	}
	return nil
}
