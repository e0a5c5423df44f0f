// Package tree provides the in-memory workspace file tree and its codecs.
//
// A tree is a hierarchy of named nodes rooted at "/". Every node carries
// its absolute path, derived from its ancestors' names, which serves as
// the node's identity within one snapshot. All mutations are
// copy-on-write: they return a new root and never modify the input, so
// readers holding an older snapshot stay valid while a mutation runs.
package tree

import (
	"github.com/codecrafthq/codecraft/pkg/codecraft/paths"
)

// Kind distinguishes file nodes from folder nodes.
type Kind string

// Node kinds. The string values match the wire format.
const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node represents a file or folder in a workspace tree.
type Node struct {
	Kind Kind   `json:"type"`
	Name string `json:"name"`
	Path string `json:"path"`

	// Content is present on file nodes only.
	Content string `json:"content,omitempty"`

	// Children is present on folder nodes only. Order is display order.
	Children []*Node `json:"children,omitempty"`
}

// NewRoot returns an empty workspace tree: a single root folder at "/".
func NewRoot() *Node {
	return &Node{Kind: KindFolder, Name: paths.Root, Path: paths.Root}
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Find returns the node with the given path, or nil if absent.
func Find(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if root.Path == path {
		return root
	}
	for _, child := range root.Children {
		if found := Find(child, path); found != nil {
			return found
		}
	}
	return nil
}

// FirstFilePath returns the path of the first file in depth-first order,
// or "" if the tree contains no files. Used to pick the initially open
// file after loading a project.
func FirstFilePath(root *Node) string {
	if root == nil {
		return ""
	}
	if root.Kind == KindFile {
		return root.Path
	}
	for _, child := range root.Children {
		if p := FirstFilePath(child); p != "" {
			return p
		}
	}
	return ""
}

// FilePaths returns the paths of all file nodes in depth-first order.
func FilePaths(root *Node) []string {
	var out []string
	walkFiles(root, &out)
	return out
}

func walkFiles(n *Node, out *[]string) {
	if n == nil {
		return
	}
	if n.Kind == KindFile {
		*out = append(*out, n.Path)
		return
	}
	for _, child := range n.Children {
		walkFiles(child, out)
	}
}

// shallowClone copies a node and its children slice. The child pointers
// themselves are shared: nodes are never mutated in place, so sharing
// untouched subtrees between snapshots is safe.
func shallowClone(n *Node) *Node {
	clone := &Node{
		Kind:    n.Kind,
		Name:    n.Name,
		Path:    n.Path,
		Content: n.Content,
	}
	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		copy(clone.Children, n.Children)
	}
	return clone
}

// rebase returns a deep copy of the subtree with paths recomputed as if
// the node were attached under parentPath.
func rebase(n *Node, parentPath string) *Node {
	clone := &Node{
		Kind:    n.Kind,
		Name:    n.Name,
		Path:    paths.Join(parentPath, n.Name),
		Content: n.Content,
	}
	if n.Children != nil {
		clone.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			clone.Children = append(clone.Children, rebase(child, clone.Path))
		}
	}
	return clone
}
