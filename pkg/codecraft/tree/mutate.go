package tree

import (
	"errors"
	"strings"

	"github.com/codecrafthq/codecraft/pkg/codecraft/paths"
)

// Structural mutation errors. These are returned inline, never panicked,
// and a failed mutation always returns the input tree unchanged.
var (
	ErrNameConflict = errors.New("name conflicts with an existing sibling")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrNotFound     = errors.New("node not found")
)

// Position selects where MoveNode reattaches the source node.
type Position string

// Move positions.
const (
	// PositionInto makes the source a child of the target folder.
	PositionInto Position = "into"
	// PositionAfter reorders the source as the sibling immediately
	// following the target.
	PositionAfter Position = "after"
)

// UpsertFile returns a new tree in which the file at path exists with
// the given content. Intermediate folders are created as needed. A
// pre-existing node at path is coerced to a file, last writer wins on
// type; coercing a folder drops its subtree.
func UpsertFile(root *Node, path, content string) *Node {
	return upsert(root, path, KindFile, &content)
}

// EnsureFile is UpsertFile without a content write: an existing file
// keeps its content, a missing one is created empty.
func EnsureFile(root *Node, path string) *Node {
	return upsert(root, path, KindFile, nil)
}

// UpsertFolder returns a new tree in which the folder at path exists.
// Intermediate folders are created as needed and the terminal node is
// forced to folder kind.
func UpsertFolder(root *Node, path string) *Node {
	return upsert(root, path, KindFolder, nil)
}

func upsert(root *Node, path string, kind Kind, content *string) *Node {
	segs := paths.Split(path)
	if root == nil || len(segs) == 0 {
		return root
	}

	clone := shallowClone(root)
	curr := clone
	for i, name := range segs {
		last := i == len(segs)-1

		idx := -1
		for j, child := range curr.Children {
			if child.Name == name {
				idx = j
				break
			}
		}

		var next *Node
		if idx == -1 {
			next = &Node{
				Kind: KindFolder,
				Name: name,
				Path: paths.Join(curr.Path, name),
			}
			if last && kind == KindFile {
				next.Kind = KindFile
				if content != nil {
					next.Content = *content
				}
			}
			curr.Children = append(curr.Children, next)
		} else {
			next = shallowClone(curr.Children[idx])
			curr.Children[idx] = next
			switch {
			case last && kind == KindFile:
				if next.Kind != KindFile {
					next.Children = nil
				}
				next.Kind = KindFile
				if content != nil {
					next.Content = *content
				}
			case last || next.Kind != KindFolder:
				// Terminal folder upsert, or an intermediate segment
				// passing through a file: force folder kind.
				next.Kind = KindFolder
				next.Content = ""
			}
		}
		curr = next
	}
	return clone
}

// DeleteNode returns a new tree with the node at path removed, along
// with its whole subtree. Deleting the root or a missing path is a
// no-op returning the input tree.
func DeleteNode(root *Node, path string) *Node {
	if root == nil || path == paths.Root {
		return root
	}
	if Find(root, path) == nil {
		return root
	}
	return deleteIn(root, path)
}

func deleteIn(n *Node, path string) *Node {
	clone := shallowClone(n)
	for i, child := range clone.Children {
		if child.Path == path {
			clone.Children = append(clone.Children[:i], clone.Children[i+1:]...)
			return clone
		}
		if paths.IsDescendant(child.Path, path) {
			clone.Children[i] = deleteIn(child, path)
			return clone
		}
	}
	return clone
}

// RenameNode returns a new tree with the node at path renamed. Paths of
// the node and every descendant are recomputed. Fails with
// ErrNameConflict if newName collides with a sibling, ErrEmptyName if
// newName is blank, ErrNotFound if path does not resolve.
func RenameNode(root *Node, path, newName string) (*Node, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return root, ErrEmptyName
	}
	if root == nil || path == paths.Root || Find(root, path) == nil {
		return root, ErrNotFound
	}

	parent := Find(root, paths.Parent(path))
	for _, sibling := range parent.Children {
		if sibling.Name == newName && sibling.Path != path {
			return root, ErrNameConflict
		}
	}

	return renameIn(root, path, newName), nil
}

func renameIn(n *Node, path, newName string) *Node {
	clone := shallowClone(n)
	for i, child := range clone.Children {
		switch {
		case child.Path == path:
			renamed := shallowClone(child)
			renamed.Name = newName
			clone.Children[i] = rebase(renamed, clone.Path)
			return clone
		case paths.IsDescendant(child.Path, path):
			clone.Children[i] = renameIn(child, path, newName)
			return clone
		}
	}
	return clone
}

// MoveNode returns a new tree with the node at source detached and
// reattached relative to target. Illegal moves are silent no-ops that
// return the input tree unchanged: moving the root, moving a node onto
// itself or into its own subtree, moving into a non-folder target, or
// moving where the name would collide with an existing sibling.
func MoveNode(root *Node, source, target string, pos Position) *Node {
	if root == nil || source == paths.Root || source == target {
		return root
	}
	if paths.IsDescendant(source, target) {
		return root
	}
	moved := Find(root, source)
	if moved == nil {
		return root
	}

	switch pos {
	case PositionInto:
		dest := Find(root, target)
		if dest == nil || !dest.IsFolder() {
			return root
		}
		if hasOtherSibling(dest.Children, moved.Name, source) {
			return root
		}
		sub := rebase(moved, target)
		return updateAt(DeleteNode(root, source), target, func(n *Node) {
			n.Children = append(n.Children, sub)
		})

	case PositionAfter:
		if target == paths.Root {
			return root
		}
		parentPath := paths.Parent(target)
		parent := Find(root, parentPath)
		if parent == nil {
			return root
		}
		if hasOtherSibling(parent.Children, moved.Name, source) {
			return root
		}
		sub := rebase(moved, parentPath)
		return updateAt(DeleteNode(root, source), parentPath, func(n *Node) {
			idx := -1
			for i, child := range n.Children {
				if child.Path == target {
					idx = i
					break
				}
			}
			if idx == -1 {
				n.Children = append(n.Children, sub)
				return
			}
			rest := append([]*Node{sub}, n.Children[idx+1:]...)
			n.Children = append(n.Children[:idx+1], rest...)
		})
	}

	return root
}

func hasOtherSibling(children []*Node, name, exceptPath string) bool {
	for _, child := range children {
		if child.Name == name && child.Path != exceptPath {
			return true
		}
	}
	return false
}

// updateAt clones the spine from n down to path and applies fn to the
// fresh clone of the node at path. fn may freely edit the clone's
// Children slice.
func updateAt(n *Node, path string, fn func(*Node)) *Node {
	clone := shallowClone(n)
	if clone.Path == path {
		fn(clone)
		return clone
	}
	for i, child := range clone.Children {
		if child.Path == path || paths.IsDescendant(child.Path, path) {
			clone.Children[i] = updateAt(child, path, fn)
			break
		}
	}
	return clone
}
