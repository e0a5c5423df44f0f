package tree

import (
	"github.com/codecrafthq/codecraft/pkg/codecraft/paths"
)

// FlatRecord is the parent-linked wire shape of one node. It is the
// only representation that crosses the network boundary; the nested
// tree is rebuildable from a list of these.
type FlatRecord struct {
	// FileID is the node's path, the record's primary key.
	FileID string `json:"fileId"`
	Name   string `json:"name"`
	Kind   Kind   `json:"type"`
	// ParentID is the parent node's path. Direct children of the root
	// carry "/".
	ParentID string `json:"parentId"`
	Content  string `json:"content"`
}

// ContentMap maps every file path to its content. Folder structure and
// ordering are deliberately dropped: this view feeds content-addressed
// consumers such as the preview bundler.
func ContentMap(root *Node) map[string]string {
	files := make(map[string]string)
	collectContent(root, files)
	return files
}

func collectContent(n *Node, files map[string]string) {
	if n == nil {
		return
	}
	if n.Kind == KindFile {
		files[n.Path] = n.Content
		return
	}
	for _, child := range n.Children {
		collectContent(child, files)
	}
}

// FlatRecords flattens a tree into one record per non-root node, in
// depth-first order. Lossless with respect to structure and content.
func FlatRecords(root *Node) []FlatRecord {
	var records []FlatRecord
	if root == nil {
		return records
	}
	for _, child := range root.Children {
		flatten(child, root.Path, &records)
	}
	return records
}

func flatten(n *Node, parentID string, records *[]FlatRecord) {
	*records = append(*records, FlatRecord{
		FileID:   n.Path,
		Name:     n.Name,
		Kind:     n.Kind,
		ParentID: parentID,
		Content:  n.Content,
	})
	for _, child := range n.Children {
		flatten(child, n.Path, records)
	}
}

// FromFlatRecords rebuilds a tree from a flat record list. Records may
// arrive in any order; missing intermediate folders are synthesized by
// walking each record's parent chain. Inverse of FlatRecords up to
// child order.
func FromFlatRecords(records []FlatRecord) *Node {
	root := NewRoot()
	byID := map[string]*Node{paths.Root: root}

	// ensureFolder walks the segments of path, creating and attaching
	// folder nodes for any that are missing, and returns the node at
	// path.
	ensureFolder := func(path string) *Node {
		if path == "" || path == paths.Root {
			return root
		}
		if node, ok := byID[path]; ok {
			return node
		}
		parent := root
		curr := ""
		for _, seg := range paths.Split(path) {
			curr = curr + "/" + seg
			node, ok := byID[curr]
			if !ok {
				node = &Node{Kind: KindFolder, Name: seg, Path: curr}
				parent.Children = append(parent.Children, node)
				byID[curr] = node
			}
			parent = node
		}
		return parent
	}

	for _, rec := range records {
		parent := ensureFolder(rec.ParentID)

		if existing, ok := byID[rec.FileID]; ok {
			// Synthesized earlier while resolving another record's
			// parent chain; fill in the record's real attributes.
			existing.Kind = rec.Kind
			existing.Name = rec.Name
			existing.Content = rec.Content
			continue
		}

		node := &Node{
			Kind:    rec.Kind,
			Name:    rec.Name,
			Path:    rec.FileID,
			Content: rec.Content,
		}
		byID[rec.FileID] = node
		parent.Children = append(parent.Children, node)
	}

	return root
}
