// Package paths provides path algebra for workspace trees.
// Workspace paths are absolute, slash-delimited, and rooted at "/".
package paths

import "strings"

// Root is the path of the workspace root folder.
const Root = "/"

// Join joins a parent path and a child name into an absolute path.
// Trailing slashes on the parent and leading slashes on the name are
// normalized away.
func Join(parent, name string) string {
	p := strings.TrimRight(parent, "/")
	n := strings.TrimLeft(name, "/")
	if p == "" {
		return Root + n
	}
	return p + "/" + n
}

// Split returns the non-empty segments of a path.
// Split("/public/index.html") returns ["public", "index.html"].
func Split(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Parent returns the parent path of the given path, or Root if the path
// is a direct child of the root (or the root itself).
func Parent(path string) string {
	idx := strings.LastIndex(strings.TrimRight(path, "/"), "/")
	if idx <= 0 {
		return Root
	}
	return path[:idx]
}

// Base returns the last segment of a path, or "/" for the root.
func Base(path string) string {
	segs := Split(path)
	if len(segs) == 0 {
		return Root
	}
	return segs[len(segs)-1]
}

// IsDescendant reports whether path lies strictly under ancestor.
func IsDescendant(ancestor, path string) bool {
	if ancestor == Root {
		return path != Root && strings.HasPrefix(path, Root)
	}
	return strings.HasPrefix(path, ancestor+"/")
}
