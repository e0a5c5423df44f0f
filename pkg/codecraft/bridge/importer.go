// Package bridge connects the in-memory project tree to a real
// filesystem: importing a directory into a project and mirroring a
// project to disk for editing with local tools.
package bridge

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charlievieth/fastwalk"

	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// DefaultMaxFileSize caps imported file size. Larger files are skipped
// rather than stuffed into a text tree.
const DefaultMaxFileSize = 1 << 20

// DefaultExclusions are directory names skipped during import.
var DefaultExclusions = []string{".git", "node_modules"}

// ImportOptions configures a directory import.
type ImportOptions struct {
	Exclude     []string // Base-name patterns to skip (defaults to DefaultExclusions)
	MaxFileSize int64    // Skip files larger than this (defaults to DefaultMaxFileSize)
}

// ImportDir walks dir and builds a project tree from its contents.
// Symlinks are not followed; excluded directories, oversized files and
// non-text files are skipped.
func ImportDir(dir string, opts ImportOptions) (*tree.Node, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExclusions
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	logger := logging.Get("bridge")

	// fastwalk runs the callback concurrently, so collect under a lock
	// and build the tree afterwards.
	var mu sync.Mutex
	files := make(map[string]string)
	var folders []string

	conf := fastwalk.Config{
		Follow: false,
	}
	err = fastwalk.Walk(&conf, absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if path == absRoot {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, pattern := range exclude {
				if matched, _ := filepath.Match(pattern, base); matched {
					return filepath.SkipDir
				}
			}
			mu.Lock()
			folders = append(folders, treePath(absRoot, path))
			mu.Unlock()
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // File may have vanished mid-walk
		}
		if fileInfo.Size() > maxSize {
			logger.Debug("skipping oversized file", "path", path, "size", fileInfo.Size())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if !utf8.Valid(data) {
			logger.Debug("skipping non-text file", "path", path)
			return nil
		}

		mu.Lock()
		files[treePath(absRoot, path)] = string(data)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(folders)
	filePaths := make([]string, 0, len(files))
	for p := range files {
		filePaths = append(filePaths, p)
	}
	sort.Strings(filePaths)

	root := tree.NewRoot()
	for _, p := range folders {
		root = tree.UpsertFolder(root, p)
	}
	for _, p := range filePaths {
		root = tree.UpsertFile(root, p, files[p])
	}
	return root, nil
}

// treePath maps an absolute filesystem path under root to a project
// tree path.
func treePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "/" + filepath.ToSlash(filepath.Base(path))
	}
	return "/" + filepath.ToSlash(rel)
}

// ExportTree writes every node of the tree under dir, creating folders
// as needed.
func ExportTree(root *tree.Node, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for path, content := range tree.ContentMap(root) {
		target := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(path, "/")))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return err
		}
	}
	// Folders with no files still get a directory on disk.
	return exportFolders(root, dir)
}

func exportFolders(n *tree.Node, dir string) error {
	for _, child := range n.Children {
		if !child.IsFolder() {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(child.Path, "/")))
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		if err := exportFolders(child, dir); err != nil {
			return err
		}
	}
	return nil
}
