package bridge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/workspace"
)

// Mirror exposes the active project as real files in a scratch
// directory and folds edits made there back into the workspace, so the
// project can be edited with any local editor.
type Mirror struct {
	ws      *workspace.Workspace
	dir     string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

// NewMirror exports the workspace's current tree into dir and prepares
// a watcher over it.
func NewMirror(ws *workspace.Workspace, dir string) (*Mirror, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := ExportTree(ws.Tree(), absDir); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	m := &Mirror{
		ws:      ws,
		dir:     absDir,
		watcher: fsw,
		paths:   make(map[string]bool),
	}
	if err := m.watchAll(absDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return m, nil
}

// Dir returns the scratch directory holding the exported tree.
func (m *Mirror) Dir() string {
	return m.dir
}

// watchAll adds watches on dir and every subdirectory.
func (m *Mirror) watchAll(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return m.addWatch(path)
		}
		return nil
	})
}

func (m *Mirror) addWatch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.paths[path] {
		return nil
	}
	if err := m.watcher.Add(path); err != nil {
		logging.Get("bridge").Warn("failed to add watch", "path", path, "error", err)
		return err
	}
	m.paths[path] = true
	return nil
}

// Run folds filesystem events back into the workspace until the
// context is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	logger := logging.Get("bridge")
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func (m *Mirror) handleEvent(event fsnotify.Event) {
	path := m.projectPath(event.Name)
	if path == "" {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		m.handleCreate(event.Name, path)
	case event.Op&fsnotify.Write != 0:
		m.handleWrite(event.Name, path)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// A rename shows up as remove plus create under the new name.
		_ = m.ws.Delete(path)
	}
}

func (m *Mirror) handleCreate(fsPath, path string) {
	info, err := os.Lstat(fsPath)
	if err != nil {
		return
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}
	if info.IsDir() {
		_ = m.addWatch(fsPath)
		_ = m.watchAll(fsPath)
		_ = m.ws.CreateFolder(path)
		return
	}
	m.handleWrite(fsPath, path)
}

func (m *Mirror) handleWrite(fsPath, path string) {
	info, err := os.Stat(fsPath)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(fsPath)
	if err != nil {
		return
	}
	if !utf8.Valid(data) {
		return
	}
	if err := m.ws.WriteFile(path, string(data)); err != nil {
		logging.Get("bridge").Warn("writing file to project", "path", path, "error", err)
	}
}

// projectPath maps a filesystem path inside the scratch directory to a
// project tree path, or "" when outside it.
func (m *Mirror) projectPath(fsPath string) string {
	rel, err := filepath.Rel(m.dir, fsPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}

// Close stops watching and releases resources.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.paths = make(map[string]bool)
	return m.watcher.Close()
}
