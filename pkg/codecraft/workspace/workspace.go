// Package workspace coordinates the authoritative project tree: it
// drives activation (remote load with local fallback), applies tree
// mutations, persists every snapshot to the local cache synchronously
// and pushes to the remote store through a debounced, best-effort
// flush. The local copy is the presumed source of truth; the remote is
// eventually caught up, never authoritative once local has diverged.
package workspace

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codecrafthq/codecraft/pkg/codecraft/cache"
	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/paths"
	"github.com/codecrafthq/codecraft/pkg/codecraft/remote"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// Workspace owns the tree of the active project and the editor session
// state around it (open tabs, active file).
type Workspace struct {
	store    remote.Store
	projects *cache.Cache
	events   *Broadcaster
	debounce time.Duration
	logger   *log.Logger

	mu          sync.RWMutex
	projectID   string
	projectName string
	root        *tree.Node
	openTabs    []string
	activeFile  string
	pusher      *pusher
}

// New creates a workspace over the given remote store and local cache.
// A non-positive debounce uses DefaultDebounce.
func New(store remote.Store, projects *cache.Cache, debounce time.Duration) *Workspace {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Workspace{
		store:    store,
		projects: projects,
		events:   NewBroadcaster(),
		debounce: debounce,
		logger:   logging.Get("workspace"),
	}
}

// Events returns the broadcaster for workspace events.
func (w *Workspace) Events() *Broadcaster {
	return w.events
}

// Close stops the active pusher and the event broadcaster. An
// in-flight push completes in the background.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.pusher != nil {
		w.pusher.stop()
	}
	w.mu.Unlock()
	w.events.Close()
}

// Activate loads a project and makes it the active one. Sources are
// tried in order: remote store, local cache, starter template. Exactly
// one source wins; there is no merging. Load failures fall through to
// the next tier, so activation always yields a working tree.
func (w *Workspace) Activate(ctx context.Context, id string) error {
	root, name, tabs, active := w.loadProject(ctx, id)

	w.mu.Lock()
	if w.pusher != nil {
		// The previous project's pending push may still run to
		// completion; it just stops being rescheduled.
		w.pusher.stop()
	}
	w.projectID = id
	w.projectName = name
	w.root = root
	w.openTabs = tabs
	w.activeFile = active
	w.pusher = newPusher(w.store, id, name, w.debounce)
	w.mu.Unlock()

	if err := w.projects.SetActiveProject(id); err != nil {
		return err
	}
	if err := w.persist(); err != nil {
		return err
	}

	w.events.Notify(Event{Type: EventProjectSwitched, ProjectID: id})
	return nil
}

func (w *Workspace) loadProject(ctx context.Context, id string) (root *tree.Node, name string, tabs []string, active string) {
	project, err := w.store.GetProject(ctx, id)
	if err != nil {
		w.logger.Warn("remote load failed, trying cache", "project", id, "error", err)
	}
	if project != nil && len(project.Files) > 0 {
		root = tree.FromFlatRecords(project.Files)
		active = tree.FirstFilePath(root)
		if active != "" {
			tabs = []string{active}
		}
		return root, project.Record.Name, tabs, active
	}

	state, err := w.projects.Load(id)
	if err != nil {
		w.logger.Warn("cache load failed, using starter", "project", id, "error", err)
	}
	if state != nil && state.Tree != nil {
		name = id
		if entries, err := w.projects.ListIndex(); err == nil {
			for _, entry := range entries {
				if entry.ID == id {
					name = entry.Name
					break
				}
			}
		}
		active = state.ActiveFile
		if active == "" {
			active = tree.FirstFilePath(state.Tree)
		}
		return state.Tree, name, state.OpenTabs, active
	}

	root = tree.Starter()
	active = tree.FirstFilePath(root)
	return root, id, []string{active}, active
}

// CreateProject derives a unique slug from name, creates the project
// remotely and activates it. When remote creation fails the project is
// created from the starter template locally under the same id, so the
// user ends up in a working project either way.
func (w *Workspace) CreateProject(ctx context.Context, name string) (string, error) {
	id := paths.UniqueSlug(paths.Slugify(name), w.knownProjectIDs(ctx))

	if _, err := w.store.CreateProject(ctx, id, name); err != nil {
		w.logger.Warn("remote create failed, creating locally", "project", id, "error", err)
		state := &cache.ProjectState{Tree: tree.Starter()}
		state.ActiveFile = tree.FirstFilePath(state.Tree)
		state.OpenTabs = []string{state.ActiveFile}
		if err := w.projects.Save(id, name, state); err != nil {
			return "", err
		}
	}

	if err := w.Activate(ctx, id); err != nil {
		return "", err
	}
	w.events.Notify(Event{Type: EventProjectCreated, ProjectID: id})
	return id, nil
}

// DeleteProject removes a project remotely (best-effort) and from the
// local cache (unconditionally). The caller selects the next active
// project.
func (w *Workspace) DeleteProject(ctx context.Context, id string) error {
	if err := w.store.DeleteProject(ctx, id); err != nil {
		w.logger.Warn("remote delete failed", "project", id, "error", err)
	}
	if err := w.projects.RemoveProject(id); err != nil {
		return err
	}

	w.mu.Lock()
	if w.projectID == id {
		if w.pusher != nil {
			w.pusher.stop()
		}
		w.projectID = ""
		w.projectName = ""
		w.root = nil
		w.openTabs = nil
		w.activeFile = ""
		w.pusher = nil
	}
	w.mu.Unlock()

	w.events.Notify(Event{Type: EventProjectDeleted, ProjectID: id})
	return nil
}

// ListProjects returns the known projects, most recently modified
// first. The remote listing wins when reachable; otherwise the local
// index serves.
func (w *Workspace) ListProjects(ctx context.Context) ([]cache.IndexEntry, error) {
	records, err := w.store.ListProjects(ctx)
	if err == nil {
		entries := make([]cache.IndexEntry, 0, len(records))
		for _, record := range records {
			entries = append(entries, cache.IndexEntry{
				ID:           record.ID,
				Name:         record.Name,
				CreatedAt:    record.CreatedAt,
				LastModified: record.LastModified,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].LastModified > entries[j].LastModified
		})
		return entries, nil
	}

	w.logger.Warn("remote list failed, using local index", "error", err)
	return w.projects.ListIndex()
}

func (w *Workspace) knownProjectIDs(ctx context.Context) []string {
	var ids []string
	if records, err := w.store.ListProjects(ctx); err == nil {
		for _, record := range records {
			ids = append(ids, record.ID)
		}
	}
	if entries, err := w.projects.ListIndex(); err == nil {
		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

// ProjectID returns the active project id, or "" when none is active.
func (w *Workspace) ProjectID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.projectID
}

// ProjectName returns the active project's display name.
func (w *Workspace) ProjectName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.projectName
}

// Tree returns the current snapshot. Snapshots are never mutated in
// place, so the caller may read it without holding any lock.
func (w *Workspace) Tree() *tree.Node {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}

// ContentMap returns the path to content view of the current snapshot.
func (w *Workspace) ContentMap() map[string]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.root == nil {
		return map[string]string{}
	}
	return tree.ContentMap(w.root)
}

// OpenTabs returns a copy of the open tab list.
func (w *Workspace) OpenTabs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tabs := make([]string, len(w.openTabs))
	copy(tabs, w.openTabs)
	return tabs
}

// ActiveFile returns the active file path, or "" when none is open.
func (w *Workspace) ActiveFile() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.activeFile
}

// Saving reports whether a remote push is pending or in-flight.
func (w *Workspace) Saving() bool {
	w.mu.RLock()
	p := w.pusher
	w.mu.RUnlock()
	return p != nil && p.busy()
}

// Flush pushes any pending changes to the remote store immediately,
// without waiting out the debounce window.
func (w *Workspace) Flush(ctx context.Context) {
	w.mu.RLock()
	p := w.pusher
	w.mu.RUnlock()
	if p != nil {
		p.flush(ctx)
	}
}

// WriteFile creates or replaces a file at path with the given content.
func (w *Workspace) WriteFile(path, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked(tree.UpsertFile(w.root, path, content))
}

// CreateFile creates an empty file at path, keeping existing content
// if the file already exists, and opens it.
func (w *Workspace) CreateFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.commitLocked(tree.EnsureFile(w.root, path)); err != nil {
		return err
	}
	return w.openTabLocked(path)
}

// CreateFolder creates a folder at path.
func (w *Workspace) CreateFolder(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked(tree.UpsertFolder(w.root, path))
}

// Rename renames the node at path. Open tabs pointing at or under the
// renamed node follow it to its new path.
func (w *Workspace) Rename(path, newName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := tree.RenameNode(w.root, path, newName)
	if err != nil {
		return err
	}
	newPath := paths.Join(paths.Parent(path), strings.TrimSpace(newName))
	w.remapTabsLocked(path, newPath)
	return w.commitLocked(next)
}

// Move moves the node at source relative to target. Illegal moves are
// silent no-ops, matching drag-and-drop semantics where an invalid
// drop is ignored. Open tabs follow the moved subtree.
func (w *Workspace) Move(source, target string, pos tree.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := tree.MoveNode(w.root, source, target, pos)
	if next == w.root {
		return nil
	}
	newParent := target
	if pos == tree.PositionAfter {
		newParent = paths.Parent(target)
	}
	w.remapTabsLocked(source, paths.Join(newParent, paths.Base(source)))
	return w.commitLocked(next)
}

// Delete removes the node at path and its descendants. Any tab at or
// under the deleted path is closed; if the active file was affected the
// first remaining file is selected.
func (w *Workspace) Delete(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := tree.DeleteNode(w.root, path)
	if next == w.root {
		return nil
	}

	var kept []string
	for _, tab := range w.openTabs {
		if tab == path || paths.IsDescendant(path, tab) {
			continue
		}
		kept = append(kept, tab)
	}
	w.openTabs = kept
	if w.activeFile == path || paths.IsDescendant(path, w.activeFile) {
		w.activeFile = tree.FirstFilePath(next)
		if w.activeFile != "" && !contains(w.openTabs, w.activeFile) {
			w.openTabs = append(w.openTabs, w.activeFile)
		}
	}
	return w.commitLocked(next)
}

// OpenFile opens path in a tab and makes it the active file.
func (w *Workspace) OpenFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.openTabLocked(path)
}

// CloseTab closes the tab at path. Closing the active tab selects the
// last remaining tab, then the first file in the tree, then nothing.
func (w *Workspace) CloseTab(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var kept []string
	for _, tab := range w.openTabs {
		if tab != path {
			kept = append(kept, tab)
		}
	}
	w.openTabs = kept

	if w.activeFile == path {
		switch {
		case len(kept) > 0:
			w.activeFile = kept[len(kept)-1]
		default:
			w.activeFile = tree.FirstFilePath(w.root)
		}
	}
	return w.persistLocked()
}

func (w *Workspace) openTabLocked(path string) error {
	if tree.Find(w.root, path) == nil {
		return tree.ErrNotFound
	}
	if !contains(w.openTabs, path) {
		w.openTabs = append(w.openTabs, path)
	}
	w.activeFile = path
	return w.persistLocked()
}

// commitLocked installs a new snapshot, persists it to the cache and
// schedules a remote push. The cache write is synchronous and happens
// before the push is scheduled, so the cache is always at least as
// fresh as the last successful push.
func (w *Workspace) commitLocked(next *tree.Node) error {
	if next == w.root {
		return nil
	}
	w.root = next
	if err := w.persistLocked(); err != nil {
		return err
	}
	if w.pusher != nil {
		w.pusher.notify(next)
	}
	w.events.Notify(Event{Type: EventTreeChanged, ProjectID: w.projectID})
	return nil
}

func (w *Workspace) persist() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.persistLocked()
}

func (w *Workspace) persistLocked() error {
	if w.projectID == "" || w.root == nil {
		return nil
	}
	state := &cache.ProjectState{
		Tree:       w.root,
		OpenTabs:   w.openTabs,
		ActiveFile: w.activeFile,
	}
	return w.projects.Save(w.projectID, w.projectName, state)
}

// remapTabsLocked rewrites tab and active-file paths after a rename or
// move, so the session keeps following the files it had open.
func (w *Workspace) remapTabsLocked(oldPath, newPath string) {
	rewrite := func(p string) string {
		if p == oldPath {
			return newPath
		}
		if paths.IsDescendant(oldPath, p) {
			return newPath + p[len(oldPath):]
		}
		return p
	}
	for i, tab := range w.openTabs {
		w.openTabs[i] = rewrite(tab)
	}
	w.activeFile = rewrite(w.activeFile)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
