package workspace_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrafthq/codecraft/pkg/codecraft/cache"
	"github.com/codecrafthq/codecraft/pkg/codecraft/remote"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
	"github.com/codecrafthq/codecraft/pkg/codecraft/workspace"
)

// fakeStore is an in-memory remote.Store that records calls. Creating
// a project seeds the starter file set, mirroring the server.
type fakeStore struct {
	mu        sync.Mutex
	projects  map[string]*remote.Project
	upserts   map[string][]string
	created   []string
	deleted   []string
	getErr    error
	listErr   error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*remote.Project),
		upserts:  make(map[string][]string),
	}
}

func (s *fakeStore) ListProjects(ctx context.Context) ([]remote.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var records []remote.ProjectRecord
	for _, p := range s.projects {
		records = append(records, p.Record)
	}
	return records, nil
}

func (s *fakeStore) CreateProject(ctx context.Context, id, name string) (*remote.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.projects[id]; ok {
		return nil, remote.ErrConflict
	}
	project := &remote.Project{
		Record: remote.ProjectRecord{ID: id, Name: name},
		Files:  tree.StarterRecords(),
	}
	s.projects[id] = project
	s.created = append(s.created, id)
	return &project.Record, nil
}

func (s *fakeStore) GetProject(ctx context.Context, id string) (*remote.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.projects[id], nil
}

func (s *fakeStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return remote.ErrNotFound
	}
	delete(s.projects, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) UpsertFile(ctx context.Context, projectID string, record tree.FlatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts[projectID] = append(s.upserts[projectID], record.FileID)
	return nil
}

func (s *fakeStore) DeleteFile(ctx context.Context, projectID, fileID string) error {
	return nil
}

func (s *fakeStore) upsertsFor(projectID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.upserts[projectID]))
	copy(out, s.upserts[projectID])
	return out
}

func newWorkspace(t *testing.T, store remote.Store, debounce time.Duration) (*workspace.Workspace, *cache.Cache) {
	t.Helper()
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	w := workspace.New(store, c, debounce)
	t.Cleanup(w.Close)
	return w, c
}

func TestActivateFromRemote(t *testing.T) {
	store := newFakeStore()
	_, err := store.CreateProject(context.Background(), "demo", "Demo")
	require.NoError(t, err)

	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	assert.Equal(t, "demo", w.ProjectID())
	assert.Equal(t, "Demo", w.ProjectName())
	assert.NotNil(t, tree.Find(w.Tree(), "/public/index.html"))
	assert.Equal(t, "/index.js", w.ActiveFile())
	assert.Equal(t, []string{"/index.js"}, w.OpenTabs())
}

func TestActivateFallsBackToCache(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("network down")

	w, c := newWorkspace(t, store, time.Minute)
	state := &cache.ProjectState{
		Tree:       tree.UpsertFile(tree.NewRoot(), "/cached.js", "from cache"),
		OpenTabs:   []string{"/cached.js"},
		ActiveFile: "/cached.js",
	}
	require.NoError(t, c.Save("demo", "Demo", state))

	require.NoError(t, w.Activate(context.Background(), "demo"))
	assert.NotNil(t, tree.Find(w.Tree(), "/cached.js"))
	assert.Nil(t, tree.Find(w.Tree(), "/index.js"))
	assert.Equal(t, "/cached.js", w.ActiveFile())
}

func TestActivateFallsBackToStarter(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("network down")

	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "fresh"))

	for _, path := range []string{"/index.js", "/App.js", "/styles.css", "/public/index.html"} {
		assert.NotNil(t, tree.Find(w.Tree(), path), path)
	}
	assert.Equal(t, "/index.js", w.ActiveFile())
}

func TestMutationPushesAfterDebounce(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, 20*time.Millisecond)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.WriteFile("/App.js", "updated"))
	assert.Equal(t, "updated", w.ContentMap()["/App.js"])
	assert.Empty(t, store.upsertsFor("demo"))

	require.Eventually(t, func() bool {
		return len(store.upsertsFor("demo")) > 0 && !w.Saving()
	}, 2*time.Second, 5*time.Millisecond)

	// The project did not exist remotely, so the flush created it
	// before upserting every record of the tree.
	assert.Contains(t, store.created, "demo")
	expected := make([]string, 0)
	for _, record := range tree.FlatRecords(w.Tree()) {
		expected = append(expected, record.FileID)
	}
	assert.ElementsMatch(t, expected, store.upsertsFor("demo"))
}

func TestBurstCoalescesIntoOnePush(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, 30*time.Millisecond)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.WriteFile("/a.js", "1"))
	require.NoError(t, w.WriteFile("/a.js", "2"))
	require.NoError(t, w.WriteFile("/a.js", "3"))

	require.Eventually(t, func() bool {
		return len(store.upsertsFor("demo")) > 0 && !w.Saving()
	}, 2*time.Second, 5*time.Millisecond)

	// One push of the final snapshot, not one per mutation.
	var hits int
	for _, id := range store.upsertsFor("demo") {
		if id == "/a.js" {
			hits++
		}
	}
	assert.Equal(t, 1, hits)
}

func TestFlushPushesImmediately(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.WriteFile("/App.js", "updated"))
	w.Flush(context.Background())

	assert.Contains(t, store.upsertsFor("demo"), "/App.js")
	assert.False(t, w.Saving())
}

func TestSwitchLetsPendingPushComplete(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, 20*time.Millisecond)
	require.NoError(t, w.Activate(context.Background(), "first"))
	require.NoError(t, w.WriteFile("/one.js", "x"))

	// Switching re-keys scheduling to the new project but the armed
	// push for the old one still fires.
	require.NoError(t, w.Activate(context.Background(), "second"))

	require.Eventually(t, func() bool {
		return len(store.upsertsFor("first")) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, store.upsertsFor("first"), "/one.js")
}

func TestCreateProjectRemote(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)

	id, err := w.CreateProject(context.Background(), "My Cool App!!")
	require.NoError(t, err)
	assert.Equal(t, "my-cool-app", id)
	assert.Equal(t, id, w.ProjectID())
	assert.NotNil(t, tree.Find(w.Tree(), "/App.js"))
}

func TestCreateProjectFallsBackLocally(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("network down")
	store.getErr = errors.New("network down")

	w, c := newWorkspace(t, store, time.Minute)
	id, err := w.CreateProject(context.Background(), "Offline App")
	require.NoError(t, err)
	assert.Equal(t, "offline-app", id)
	assert.NotNil(t, tree.Find(w.Tree(), "/index.js"))

	state, err := c.Load(id)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.NotNil(t, tree.Find(state.Tree, "/index.js"))
}

func TestCreateProjectUniqueSlug(t *testing.T) {
	store := newFakeStore()
	_, err := store.CreateProject(context.Background(), "demo", "Demo")
	require.NoError(t, err)

	w, _ := newWorkspace(t, store, time.Minute)
	id, err := w.CreateProject(context.Background(), "Demo")
	require.NoError(t, err)
	assert.Equal(t, "demo-1", id)
}

func TestDeleteProject(t *testing.T) {
	store := newFakeStore()
	w, c := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.DeleteProject(context.Background(), "demo"))
	assert.Empty(t, w.ProjectID())
	state, err := c.Load("demo")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestTabBookkeeping(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.OpenFile("/App.js"))
	require.NoError(t, w.OpenFile("/styles.css"))
	require.NoError(t, w.OpenFile("/App.js")) // No duplicate tab.
	assert.Equal(t, []string{"/index.js", "/App.js", "/styles.css"}, w.OpenTabs())
	assert.Equal(t, "/App.js", w.ActiveFile())

	// Closing the active tab selects the last remaining one.
	require.NoError(t, w.CloseTab("/App.js"))
	assert.Equal(t, []string{"/index.js", "/styles.css"}, w.OpenTabs())
	assert.Equal(t, "/styles.css", w.ActiveFile())

	// Closing an inactive tab leaves the active file alone.
	require.NoError(t, w.CloseTab("/index.js"))
	assert.Equal(t, "/styles.css", w.ActiveFile())

	// Closing the last tab falls back to the first file in the tree.
	require.NoError(t, w.CloseTab("/styles.css"))
	assert.Empty(t, w.OpenTabs())
	assert.Equal(t, "/index.js", w.ActiveFile())
}

func TestDeleteClosesAffectedTabs(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.OpenFile("/public/index.html"))
	require.NoError(t, w.Delete("/public"))

	assert.Nil(t, tree.Find(w.Tree(), "/public/index.html"))
	assert.NotContains(t, w.OpenTabs(), "/public/index.html")
	assert.Equal(t, "/index.js", w.ActiveFile())
}

func TestRenameRemapsTabs(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.OpenFile("/public/index.html"))
	require.NoError(t, w.Rename("/public", "assets"))

	assert.Contains(t, w.OpenTabs(), "/assets/index.html")
	assert.Equal(t, "/assets/index.html", w.ActiveFile())
}

func TestMoveIntoFolderRemapsTabs(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)
	require.NoError(t, w.Activate(context.Background(), "demo"))

	require.NoError(t, w.OpenFile("/App.js"))
	require.NoError(t, w.Move("/App.js", "/public", tree.PositionInto))

	assert.Nil(t, tree.Find(w.Tree(), "/App.js"))
	node := tree.Find(w.Tree(), "/public/App.js")
	require.NotNil(t, node)
	assert.Equal(t, "/public/App.js", w.ActiveFile())
}

func TestProjectSwitchedEvent(t *testing.T) {
	store := newFakeStore()
	w, _ := newWorkspace(t, store, time.Minute)

	sub := w.Events().Subscribe()
	require.NotNil(t, sub)
	defer w.Events().Unsubscribe(sub.ID)

	require.NoError(t, w.Activate(context.Background(), "demo"))

	select {
	case event := <-sub.Events:
		assert.Equal(t, workspace.EventProjectSwitched, event.Type)
		assert.Equal(t, "demo", event.ProjectID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
