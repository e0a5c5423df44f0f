package tree_test

import (
	"testing"

	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentMap(t *testing.T) {
	t.Run("maps every file path to its content", func(t *testing.T) {
		files := tree.ContentMap(sampleTree())

		assert.Equal(t, map[string]string{
			"/index.js":                 "index",
			"/App.js":                   "app",
			"/src/components/Button.js": "button",
			"/public/index.html":        "html",
		}, files)
	})

	t.Run("folders contribute nothing", func(t *testing.T) {
		root := tree.UpsertFolder(tree.NewRoot(), "/empty")
		assert.Empty(t, tree.ContentMap(root))
	})

	t.Run("reflects edits immediately", func(t *testing.T) {
		root := sampleTree()
		root = tree.UpsertFile(root, "/App.js", "edited")
		assert.Equal(t, "edited", tree.ContentMap(root)["/App.js"])
	})
}

func TestFlatRecords(t *testing.T) {
	t.Run("emits one record per non-root node", func(t *testing.T) {
		records := tree.FlatRecords(sampleTree())

		byID := make(map[string]tree.FlatRecord, len(records))
		for _, rec := range records {
			byID[rec.FileID] = rec
		}

		require.Len(t, records, 7)

		app := byID["/App.js"]
		assert.Equal(t, tree.KindFile, app.Kind)
		assert.Equal(t, "App.js", app.Name)
		assert.Equal(t, "/", app.ParentID)
		assert.Equal(t, "app", app.Content)

		components := byID["/src/components"]
		assert.Equal(t, tree.KindFolder, components.Kind)
		assert.Equal(t, "/src", components.ParentID)

		button := byID["/src/components/Button.js"]
		assert.Equal(t, "/src/components", button.ParentID)
	})

	t.Run("empty tree emits nothing", func(t *testing.T) {
		assert.Empty(t, tree.FlatRecords(tree.NewRoot()))
	})
}

func TestFromFlatRecords(t *testing.T) {
	t.Run("rebuilds structure and content", func(t *testing.T) {
		records := []tree.FlatRecord{
			{FileID: "/index.js", Name: "index.js", Kind: tree.KindFile, ParentID: "/", Content: "idx"},
			{FileID: "/public", Name: "public", Kind: tree.KindFolder, ParentID: "/"},
			{FileID: "/public/index.html", Name: "index.html", Kind: tree.KindFile, ParentID: "/public", Content: "html"},
		}

		root := tree.FromFlatRecords(records)

		assert.Equal(t, "idx", tree.Find(root, "/index.js").Content)
		public := tree.Find(root, "/public")
		require.NotNil(t, public)
		assert.Equal(t, tree.KindFolder, public.Kind)
		assert.Equal(t, "html", tree.Find(root, "/public/index.html").Content)
	})

	t.Run("tolerates child before parent", func(t *testing.T) {
		records := []tree.FlatRecord{
			{FileID: "/public/index.html", Name: "index.html", Kind: tree.KindFile, ParentID: "/public", Content: "html"},
			{FileID: "/public", Name: "public", Kind: tree.KindFolder, ParentID: "/"},
		}

		root := tree.FromFlatRecords(records)

		public := tree.Find(root, "/public")
		require.NotNil(t, public)
		assert.Equal(t, tree.KindFolder, public.Kind)
		require.Len(t, public.Children, 1)
		assert.Equal(t, "/public/index.html", public.Children[0].Path)

		// The late folder record must not produce a duplicate sibling.
		count := 0
		for _, child := range root.Children {
			if child.Name == "public" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("synthesizes implicit parent folders", func(t *testing.T) {
		records := []tree.FlatRecord{
			{FileID: "/a/b/c.js", Name: "c.js", Kind: tree.KindFile, ParentID: "/a/b", Content: "c"},
		}

		root := tree.FromFlatRecords(records)

		for _, path := range []string{"/a", "/a/b"} {
			node := tree.Find(root, path)
			require.NotNil(t, node, path)
			assert.Equal(t, tree.KindFolder, node.Kind, path)
		}
		assert.Equal(t, "c", tree.Find(root, "/a/b/c.js").Content)
	})

	t.Run("empty input yields empty root", func(t *testing.T) {
		root := tree.FromFlatRecords(nil)
		require.NotNil(t, root)
		assert.Equal(t, "/", root.Path)
		assert.Empty(t, root.Children)
	})
}

func TestRoundTrip(t *testing.T) {
	t.Run("tree to records to tree is isomorphic", func(t *testing.T) {
		original := sampleTree()
		rebuilt := tree.FromFlatRecords(tree.FlatRecords(original))

		assertIsomorphic(t, original, rebuilt)
	})

	t.Run("records to tree to records is permutation equivalent", func(t *testing.T) {
		records := []tree.FlatRecord{
			{FileID: "/public/index.html", Name: "index.html", Kind: tree.KindFile, ParentID: "/public", Content: "html"},
			{FileID: "/public", Name: "public", Kind: tree.KindFolder, ParentID: "/"},
			{FileID: "/App.js", Name: "App.js", Kind: tree.KindFile, ParentID: "/", Content: "app"},
		}

		out := tree.FlatRecords(tree.FromFlatRecords(records))

		assert.ElementsMatch(t, records, out)
	})

	t.Run("starter survives the round trip", func(t *testing.T) {
		assertIsomorphic(t, tree.Starter(), tree.FromFlatRecords(tree.StarterRecords()))
	})
}

// assertIsomorphic checks that two trees contain the same set of paths
// with the same kinds and contents, ignoring child order.
func assertIsomorphic(t *testing.T, want, got *tree.Node) {
	t.Helper()

	wantRecords := tree.FlatRecords(want)
	gotRecords := tree.FlatRecords(got)
	assert.ElementsMatch(t, wantRecords, gotRecords)
}

func TestStarter(t *testing.T) {
	root := tree.Starter()

	for _, path := range []string{"/index.js", "/App.js", "/styles.css", "/public/index.html"} {
		node := tree.Find(root, path)
		require.NotNil(t, node, path)
		assert.Equal(t, tree.KindFile, node.Kind, path)
		assert.NotEmpty(t, node.Content, path)
	}

	assert.Equal(t, "/index.js", tree.FirstFilePath(root))
}
