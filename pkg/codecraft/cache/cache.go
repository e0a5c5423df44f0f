// Package cache provides Badger DB-backed persistence of project state
// for offline continuity. The cache keeps a serialized copy of every
// project the user has touched plus a small index used to list them,
// and it is always written synchronously before any remote push is
// scheduled, so it is at least as fresh as the remote copy.
package cache

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v4"

	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// Key prefixes for different data types
const (
	prefixProject = "p:" // Serialized project state
	prefixIndex   = "i:" // Project index entries
	keyActive     = "m:active"
)

// ProjectState is the serialized per-project state: the tree plus the
// editor session around it.
type ProjectState struct {
	Tree       *tree.Node `json:"tree"`
	OpenTabs   []string   `json:"openTabs"`
	ActiveFile string     `json:"activeFile"`
}

// IndexEntry describes one project in the local index.
type IndexEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt"`
	LastModified int64  `json:"lastModified"`
}

// Cache is the project cache backed by Badger DB.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// DefaultPath returns $XDG_DATA_HOME/codecraft/cache.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "codecraft", "cache")
}

// Load retrieves a project's cached state. A missing project returns
// (nil, nil): absence is an expected fallback-chain outcome, not an
// error.
func (c *Cache) Load(id string) (*ProjectState, error) {
	var state ProjectState

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixProject + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// Save stores a project's state and updates its index entry, bumping
// LastModified (and setting CreatedAt for a first save).
func (c *Cache) Save(id, name string, state *ProjectState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixProject+id), data); err != nil {
			return err
		}

		entry := IndexEntry{ID: id, Name: name, CreatedAt: now, LastModified: now}
		if item, err := txn.Get([]byte(prefixIndex + id)); err == nil {
			var prev IndexEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &prev)
			}); err == nil {
				entry.CreatedAt = prev.CreatedAt
				if name == "" {
					entry.Name = prev.Name
				}
			}
		}
		if entry.Name == "" {
			entry.Name = id
		}

		entryData, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return txn.Set([]byte(prefixIndex+id), entryData)
	})
}

// ListIndex returns all cached projects, most recently modified first.
func (c *Cache) ListIndex() ([]IndexEntry, error) {
	var entries []IndexEntry

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixIndex)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry IndexEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return nil // Skip invalid entries
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastModified > entries[j].LastModified
	})

	return entries, nil
}

// RemoveProject deletes a project's state and index entry.
func (c *Cache) RemoveProject(id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(prefixProject + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixIndex + id))
	})
}

// ActiveProject returns the id of the last active project, or "" if
// none has been recorded.
func (c *Cache) ActiveProject() (string, error) {
	var id string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyActive))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	return id, err
}

// SetActiveProject records the active project id.
func (c *Cache) SetActiveProject(id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyActive), []byte(id))
	})
}
