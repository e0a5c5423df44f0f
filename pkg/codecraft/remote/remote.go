// Package remote provides the client side of the project store API.
// The store holds one record per project and one flat, parent-linked
// record per file; the nested tree never crosses this boundary.
package remote

import (
	"context"
	"errors"

	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// Error taxonomy for store operations. Callers branch with errors.Is;
// anything else is a transport-level failure wrapped around the cause.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid request")
)

// ProjectRecord describes one project as known to the remote store.
type ProjectRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
	LastModified int64  `json:"lastModified"`
}

// Project is a project record together with its full file set.
type Project struct {
	Record ProjectRecord     `json:"project"`
	Files  []tree.FlatRecord `json:"files"`
}

// Store is the remote project store consumed by the sync coordinator.
// All calls are scoped to the authenticated owner by the store itself.
type Store interface {
	// ListProjects returns the owner's projects, most recently
	// modified first.
	ListProjects(ctx context.Context) ([]ProjectRecord, error)

	// CreateProject creates a project; the store seeds a starter file
	// set server-side. Fails with ErrConflict if the id exists.
	CreateProject(ctx context.Context, id, name string) (*ProjectRecord, error)

	// GetProject returns a project and its files, or (nil, nil) when
	// the project is absent: not-found is an expected outcome of the
	// load chain, not an error.
	GetProject(ctx context.Context, id string) (*Project, error)

	// DeleteProject removes a project and its files. Fails with
	// ErrNotFound if absent or not owned.
	DeleteProject(ctx context.Context, id string) error

	// UpsertFile creates or replaces one file record, keyed by
	// (projectID, record.FileID).
	UpsertFile(ctx context.Context, projectID string, record tree.FlatRecord) error

	// DeleteFile removes one file record.
	DeleteFile(ctx context.Context, projectID, fileID string) error
}
