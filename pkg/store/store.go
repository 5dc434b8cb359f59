// Package store persists named dependency graph snapshots.
//
// A snapshot is a finalized graph saved under a generated ID, so a
// build pipeline can record its dependency tree and compare or review
// it later. Two backends are provided:
//
//   - memory: process-local storage for development and tests
//   - mongo: MongoDB-backed storage for the server
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cargodot/cargodot/pkg/graph"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved dependency graph.
type Snapshot struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
}

// NewSnapshot creates a snapshot of g with a fresh ID.
func NewSnapshot(name string, g graph.Graph) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Graph:     g,
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot. Saving an existing ID replaces it.
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]*Snapshot, error)

	// Delete removes a snapshot.
	// Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
