package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/DanJbk/tilequest/pkg/world"
)

// Storage persists session snapshots between runs.
type Storage interface {
	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the storage connection.
	Close() error

	// SaveSession stores a snapshot under the session id, replacing any
	// previous save.
	SaveSession(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error

	// LoadSession retrieves a snapshot. A missing session returns (nil, nil).
	LoadSession(ctx context.Context, id uuid.UUID) (*world.Snapshot, error)

	// DeleteSession removes a saved session. Deleting a missing session is
	// not an error.
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
