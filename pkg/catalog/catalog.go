// Package catalog stores metadata and artifacts for rendered snapshots.
//
// A [Snapshot] records the request (bounding box, zoom, layer stack) and
// the resulting artifact (format, size, content hash) under a UUID. The
// [Store] interface has three backends:
//   - memory: in-process map for development and tests
//   - file: JSON files for CLI history
//   - mongo: MongoDB collection for serve mode
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/mosaic"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one rendered mosaic with its request parameters.
type Snapshot struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name,omitempty" bson:"name,omitempty"`
	BBox      geo.BBox       `json:"bbox" bson:"bbox"`
	Zoom      int            `json:"zoom" bson:"zoom"`
	Layers    []mosaic.Layer `json:"layers" bson:"layers"`
	Format    string         `json:"format" bson:"format"`
	Width     int            `json:"width" bson:"width"`
	Height    int            `json:"height" bson:"height"`
	Size      int            `json:"size" bson:"size"`
	Hash      string         `json:"hash" bson:"hash"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`

	// Image holds the encoded artifact. Excluded from JSON listings;
	// served by the dedicated image endpoint.
	Image []byte `json:"-" bson:"image"`
}

// New creates a snapshot record with a fresh UUID and creation time.
func New() *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by ID.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Put stores a snapshot.
	Put(ctx context.Context, s *Snapshot) error

	// Delete removes a snapshot. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all snapshots sorted by creation time, newest first.
	// Artifacts (Image) may be omitted from listings.
	List(ctx context.Context) ([]*Snapshot, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
