package store

import (
	"context"

	"github.com/MattEddy/coterie/internal/model"
)

// Store is the graph store contract. Every implementation keeps an
// in-memory mirror of the last FetchAll; a mutating call updates the
// mirror only after the backing write succeeds, and all mutations plus
// FetchAll are serialized with respect to each other.
//
// Missing-id policy, applied uniformly: writes that reference an absent
// id fail with NOT_FOUND; deletes of absent ids are silent no-ops.
type Store interface {
	// FetchAll loads the full graph into the mirror. Objects are
	// ordered by name ascending.
	FetchAll(ctx context.Context) error

	// Snapshot returns a copy of the current mirror for I/O-free
	// querying.
	Snapshot() *Snapshot

	// CreateObject allocates an id, persists the object, and applies
	// each initial type via AssignType (non-primary). It returns the
	// canonical stored object.
	CreateObject(ctx context.Context, class, name string, initialTypes []string, attrs model.Attributes) (model.GraphObject, error)

	// UpdateObject replaces the stored name, attributes, and position
	// of obj and refreshes its updated_at. The canonical stored object
	// is returned.
	UpdateObject(ctx context.Context, obj model.GraphObject) (model.GraphObject, error)

	// DeleteObject removes the object, its type assignments, and every
	// relationship touching it.
	DeleteObject(ctx context.Context, id string) error

	// AssignType upserts an (object, type) assignment, overwriting
	// isPrimary when the pair already exists. The type must exist and
	// belong to the object's class.
	AssignType(ctx context.Context, objectID, typeID string, isPrimary bool) error

	// RemoveType removes an assignment; absent pairs are a no-op.
	RemoveType(ctx context.Context, objectID, typeID string) error

	// CreateRelationship persists a typed edge. A duplicate
	// (source, target, type) triple fails with CONFLICT.
	CreateRelationship(ctx context.Context, sourceID, targetID, relType string, attrs model.Attributes) (model.Relationship, error)

	// DeleteRelationship removes an edge; absent ids are a no-op.
	DeleteRelationship(ctx context.Context, id string) error

	Close() error
}
