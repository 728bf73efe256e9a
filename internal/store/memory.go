package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/MattEddy/coterie/internal/model"
)

// Memory is an in-memory store with the seeded taxonomy and no backing
// medium. It exists for tests and throwaway sessions; it honors the
// same contract as the persistent backends.
type Memory struct {
	mirror
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store pre-seeded with the taxonomy.
func NewMemory() *Memory {
	m := &Memory{}
	m.setAll(Snapshot{
		Classes:           model.SeedClasses(),
		Types:             model.SeedTypes(),
		RelationshipTypes: model.SeedRelationshipTypes(),
	})
	return m
}

// FetchAll is a no-op; memory is its own backing store.
func (m *Memory) FetchAll(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateObject(ctx context.Context, class, name string, initialTypes []string, attrs model.Attributes) (model.GraphObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateNewObject(class, name, initialTypes); err != nil {
		return model.GraphObject{}, err
	}
	if attrs == nil {
		attrs = model.Attributes{}
	}
	obj := model.GraphObject{
		ID:        uuid.NewString(),
		Class:     class,
		Name:      name,
		Data:      attrs,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	m.objectCreated(obj)
	for _, typeID := range initialTypes {
		if err := m.validateAssignment(obj.ID, typeID); err != nil {
			return model.GraphObject{}, err
		}
		m.assignmentUpserted(model.TypeAssignment{ObjectID: obj.ID, TypeID: typeID})
	}
	return obj, nil
}

func (m *Memory) UpdateObject(ctx context.Context, obj model.GraphObject) (model.GraphObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.snap.Object(obj.ID)
	if !ok {
		return model.GraphObject{}, NewError(CodeNotFound, "object %s not found", obj.ID)
	}
	stored.Name = obj.Name
	stored.Data = obj.Data
	stored.MapX = obj.MapX
	stored.MapY = obj.MapY
	stored.UpdatedAt = now()
	m.objectUpdated(stored)
	return stored, nil
}

func (m *Memory) DeleteObject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objectDeleted(id)
	return nil
}

func (m *Memory) AssignType(ctx context.Context, objectID, typeID string, isPrimary bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateAssignment(objectID, typeID); err != nil {
		return err
	}
	m.assignmentUpserted(model.TypeAssignment{ObjectID: objectID, TypeID: typeID, IsPrimary: isPrimary})
	return nil
}

func (m *Memory) RemoveType(ctx context.Context, objectID, typeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snap.Object(objectID); !ok {
		return NewError(CodeNotFound, "object %s not found", objectID)
	}
	m.assignmentRemoved(objectID, typeID)
	return nil
}

func (m *Memory) CreateRelationship(ctx context.Context, sourceID, targetID, relType string, attrs model.Attributes) (model.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateNewRelationship(sourceID, targetID, relType); err != nil {
		return model.Relationship{}, err
	}
	if attrs == nil {
		attrs = model.Attributes{}
	}
	rel := model.Relationship{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      relType,
		Data:      attrs,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	m.relationshipCreated(rel)
	return rel, nil
}

func (m *Memory) DeleteRelationship(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationshipDeleted(id)
	return nil
}
