package store

import (
	"strings"
	"sync"
	"time"

	"github.com/MattEddy/coterie/internal/model"
)

// mirror is the shared in-memory state embedded by every backend. Its
// mutex serializes whole store operations (including the backing I/O
// call), so the snapshot never interleaves pre- and post-mutation
// state. Apply and validation helpers must be called with mu held.
type mirror struct {
	mu   sync.Mutex
	snap Snapshot
}

func (m *mirror) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

// now returns the wall clock truncated to seconds so timestamps survive
// an ISO-8601 round trip through either backend unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func (m *mirror) setAll(snap Snapshot) {
	m.snap = snap
}

func (m *mirror) objectCreated(o model.GraphObject) {
	m.snap.Objects = append(m.snap.Objects, o)
}

func (m *mirror) objectUpdated(o model.GraphObject) {
	for i := range m.snap.Objects {
		if m.snap.Objects[i].ID == o.ID {
			m.snap.Objects[i] = o
			return
		}
	}
}

// objectDeleted removes the object and cascades: its assignments and
// every relationship where it is source or target go with it.
func (m *mirror) objectDeleted(id string) {
	objects := m.snap.Objects[:0]
	for _, o := range m.snap.Objects {
		if o.ID != id {
			objects = append(objects, o)
		}
	}
	m.snap.Objects = objects

	assignments := m.snap.Assignments[:0]
	for _, a := range m.snap.Assignments {
		if a.ObjectID != id {
			assignments = append(assignments, a)
		}
	}
	m.snap.Assignments = assignments

	relationships := m.snap.Relationships[:0]
	for _, r := range m.snap.Relationships {
		if r.SourceID != id && r.TargetID != id {
			relationships = append(relationships, r)
		}
	}
	m.snap.Relationships = relationships
}

func (m *mirror) assignmentUpserted(a model.TypeAssignment) {
	for i := range m.snap.Assignments {
		if m.snap.Assignments[i].ObjectID == a.ObjectID && m.snap.Assignments[i].TypeID == a.TypeID {
			m.snap.Assignments[i] = a
			return
		}
	}
	m.snap.Assignments = append(m.snap.Assignments, a)
}

func (m *mirror) assignmentRemoved(objectID, typeID string) {
	assignments := m.snap.Assignments[:0]
	for _, a := range m.snap.Assignments {
		if a.ObjectID != objectID || a.TypeID != typeID {
			assignments = append(assignments, a)
		}
	}
	m.snap.Assignments = assignments
}

func (m *mirror) relationshipCreated(r model.Relationship) {
	m.snap.Relationships = append(m.snap.Relationships, r)
}

func (m *mirror) relationshipDeleted(id string) {
	relationships := m.snap.Relationships[:0]
	for _, r := range m.snap.Relationships {
		if r.ID != id {
			relationships = append(relationships, r)
		}
	}
	m.snap.Relationships = relationships
}

// validateNewObject checks CreateObject input against the taxonomy
// before anything is written.
func (m *mirror) validateNewObject(class, name string, initialTypes []string) error {
	if strings.TrimSpace(name) == "" {
		return NewError(CodeValidation, "object name must not be empty")
	}
	if _, ok := m.snap.Class(class); !ok {
		return NewError(CodeValidation, "unknown object class %q", class)
	}
	for _, typeID := range initialTypes {
		if err := m.validateTypeForClass(typeID, class); err != nil {
			return err
		}
	}
	return nil
}

func (m *mirror) validateTypeForClass(typeID, class string) error {
	t, ok := m.snap.Type(typeID)
	if !ok {
		return NewError(CodeValidation, "unknown object type %q", typeID)
	}
	if t.Class != class {
		return NewError(CodeValidation, "type %q belongs to class %q, not %q", typeID, t.Class, class)
	}
	return nil
}

// validateAssignment covers AssignType and RemoveType: the object must
// exist, and for assignment the type must match the object's class.
func (m *mirror) validateAssignment(objectID, typeID string) error {
	obj, ok := m.snap.Object(objectID)
	if !ok {
		return NewError(CodeNotFound, "object %s not found", objectID)
	}
	return m.validateTypeForClass(typeID, obj.Class)
}

// validateNewRelationship checks endpoints, type, and the uniqueness of
// the (source, target, type) triple.
func (m *mirror) validateNewRelationship(sourceID, targetID, relType string) error {
	if _, ok := m.snap.Object(sourceID); !ok {
		return NewError(CodeNotFound, "source object %s not found", sourceID)
	}
	if _, ok := m.snap.Object(targetID); !ok {
		return NewError(CodeNotFound, "target object %s not found", targetID)
	}
	if _, ok := m.snap.RelationshipTypeByID(relType); !ok {
		return NewError(CodeValidation, "unknown relationship type %q", relType)
	}
	if _, ok := m.snap.FindRelationship(sourceID, targetID, relType); ok {
		return NewError(CodeConflict, "relationship %s -%s-> %s already exists", sourceID, relType, targetID)
	}
	return nil
}
