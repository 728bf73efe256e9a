// Package store defines the backend-agnostic graph store contract and
// its three implementations: an embedded SQLite engine, a remote
// PostgREST mirror, and an in-memory store. Every backend keeps a
// denormalized snapshot of the last FetchAll and answers queries from
// it without I/O.
package store

import (
	"slices"

	"github.com/MattEddy/coterie/internal/model"
)

// Snapshot is a denormalized in-memory copy of the whole graph. Slices
// preserve load order (objects sorted by name at fetch time, everything
// else in insertion order), which is what makes layout deterministic.
type Snapshot struct {
	Classes           []model.ObjectClass
	Types             []model.ObjectType
	RelationshipTypes []model.RelationshipType
	Objects           []model.GraphObject
	Assignments       []model.TypeAssignment
	Relationships     []model.Relationship
}

// Related pairs a relationship with the object on its far side.
type Related struct {
	Relationship model.Relationship
	Object       model.GraphObject
	Direction    model.Direction
}

// Object returns the object with the given id.
func (s *Snapshot) Object(id string) (model.GraphObject, bool) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return model.GraphObject{}, false
}

// Class returns the object class with the given id.
func (s *Snapshot) Class(id string) (model.ObjectClass, bool) {
	for _, c := range s.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return model.ObjectClass{}, false
}

// Type returns the object type with the given id.
func (s *Snapshot) Type(id string) (model.ObjectType, bool) {
	for _, t := range s.Types {
		if t.ID == id {
			return t, true
		}
	}
	return model.ObjectType{}, false
}

// RelationshipTypeByID returns the relationship type with the given id.
func (s *Snapshot) RelationshipTypeByID(id string) (model.RelationshipType, bool) {
	for _, t := range s.RelationshipTypes {
		if t.ID == id {
			return t, true
		}
	}
	return model.RelationshipType{}, false
}

// ObjectsByClass returns all objects of a class in snapshot order.
func (s *Snapshot) ObjectsByClass(class string) []model.GraphObject {
	var out []model.GraphObject
	for _, o := range s.Objects {
		if o.Class == class {
			out = append(out, o)
		}
	}
	return out
}

// ObjectsByType returns all objects assigned the given type, in
// snapshot order.
func (s *Snapshot) ObjectsByType(typeID string) []model.GraphObject {
	assigned := make(map[string]bool)
	for _, a := range s.Assignments {
		if a.TypeID == typeID {
			assigned[a.ObjectID] = true
		}
	}
	var out []model.GraphObject
	for _, o := range s.Objects {
		if assigned[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

// TypesOfObject returns the object's types, primary assignment first,
// then the rest in assignment order. The first element is what the
// layout engine treats as the object's primary type.
func (s *Snapshot) TypesOfObject(objectID string) []model.ObjectType {
	var primary, rest []model.ObjectType
	for _, a := range s.Assignments {
		if a.ObjectID != objectID {
			continue
		}
		t, ok := s.Type(a.TypeID)
		if !ok {
			continue
		}
		if a.IsPrimary {
			primary = append(primary, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(primary, rest...)
}

// TypesOfClass returns the taxonomy types belonging to a class.
func (s *Snapshot) TypesOfClass(class string) []model.ObjectType {
	var out []model.ObjectType
	for _, t := range s.Types {
		if t.Class == class {
			out = append(out, t)
		}
	}
	return out
}

// RelationshipsOf returns every relationship where the object is source
// or target, in snapshot order.
func (s *Snapshot) RelationshipsOf(objectID string) []model.Relationship {
	var out []model.Relationship
	for _, r := range s.Relationships {
		if r.SourceID == objectID || r.TargetID == objectID {
			out = append(out, r)
		}
	}
	return out
}

// RelatedObjects returns the objects connected to objectID together
// with the linking relationship and its direction.
func (s *Snapshot) RelatedObjects(objectID string) []Related {
	var out []Related
	for _, r := range s.Relationships {
		switch objectID {
		case r.SourceID:
			if o, ok := s.Object(r.TargetID); ok {
				out = append(out, Related{Relationship: r, Object: o, Direction: model.DirectionOutgoing})
			}
		case r.TargetID:
			if o, ok := s.Object(r.SourceID); ok {
				out = append(out, Related{Relationship: r, Object: o, Direction: model.DirectionIncoming})
			}
		}
	}
	return out
}

// FindRelationship returns the relationship matching the unique
// (source, target, type) triple.
func (s *Snapshot) FindRelationship(sourceID, targetID, relType string) (model.Relationship, bool) {
	for _, r := range s.Relationships {
		if r.SourceID == sourceID && r.TargetID == targetID && r.Type == relType {
			return r, true
		}
	}
	return model.Relationship{}, false
}

// Clone returns an independent copy of the snapshot. Attribute bags are
// shared; callers treat them as read-only.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Classes:           slices.Clone(s.Classes),
		Types:             slices.Clone(s.Types),
		RelationshipTypes: slices.Clone(s.RelationshipTypes),
		Objects:           slices.Clone(s.Objects),
		Assignments:       slices.Clone(s.Assignments),
		Relationships:     slices.Clone(s.Relationships),
	}
}
