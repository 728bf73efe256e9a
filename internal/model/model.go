// Package model defines the entity types shared by every store backend:
// the class/type taxonomy, graph objects, type assignments, and
// relationships. Attribute bags use the Value tagged union and are only
// serialized at the storage boundary.
package model

import "time"

// ObjectClass is a top-level entity category (company, person, project).
// Classes are seeded once and immutable afterward.
type ObjectClass struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ObjectType is a finer-grained tag within a class. An object may carry
// several via assignments.
type ObjectType struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// GraphObject is a node in the graph. MapX/MapY are nil until the object
// has been placed on the canvas.
type GraphObject struct {
	ID        string     `json:"id"`
	Class     string     `json:"class"`
	Name      string     `json:"name"`
	Data      Attributes `json:"data"`
	MapX      *float64   `json:"map_x"`
	MapY      *float64   `json:"map_y"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Positioned reports whether the object already has canvas coordinates.
func (o GraphObject) Positioned() bool {
	return o.MapX != nil && o.MapY != nil
}

// Website returns the "website" attribute if it is a string.
func (o GraphObject) Website() string { return o.Data.StringOr("website", "") }

// Title returns the "title" attribute if it is a string.
func (o GraphObject) Title() string { return o.Data.StringOr("title", "") }

// Notes returns the "notes" attribute if it is a string.
func (o GraphObject) Notes() string { return o.Data.StringOr("notes", "") }

// Status returns the "status" attribute if it is a string.
func (o GraphObject) Status() string { return o.Data.StringOr("status", "") }

// TypeAssignment links an object to an object type. At most one
// assignment per object should be primary; the store validates type and
// class at write time but primaryness stays a caller responsibility.
type TypeAssignment struct {
	ObjectID  string `json:"object_id"`
	TypeID    string `json:"type_id"`
	IsPrimary bool   `json:"is_primary"`
}

// RelationshipType is a directed edge label. Nil source/target class
// lists mean the type is unrestricted.
type RelationshipType struct {
	ID                 string   `json:"id"`
	DisplayName        string   `json:"display_name"`
	ValidSourceClasses []string `json:"valid_source_classes"`
	ValidTargetClasses []string `json:"valid_target_classes"`
	Icon               string   `json:"icon,omitempty"`
	Color              string   `json:"color,omitempty"`
}

// Relationship is a typed directed edge. The (SourceID, TargetID, Type)
// triple is unique per graph.
type Relationship struct {
	ID        string     `json:"id"`
	SourceID  string     `json:"source_id"`
	TargetID  string     `json:"target_id"`
	Type      string     `json:"type"`
	Data      Attributes `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Direction tells whether a related object sits on the target side of an
// outgoing edge or the source side of an incoming one.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)
