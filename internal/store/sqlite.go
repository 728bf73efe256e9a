package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/MattEddy/coterie/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS object_classes (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	icon TEXT,
	color TEXT
);

CREATE TABLE IF NOT EXISTS object_types (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	class TEXT NOT NULL REFERENCES object_classes(id),
	icon TEXT,
	color TEXT
);

CREATE TABLE IF NOT EXISTS objects (
	id TEXT PRIMARY KEY,
	class TEXT NOT NULL REFERENCES object_classes(id),
	name TEXT NOT NULL,
	data TEXT DEFAULT '{}',
	map_x REAL,
	map_y REAL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS object_type_assignments (
	object_id TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
	type_id TEXT NOT NULL REFERENCES object_types(id),
	is_primary INTEGER DEFAULT 0,
	PRIMARY KEY (object_id, type_id)
);

CREATE TABLE IF NOT EXISTS relationship_types (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	valid_source_classes TEXT,
	valid_target_classes TEXT,
	icon TEXT,
	color TEXT
);

CREATE TABLE IF NOT EXISTS relationships (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
	type TEXT NOT NULL REFERENCES relationship_types(id),
	data TEXT DEFAULT '{}',
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(source_id, target_id, type)
);

CREATE INDEX IF NOT EXISTS idx_objects_class ON objects(class);
CREATE INDEX IF NOT EXISTS idx_objects_name ON objects(name);
CREATE INDEX IF NOT EXISTS idx_type_assignments_type ON object_type_assignments(type_id);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
`

// SQLite is the embedded store. Schema creation and taxonomy seeding run
// at open, guarded by an existence check so repeated opens are
// idempotent. The mirror is loaded before Open returns, so the store is
// immediately usable.
type SQLite struct {
	mirror
	conn *sql.DB
	path string
	log  *zap.Logger
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path with WAL mode and
// foreign keys enabled, ensures the schema and seed data exist, and
// loads the initial mirror.
func OpenSQLite(path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, WrapError(CodeStorage, err, "opening database %s", path)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, WrapError(CodeStorage, err, "setting WAL mode")
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, WrapError(CodeStorage, err, "enabling foreign keys")
	}

	s := &SQLite{conn: conn, path: path, log: logger}
	if err := s.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.FetchAll(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug("sqlite store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error { return s.conn.Close() }

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) ensureSchema() error {
	if _, err := s.conn.Exec(sqliteSchema); err != nil {
		return WrapError(CodeStorage, err, "creating schema")
	}

	var count int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM object_classes").Scan(&count); err != nil {
		return WrapError(CodeStorage, err, "checking seed state")
	}
	if count > 0 {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return WrapError(CodeStorage, err, "starting seed transaction")
	}
	defer tx.Rollback()

	for _, c := range model.SeedClasses() {
		if _, err := tx.Exec(
			"INSERT INTO object_classes (id, display_name, icon, color) VALUES (?, ?, ?, ?)",
			c.ID, c.DisplayName, c.Icon, c.Color,
		); err != nil {
			return WrapError(CodeStorage, err, "seeding object class %s", c.ID)
		}
	}
	for _, t := range model.SeedTypes() {
		if _, err := tx.Exec(
			"INSERT INTO object_types (id, display_name, class, icon, color) VALUES (?, ?, ?, ?, ?)",
			t.ID, t.DisplayName, t.Class, t.Icon, t.Color,
		); err != nil {
			return WrapError(CodeStorage, err, "seeding object type %s", t.ID)
		}
	}
	for _, rt := range model.SeedRelationshipTypes() {
		if _, err := tx.Exec(
			"INSERT INTO relationship_types (id, display_name, valid_source_classes, valid_target_classes, icon, color) VALUES (?, ?, ?, ?, ?, ?)",
			rt.ID, rt.DisplayName, joinClasses(rt.ValidSourceClasses), joinClasses(rt.ValidTargetClasses), rt.Icon, rt.Color,
		); err != nil {
			return WrapError(CodeStorage, err, "seeding relationship type %s", rt.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return WrapError(CodeStorage, err, "committing seed data")
	}
	s.log.Info("seeded taxonomy",
		zap.Int("classes", len(model.SeedClasses())),
		zap.Int("types", len(model.SeedTypes())),
		zap.Int("relationship_types", len(model.SeedRelationshipTypes())))
	return nil
}

// FetchAll reloads the mirror from disk.
func (s *SQLite) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap Snapshot
	var err error
	if snap.Classes, err = s.loadClasses(ctx); err != nil {
		return err
	}
	if snap.Types, err = s.loadTypes(ctx); err != nil {
		return err
	}
	if snap.RelationshipTypes, err = s.loadRelationshipTypes(ctx); err != nil {
		return err
	}
	if snap.Objects, err = s.loadObjects(ctx); err != nil {
		return err
	}
	if snap.Assignments, err = s.loadAssignments(ctx); err != nil {
		return err
	}
	if snap.Relationships, err = s.loadRelationships(ctx); err != nil {
		return err
	}
	s.setAll(snap)
	return nil
}

func (s *SQLite) loadClasses(ctx context.Context) ([]model.ObjectClass, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, display_name, icon, color FROM object_classes")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading object classes")
	}
	defer rows.Close()

	var out []model.ObjectClass
	for rows.Next() {
		var c model.ObjectClass
		var icon, color sql.NullString
		if err := rows.Scan(&c.ID, &c.DisplayName, &icon, &color); err != nil {
			return nil, WrapError(CodeStorage, err, "scanning object class")
		}
		c.Icon, c.Color = icon.String, color.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) loadTypes(ctx context.Context) ([]model.ObjectType, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, display_name, class, icon, color FROM object_types")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading object types")
	}
	defer rows.Close()

	var out []model.ObjectType
	for rows.Next() {
		var t model.ObjectType
		var icon, color sql.NullString
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Class, &icon, &color); err != nil {
			return nil, WrapError(CodeStorage, err, "scanning object type")
		}
		t.Icon, t.Color = icon.String, color.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) loadRelationshipTypes(ctx context.Context) ([]model.RelationshipType, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, display_name, valid_source_classes, valid_target_classes, icon, color FROM relationship_types")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading relationship types")
	}
	defer rows.Close()

	var out []model.RelationshipType
	for rows.Next() {
		var rt model.RelationshipType
		var src, dst, icon, color sql.NullString
		if err := rows.Scan(&rt.ID, &rt.DisplayName, &src, &dst, &icon, &color); err != nil {
			return nil, WrapError(CodeStorage, err, "scanning relationship type")
		}
		rt.ValidSourceClasses = splitClasses(src.String)
		rt.ValidTargetClasses = splitClasses(dst.String)
		rt.Icon, rt.Color = icon.String, color.String
		out = append(out, rt)
	}
	return out, rows.Err()
}

// loadObjects orders by name ascending for deterministic display and
// layout.
func (s *SQLite) loadObjects(ctx context.Context) ([]model.GraphObject, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, class, name, data, map_x, map_y, created_at, updated_at FROM objects ORDER BY name")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading objects")
	}
	defer rows.Close()

	var out []model.GraphObject
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanObject(scanner interface{ Scan(dest ...any) error }) (model.GraphObject, error) {
	var o model.GraphObject
	var data string
	var mapX, mapY sql.NullFloat64
	var createdAt, updatedAt string
	if err := scanner.Scan(&o.ID, &o.Class, &o.Name, &data, &mapX, &mapY, &createdAt, &updatedAt); err != nil {
		return o, WrapError(CodeStorage, err, "scanning object")
	}
	attrs, err := model.DecodeAttributes(data)
	if err != nil {
		return o, WrapError(CodeStorage, err, "decoding object attributes")
	}
	o.Data = attrs
	if mapX.Valid {
		o.MapX = &mapX.Float64
	}
	if mapY.Valid {
		o.MapY = &mapY.Float64
	}
	o.CreatedAt = parseTimestamp(createdAt)
	o.UpdatedAt = parseTimestamp(updatedAt)
	return o, nil
}

func (s *SQLite) loadAssignments(ctx context.Context) ([]model.TypeAssignment, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT object_id, type_id, is_primary FROM object_type_assignments")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading type assignments")
	}
	defer rows.Close()

	var out []model.TypeAssignment
	for rows.Next() {
		var a model.TypeAssignment
		if err := rows.Scan(&a.ObjectID, &a.TypeID, &a.IsPrimary); err != nil {
			return nil, WrapError(CodeStorage, err, "scanning type assignment")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLite) loadRelationships(ctx context.Context) ([]model.Relationship, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, source_id, target_id, type, data, created_at, updated_at FROM relationships")
	if err != nil {
		return nil, WrapError(CodeStorage, err, "loading relationships")
	}
	defer rows.Close()

	var out []model.Relationship
	for rows.Next() {
		var r model.Relationship
		var data, createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &data, &createdAt, &updatedAt); err != nil {
			return nil, WrapError(CodeStorage, err, "scanning relationship")
		}
		attrs, err := model.DecodeAttributes(data)
		if err != nil {
			return nil, WrapError(CodeStorage, err, "decoding relationship attributes")
		}
		r.Data = attrs
		r.CreatedAt = parseTimestamp(createdAt)
		r.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateObject inserts the object, then applies each initial type.
func (s *SQLite) CreateObject(ctx context.Context, class, name string, initialTypes []string, attrs model.Attributes) (model.GraphObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateNewObject(class, name, initialTypes); err != nil {
		return model.GraphObject{}, err
	}
	if attrs == nil {
		attrs = model.Attributes{}
	}
	data, err := model.EncodeAttributes(attrs)
	if err != nil {
		return model.GraphObject{}, WrapError(CodeValidation, err, "encoding attributes")
	}

	obj := model.GraphObject{
		ID:        uuid.NewString(),
		Class:     class,
		Name:      name,
		Data:      attrs,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	if _, err := s.conn.ExecContext(ctx,
		"INSERT INTO objects (id, class, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		obj.ID, obj.Class, obj.Name, data, formatTimestamp(obj.CreatedAt), formatTimestamp(obj.UpdatedAt),
	); err != nil {
		return model.GraphObject{}, WrapError(CodeStorage, err, "inserting object %q", name)
	}
	s.objectCreated(obj)

	for _, typeID := range initialTypes {
		if err := s.assignTypeLocked(ctx, obj.ID, typeID, false); err != nil {
			return model.GraphObject{}, err
		}
	}
	return obj, nil
}

// UpdateObject replaces name, attributes, and position; updated_at is
// refreshed. Unknown ids fail with NOT_FOUND.
func (s *SQLite) UpdateObject(ctx context.Context, obj model.GraphObject) (model.GraphObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.snap.Object(obj.ID)
	if !ok {
		return model.GraphObject{}, NewError(CodeNotFound, "object %s not found", obj.ID)
	}
	data, err := model.EncodeAttributes(obj.Data)
	if err != nil {
		return model.GraphObject{}, WrapError(CodeValidation, err, "encoding attributes")
	}

	stored.Name = obj.Name
	stored.Data = obj.Data
	stored.MapX = obj.MapX
	stored.MapY = obj.MapY
	stored.UpdatedAt = now()

	if _, err := s.conn.ExecContext(ctx,
		"UPDATE objects SET name = ?, data = ?, map_x = ?, map_y = ?, updated_at = ? WHERE id = ?",
		stored.Name, data, nullableFloat(stored.MapX), nullableFloat(stored.MapY), formatTimestamp(stored.UpdatedAt), stored.ID,
	); err != nil {
		return model.GraphObject{}, WrapError(CodeStorage, err, "updating object %s", obj.ID)
	}
	s.objectUpdated(stored)
	return stored, nil
}

// DeleteObject cascades to assignments and relationships; deleting an
// absent id is a no-op.
func (s *SQLite) DeleteObject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Object(id); !ok {
		return nil
	}
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM objects WHERE id = ?", id); err != nil {
		return WrapError(CodeStorage, err, "deleting object %s", id)
	}
	s.objectDeleted(id)
	return nil
}

// AssignType upserts, overwriting is_primary when the pair exists.
func (s *SQLite) AssignType(ctx context.Context, objectID, typeID string, isPrimary bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignTypeLocked(ctx, objectID, typeID, isPrimary)
}

func (s *SQLite) assignTypeLocked(ctx context.Context, objectID, typeID string, isPrimary bool) error {
	if err := s.validateAssignment(objectID, typeID); err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO object_type_assignments (object_id, type_id, is_primary) VALUES (?, ?, ?)
		 ON CONFLICT(object_id, type_id) DO UPDATE SET is_primary = excluded.is_primary`,
		objectID, typeID, isPrimary,
	); err != nil {
		return WrapError(CodeStorage, err, "assigning type %s to %s", typeID, objectID)
	}
	s.assignmentUpserted(model.TypeAssignment{ObjectID: objectID, TypeID: typeID, IsPrimary: isPrimary})
	return nil
}

// RemoveType is a no-op when the pair is absent.
func (s *SQLite) RemoveType(ctx context.Context, objectID, typeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Object(objectID); !ok {
		return NewError(CodeNotFound, "object %s not found", objectID)
	}
	if _, err := s.conn.ExecContext(ctx,
		"DELETE FROM object_type_assignments WHERE object_id = ? AND type_id = ?",
		objectID, typeID,
	); err != nil {
		return WrapError(CodeStorage, err, "removing type %s from %s", typeID, objectID)
	}
	s.assignmentRemoved(objectID, typeID)
	return nil
}

// CreateRelationship fails with CONFLICT when the triple already exists.
func (s *SQLite) CreateRelationship(ctx context.Context, sourceID, targetID, relType string, attrs model.Attributes) (model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateNewRelationship(sourceID, targetID, relType); err != nil {
		return model.Relationship{}, err
	}
	if attrs == nil {
		attrs = model.Attributes{}
	}
	data, err := model.EncodeAttributes(attrs)
	if err != nil {
		return model.Relationship{}, WrapError(CodeValidation, err, "encoding attributes")
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
	if _, err := s.conn.ExecContext(ctx,
		"INSERT INTO relationships (id, source_id, target_id, type, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rel.ID, rel.SourceID, rel.TargetID, rel.Type, data, formatTimestamp(rel.CreatedAt), formatTimestamp(rel.UpdatedAt),
	); err != nil {
		return model.Relationship{}, WrapError(CodeStorage, err, "inserting relationship")
	}
	s.relationshipCreated(rel)
	return rel, nil
}

// DeleteRelationship is a no-op when the id is absent.
func (s *SQLite) DeleteRelationship(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id); err != nil {
		return WrapError(CodeStorage, err, "deleting relationship %s", id)
	}
	s.relationshipDeleted(id)
	return nil
}

func joinClasses(classes []string) any {
	if len(classes) == 0 {
		return nil
	}
	return strings.Join(classes, ",")
}

func splitClasses(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp tolerates both RFC3339 and SQLite's CURRENT_TIMESTAMP
// format; anything else yields the zero time.
func parseTimestamp(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
