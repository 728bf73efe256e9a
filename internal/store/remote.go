package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MattEddy/coterie/internal/model"
)

const defaultHTTPTimeout = 30 * time.Second

// Remote is the PostgREST-backed store. Every operation issues the
// backing HTTP call first and touches the mirror only on success, so
// the local snapshot never diverges from what the server accepted.
// FetchAll must run before the first mutation so validation has a
// taxonomy to check against.
type Remote struct {
	mirror
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

var _ Store = (*Remote)(nil)

// NewRemote builds a remote store for the project at baseURL
// (e.g. https://xyz.supabase.co) authenticated with anonKey. A zero
// timeout falls back to 30s.
func NewRemote(baseURL, anonKey string, timeout time.Duration, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Remote{
		baseURL: baseURL,
		apiKey:  anonKey,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Close releases idle connections.
func (r *Remote) Close() error {
	r.http.CloseIdleConnections()
	return nil
}

// do issues a single REST request against /rest/v1/{resource}. Write
// methods ask for the canonical representation back so the mirror can
// store what the server actually persisted. Non-2xx responses map to
// UNAUTHORIZED or STORAGE (body retained); transport failures map to
// NETWORK.
func (r *Remote) do(ctx context.Context, method, resource string, query url.Values, body, out any) error {
	u := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, resource)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return WrapError(CodeValidation, err, "encoding %s request", resource)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return WrapError(CodeNetwork, err, "building %s request", resource)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	switch method {
	case http.MethodPost:
		req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")
	case http.MethodPatch:
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return WrapError(CodeNetwork, err, "%s %s", method, resource)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(CodeNetwork, err, "reading %s response", resource)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewError(CodeUnauthorized, "%s %s rejected: %s", method, resource, string(raw))
	case resp.StatusCode >= 400:
		return NewError(CodeStorage, "%s %s failed with %d: %s", method, resource, resp.StatusCode, string(raw))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return WrapError(CodeStorage, err, "decoding %s response", resource)
		}
	}
	return nil
}

// remoteRelationshipType matches the server row, where class
// restrictions are comma-separated text columns.
type remoteRelationshipType struct {
	ID                 string  `json:"id"`
	DisplayName        string  `json:"display_name"`
	ValidSourceClasses *string `json:"valid_source_classes"`
	ValidTargetClasses *string `json:"valid_target_classes"`
	Icon               *string `json:"icon"`
	Color              *string `json:"color"`
}

func (rt remoteRelationshipType) toModel() model.RelationshipType {
	out := model.RelationshipType{ID: rt.ID, DisplayName: rt.DisplayName}
	if rt.ValidSourceClasses != nil {
		out.ValidSourceClasses = splitClasses(*rt.ValidSourceClasses)
	}
	if rt.ValidTargetClasses != nil {
		out.ValidTargetClasses = splitClasses(*rt.ValidTargetClasses)
	}
	if rt.Icon != nil {
		out.Icon = *rt.Icon
	}
	if rt.Color != nil {
		out.Color = *rt.Color
	}
	return out
}

// FetchAll pulls the six resources in parallel and swaps the mirror in
// one step once every request has succeeded.
func (r *Remote) FetchAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		snap     Snapshot
		relTypes []remoteRelationshipType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "object_classes", nil, nil, &snap.Classes)
	})
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "object_types", nil, nil, &snap.Types)
	})
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "relationship_types", nil, nil, &relTypes)
	})
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "objects", url.Values{"order": {"name.asc"}}, nil, &snap.Objects)
	})
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "object_type_assignments", nil, nil, &snap.Assignments)
	})
	g.Go(func() error {
		return r.do(gctx, http.MethodGet, "relationships", nil, nil, &snap.Relationships)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap.RelationshipTypes = make([]model.RelationshipType, 0, len(relTypes))
	for _, rt := range relTypes {
		snap.RelationshipTypes = append(snap.RelationshipTypes, rt.toModel())
	}
	r.setAll(snap)
	r.log.Debug("remote graph fetched",
		zap.Int("objects", len(snap.Objects)),
		zap.Int("relationships", len(snap.Relationships)))
	return nil
}

func idFilter(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

// CreateObject posts the object and mirrors the canonical row the
// server returned.
func (r *Remote) CreateObject(ctx context.Context, class, name string, initialTypes []string, attrs model.Attributes) (model.GraphObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateNewObject(class, name, initialTypes); err != nil {
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
	var rows []model.GraphObject
	if err := r.do(ctx, http.MethodPost, "objects", nil, []model.GraphObject{obj}, &rows); err != nil {
		return model.GraphObject{}, err
	}
	if len(rows) > 0 {
		obj = rows[0]
	}
	r.objectCreated(obj)

	for _, typeID := range initialTypes {
		if err := r.assignTypeLocked(ctx, obj.ID, typeID, false); err != nil {
			return model.GraphObject{}, err
		}
	}
	return obj, nil
}

// objectPatch carries only the mutable columns.
type objectPatch struct {
	Name      string           `json:"name"`
	Data      model.Attributes `json:"data"`
	MapX      *float64         `json:"map_x"`
	MapY      *float64         `json:"map_y"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UpdateObject patches the row and mirrors the canonical result.
// Unknown ids fail with NOT_FOUND.
func (r *Remote) UpdateObject(ctx context.Context, obj model.GraphObject) (model.GraphObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.snap.Object(obj.ID)
	if !ok {
		return model.GraphObject{}, NewError(CodeNotFound, "object %s not found", obj.ID)
	}
	stored.Name = obj.Name
	stored.Data = obj.Data
	stored.MapX = obj.MapX
	stored.MapY = obj.MapY
	stored.UpdatedAt = now()

	patch := objectPatch{
		Name:      stored.Name,
		Data:      stored.Data,
		MapX:      stored.MapX,
		MapY:      stored.MapY,
		UpdatedAt: stored.UpdatedAt,
	}
	var rows []model.GraphObject
	if err := r.do(ctx, http.MethodPatch, "objects", idFilter(obj.ID), patch, &rows); err != nil {
		return model.GraphObject{}, err
	}
	if len(rows) > 0 {
		stored = rows[0]
	}
	r.objectUpdated(stored)
	return stored, nil
}

// DeleteObject removes the object's relationships and assignments
// explicitly before the object row, so the cascade matches the embedded
// backend regardless of server-side constraints.
func (r *Remote) DeleteObject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snap.Object(id); !ok {
		return nil
	}
	relFilter := url.Values{"or": {fmt.Sprintf("(source_id.eq.%s,target_id.eq.%s)", id, id)}}
	if err := r.do(ctx, http.MethodDelete, "relationships", relFilter, nil, nil); err != nil {
		return err
	}
	if err := r.do(ctx, http.MethodDelete, "object_type_assignments", url.Values{"object_id": {"eq." + id}}, nil, nil); err != nil {
		return err
	}
	if err := r.do(ctx, http.MethodDelete, "objects", idFilter(id), nil, nil); err != nil {
		return err
	}
	r.objectDeleted(id)
	return nil
}

// AssignType upserts via merge-duplicates so re-assigning flips
// is_primary instead of erroring.
func (r *Remote) AssignType(ctx context.Context, objectID, typeID string, isPrimary bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assignTypeLocked(ctx, objectID, typeID, isPrimary)
}

func (r *Remote) assignTypeLocked(ctx context.Context, objectID, typeID string, isPrimary bool) error {
	if err := r.validateAssignment(objectID, typeID); err != nil {
		return err
	}
	a := model.TypeAssignment{ObjectID: objectID, TypeID: typeID, IsPrimary: isPrimary}
	if err := r.do(ctx, http.MethodPost, "object_type_assignments", nil, []model.TypeAssignment{a}, nil); err != nil {
		return err
	}
	r.assignmentUpserted(a)
	return nil
}

// RemoveType deletes the pair; absent pairs are a no-op.
func (r *Remote) RemoveType(ctx context.Context, objectID, typeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snap.Object(objectID); !ok {
		return NewError(CodeNotFound, "object %s not found", objectID)
	}
	query := url.Values{"object_id": {"eq." + objectID}, "type_id": {"eq." + typeID}}
	if err := r.do(ctx, http.MethodDelete, "object_type_assignments", query, nil, nil); err != nil {
		return err
	}
	r.assignmentRemoved(objectID, typeID)
	return nil
}

// CreateRelationship posts the edge; duplicate triples fail with
// CONFLICT before the request is made.
func (r *Remote) CreateRelationship(ctx context.Context, sourceID, targetID, relType string, attrs model.Attributes) (model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateNewRelationship(sourceID, targetID, relType); err != nil {
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
	var rows []model.Relationship
	if err := r.do(ctx, http.MethodPost, "relationships", nil, []model.Relationship{rel}, &rows); err != nil {
		return model.Relationship{}, err
	}
	if len(rows) > 0 {
		rel = rows[0]
	}
	r.relationshipCreated(rel)
	return rel, nil
}

// DeleteRelationship is a no-op when the id is absent.
func (r *Remote) DeleteRelationship(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.do(ctx, http.MethodDelete, "relationships", idFilter(id), nil, nil); err != nil {
		return err
	}
	r.relationshipDeleted(id)
	return nil
}
