package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MattEddy/coterie/internal/model"
)

// fakeREST is a minimal PostgREST stand-in: taxonomy reads are served
// from the seed data, everything else is configurable per test.
type fakeREST struct {
	t        *testing.T
	objects  []model.GraphObject
	handlers map[string]http.HandlerFunc
	mu       sync.Mutex
	requests []string
}

func newFakeREST(t *testing.T) *fakeREST {
	return &fakeREST{t: t, handlers: map[string]http.HandlerFunc{}}
}

func (f *fakeREST) serve(w http.ResponseWriter, r *http.Request) {
	require.Equal(f.t, "test-key", r.Header.Get("apikey"))
	require.Equal(f.t, "Bearer test-key", r.Header.Get("Authorization"))

	resource := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	key := r.Method + " " + resource
	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.mu.Unlock()

	if h, ok := f.handlers[key]; ok {
		h(w, r)
		return
	}

	// default GET handlers for FetchAll
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		switch resource {
		case "object_classes":
			writeJSON(f.t, w, model.SeedClasses())
		case "object_types":
			writeJSON(f.t, w, model.SeedTypes())
		case "relationship_types":
			var rows []remoteRelationshipType
			for _, rt := range model.SeedRelationshipTypes() {
				row := remoteRelationshipType{ID: rt.ID, DisplayName: rt.DisplayName}
				if len(rt.ValidSourceClasses) > 0 {
					s := strings.Join(rt.ValidSourceClasses, ",")
					row.ValidSourceClasses = &s
				}
				if len(rt.ValidTargetClasses) > 0 {
					s := strings.Join(rt.ValidTargetClasses, ",")
					row.ValidTargetClasses = &s
				}
				rows = append(rows, row)
			}
			writeJSON(f.t, w, rows)
		case "objects":
			writeJSON(f.t, w, f.objects)
		case "object_type_assignments", "relationships":
			writeJSON(f.t, w, []any{})
		default:
			http.NotFound(w, r)
		}
		return
	}
	http.NotFound(w, r)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestRemote(t *testing.T, f *fakeREST) *Remote {
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return NewRemote(srv.URL, "test-key", 5*time.Second, zap.NewNop())
}

func TestRemoteFetchAll(t *testing.T) {
	f := newFakeREST(t)
	f.objects = []model.GraphObject{
		{ID: "obj-1", Class: model.ClassCompany, Name: "Acme", Data: model.Attributes{}},
	}
	r := newTestRemote(t, f)
	require.NoError(t, r.FetchAll(context.Background()))

	snap := r.Snapshot()
	assert.Len(t, snap.Classes, 3)
	assert.Len(t, snap.Objects, 1)

	rt, ok := snap.RelationshipTypeByID(model.RelEmployedBy)
	require.True(t, ok)
	assert.Equal(t, []string{model.ClassPerson}, rt.ValidSourceClasses)

	rt, ok = snap.RelationshipTypeByID("related_to")
	require.True(t, ok)
	assert.Nil(t, rt.ValidSourceClasses)
}

func TestRemoteCreateObjectUsesCanonicalRow(t *testing.T) {
	f := newFakeREST(t)
	f.handlers["POST objects"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Prefer"), "return=representation")

		var rows []model.GraphObject
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)

		// the server is authoritative for timestamps
		canonical := rows[0]
		canonical.CreatedAt = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
		canonical.UpdatedAt = canonical.CreatedAt
		writeJSON(t, w, []model.GraphObject{canonical})
	}
	r := newTestRemote(t, f)
	require.NoError(t, r.FetchAll(context.Background()))

	obj, err := r.CreateObject(context.Background(), model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2026, obj.CreatedAt.Year())

	got, ok := r.Snapshot().Object(obj.ID)
	require.True(t, ok)
	assert.Equal(t, obj.CreatedAt, got.CreatedAt)
}

func TestRemoteMirrorUntouchedOnFailure(t *testing.T) {
	f := newFakeREST(t)
	f.handlers["POST objects"] = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"row level security"}`, http.StatusInternalServerError)
	}
	r := newTestRemote(t, f)
	require.NoError(t, r.FetchAll(context.Background()))

	_, err := r.CreateObject(context.Background(), model.ClassCompany, "Acme", nil, nil)
	assert.Equal(t, CodeStorage, ErrorCode(err))
	assert.Contains(t, err.Error(), "row level security")
	assert.Empty(t, r.Snapshot().Objects)
}

func TestRemoteUnauthorized(t *testing.T) {
	f := newFakeREST(t)
	f.handlers["GET object_classes"] = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}
	r := newTestRemote(t, f)
	err := r.FetchAll(context.Background())
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))
}

func TestRemoteNetworkError(t *testing.T) {
	r := NewRemote("http://127.0.0.1:1", "test-key", time.Second, zap.NewNop())
	err := r.FetchAll(context.Background())
	assert.Equal(t, CodeNetwork, ErrorCode(err))
}

func TestRemoteDeleteObjectCascades(t *testing.T) {
	f := newFakeREST(t)
	f.objects = []model.GraphObject{
		{ID: "obj-1", Class: model.ClassCompany, Name: "Acme", Data: model.Attributes{}},
	}
	f.handlers["DELETE relationships"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "or=")
		w.WriteHeader(http.StatusNoContent)
	}
	f.handlers["DELETE object_type_assignments"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.obj-1", r.URL.Query().Get("object_id"))
		w.WriteHeader(http.StatusNoContent)
	}
	f.handlers["DELETE objects"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.obj-1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	}
	r := newTestRemote(t, f)
	require.NoError(t, r.FetchAll(context.Background()))

	require.NoError(t, r.DeleteObject(context.Background(), "obj-1"))
	_, ok := r.Snapshot().Object("obj-1")
	assert.False(t, ok)

	assert.Contains(t, f.requests, "DELETE relationships")
	assert.Contains(t, f.requests, "DELETE object_type_assignments")
	assert.Contains(t, f.requests, "DELETE objects")
}

func TestRemoteDuplicateTripleConflict(t *testing.T) {
	f := newFakeREST(t)
	created := 0
	f.handlers["POST objects"] = func(w http.ResponseWriter, r *http.Request) {
		var rows []model.GraphObject
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		writeJSON(t, w, rows)
	}
	f.handlers["POST relationships"] = func(w http.ResponseWriter, r *http.Request) {
		created++
		var rows []model.Relationship
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		writeJSON(t, w, rows)
	}
	r := newTestRemote(t, f)
	require.NoError(t, r.FetchAll(context.Background()))

	ctx := context.Background()
	company, err := r.CreateObject(ctx, model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)
	person, err := r.CreateObject(ctx, model.ClassPerson, "Jane", nil, nil)
	require.NoError(t, err)

	_, err = r.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)
	_, err = r.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	assert.Equal(t, CodeConflict, ErrorCode(err))
	assert.Equal(t, 1, created)
}
