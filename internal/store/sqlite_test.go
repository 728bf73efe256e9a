package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MattEddy/coterie/internal/model"
)

func openTestDB(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coterie.db")
	st, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestOpenSeedsOnce(t *testing.T) {
	st, path := openTestDB(t)

	snap := st.Snapshot()
	assert.Len(t, snap.Classes, 3)
	assert.Len(t, snap.Types, len(model.SeedTypes()))
	assert.Len(t, snap.RelationshipTypes, len(model.SeedRelationshipTypes()))

	require.NoError(t, st.Close())

	// Reopening must not duplicate seed rows.
	st2, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer st2.Close()
	assert.Len(t, st2.Snapshot().Classes, 3)
	assert.Len(t, st2.Snapshot().Types, len(model.SeedTypes()))
}

func TestSQLitePersistence(t *testing.T) {
	st, path := openTestDB(t)
	ctx := context.Background()

	company, err := st.CreateObject(ctx, model.ClassCompany, "Acme Studios",
		[]string{"studio"}, model.Attributes{"website": model.String("https://acme.example")})
	require.NoError(t, err)
	person, err := st.CreateObject(ctx, model.ClassPerson, "Jane Doe", []string{"executive"}, nil)
	require.NoError(t, err)
	rel, err := st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)

	x, y := 300.0, 1200.0
	company.MapX, company.MapY = &x, &y
	_, err = st.UpdateObject(ctx, company)
	require.NoError(t, err)

	require.NoError(t, st.Close())

	st2, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer st2.Close()

	snap := st2.Snapshot()
	got, ok := snap.Object(company.ID)
	require.True(t, ok)
	assert.Equal(t, "Acme Studios", got.Name)
	assert.Equal(t, "https://acme.example", got.Website())
	require.True(t, got.Positioned())
	assert.Equal(t, 300.0, *got.MapX)
	assert.Equal(t, 1200.0, *got.MapY)
	assert.Equal(t, company.CreatedAt, got.CreatedAt)

	types := snap.TypesOfObject(company.ID)
	require.Len(t, types, 1)
	assert.Equal(t, "studio", types[0].ID)

	gotRel, ok := snap.FindRelationship(person.ID, company.ID, model.RelEmployedBy)
	require.True(t, ok)
	assert.Equal(t, rel.ID, gotRel.ID)
}

func TestSQLiteObjectsOrderedByName(t *testing.T) {
	st, path := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := st.CreateObject(ctx, model.ClassCompany, name, nil, nil)
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())

	st2, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer st2.Close()

	var names []string
	for _, o := range st2.Snapshot().Objects {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, names)
}

func TestSQLiteDeleteCascades(t *testing.T) {
	st, path := openTestDB(t)
	ctx := context.Background()

	company, err := st.CreateObject(ctx, model.ClassCompany, "Acme", []string{"studio"}, nil)
	require.NoError(t, err)
	person, err := st.CreateObject(ctx, model.ClassPerson, "Jane", nil, nil)
	require.NoError(t, err)
	_, err = st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)

	require.NoError(t, st.DeleteObject(ctx, company.ID))
	require.NoError(t, st.Close())

	st2, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer st2.Close()

	snap := st2.Snapshot()
	_, ok := snap.Object(company.ID)
	assert.False(t, ok)
	assert.Empty(t, snap.Relationships)
	assert.Empty(t, snap.Assignments)
	_, ok = snap.Object(person.ID)
	assert.True(t, ok)
}

func TestSQLiteConflictAndUpsert(t *testing.T) {
	st, _ := openTestDB(t)
	ctx := context.Background()

	company, err := st.CreateObject(ctx, model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)
	person, err := st.CreateObject(ctx, model.ClassPerson, "Jane", nil, nil)
	require.NoError(t, err)

	_, err = st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)
	_, err = st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	assert.Equal(t, CodeConflict, ErrorCode(err))

	require.NoError(t, st.AssignType(ctx, company.ID, "studio", false))
	require.NoError(t, st.AssignType(ctx, company.ID, "studio", true))
	types := st.Snapshot().TypesOfObject(company.ID)
	require.Len(t, types, 1)
}
