package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattEddy/coterie/internal/model"
)

func TestMemorySeededTaxonomy(t *testing.T) {
	st := NewMemory()
	snap := st.Snapshot()
	assert.Len(t, snap.Classes, 3)
	assert.NotEmpty(t, snap.Types)
	assert.NotEmpty(t, snap.RelationshipTypes)
	assert.Empty(t, snap.Objects)
}

func TestCreateObjectValidation(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	_, err := st.CreateObject(ctx, model.ClassCompany, "   ", nil, nil)
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = st.CreateObject(ctx, "starship", "Acme", nil, nil)
	assert.Equal(t, CodeValidation, ErrorCode(err))

	// type from another class
	_, err = st.CreateObject(ctx, model.ClassCompany, "Acme", []string{"executive"}, nil)
	assert.Equal(t, CodeValidation, ErrorCode(err))

	obj, err := st.CreateObject(ctx, model.ClassCompany, "Acme Studios", []string{"studio"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, obj.ID)
	assert.False(t, obj.Positioned())

	types := st.Snapshot().TypesOfObject(obj.ID)
	require.Len(t, types, 1)
	assert.Equal(t, "studio", types[0].ID)
}

func TestUpdateObjectNotFound(t *testing.T) {
	st := NewMemory()
	_, err := st.UpdateObject(context.Background(), model.GraphObject{ID: "missing"})
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestUpdateObjectRefreshesTimestamp(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	obj, err := st.CreateObject(ctx, model.ClassPerson, "Jane Doe", nil, nil)
	require.NoError(t, err)

	obj.Name = "Jane Q. Doe"
	x, y := 120.0, 450.0
	obj.MapX, obj.MapY = &x, &y
	updated, err := st.UpdateObject(ctx, obj)
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", updated.Name)
	assert.True(t, updated.Positioned())
	assert.False(t, updated.UpdatedAt.Before(obj.CreatedAt))

	got, ok := st.Snapshot().Object(obj.ID)
	require.True(t, ok)
	assert.Equal(t, "Jane Q. Doe", got.Name)
}

func TestDeleteObjectCascades(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	company, err := st.CreateObject(ctx, model.ClassCompany, "Acme", []string{"studio"}, nil)
	require.NoError(t, err)
	person, err := st.CreateObject(ctx, model.ClassPerson, "Jane", nil, nil)
	require.NoError(t, err)
	_, err = st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)

	require.NoError(t, st.DeleteObject(ctx, company.ID))

	snap := st.Snapshot()
	_, ok := snap.Object(company.ID)
	assert.False(t, ok)
	assert.Empty(t, snap.RelationshipsOf(person.ID))
	assert.Empty(t, snap.TypesOfObject(company.ID))

	// absent id is a no-op
	assert.NoError(t, st.DeleteObject(ctx, company.ID))
}

func TestAssignTypeUpsert(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	obj, err := st.CreateObject(ctx, model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)

	require.NoError(t, st.AssignType(ctx, obj.ID, "studio", false))
	require.NoError(t, st.AssignType(ctx, obj.ID, "financier", false))
	require.NoError(t, st.AssignType(ctx, obj.ID, "financier", true))

	snap := st.Snapshot()
	types := snap.TypesOfObject(obj.ID)
	require.Len(t, types, 2)
	// primary assignment sorts first
	assert.Equal(t, "financier", types[0].ID)

	err = st.AssignType(ctx, "missing", "studio", false)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	err = st.AssignType(ctx, obj.ID, "executive", false)
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestRemoveType(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	obj, err := st.CreateObject(ctx, model.ClassCompany, "Acme", []string{"studio"}, nil)
	require.NoError(t, err)

	require.NoError(t, st.RemoveType(ctx, obj.ID, "studio"))
	assert.Empty(t, st.Snapshot().TypesOfObject(obj.ID))

	// absent pair is a no-op
	require.NoError(t, st.RemoveType(ctx, obj.ID, "studio"))

	err = st.RemoveType(ctx, "missing", "studio")
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestCreateRelationshipConflict(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	company, err := st.CreateObject(ctx, model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)
	person, err := st.CreateObject(ctx, model.ClassPerson, "Jane", nil, nil)
	require.NoError(t, err)

	rel, err := st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, rel.ID)

	_, err = st.CreateRelationship(ctx, person.ID, company.ID, model.RelEmployedBy, nil)
	assert.Equal(t, CodeConflict, ErrorCode(err))

	// same pair under a different type is a distinct edge
	_, err = st.CreateRelationship(ctx, person.ID, company.ID, "represented_by", nil)
	require.NoError(t, err)

	_, err = st.CreateRelationship(ctx, person.ID, "missing", model.RelEmployedBy, nil)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	_, err = st.CreateRelationship(ctx, person.ID, company.ID, "bogus_type", nil)
	assert.Equal(t, CodeValidation, ErrorCode(err))

	require.NoError(t, st.DeleteRelationship(ctx, rel.ID))
	_, ok := st.Snapshot().FindRelationship(person.ID, company.ID, model.RelEmployedBy)
	assert.False(t, ok)
	// absent id is a no-op
	require.NoError(t, st.DeleteRelationship(ctx, rel.ID))
}

func TestSnapshotIsACopy(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	_, err := st.CreateObject(ctx, model.ClassCompany, "Acme", nil, nil)
	require.NoError(t, err)

	snap := st.Snapshot()
	snap.Objects[0].Name = "mutated"

	fresh := st.Snapshot()
	assert.Equal(t, "Acme", fresh.Objects[0].Name)
}
