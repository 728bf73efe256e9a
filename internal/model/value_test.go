package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueVariants(t *testing.T) {
	s, ok := String("hello").AsString()
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	n, ok := Number(42).AsNumber()
	require.True(t, ok)
	assert.Equal(t, 42.0, n)

	assert.True(t, Null().IsNull())
	assert.True(t, Value{}.IsNull())

	_, ok = Number(1).AsString()
	assert.False(t, ok)
}

func TestAttributesRoundTrip(t *testing.T) {
	attrs := Attributes{
		"website": String("https://a24films.com"),
		"founded": Number(2012),
		"active":  Bool(true),
		"tags":    List(String("indie"), String("horror")),
		"address": Map(map[string]Value{"city": String("New York")}),
	}
	raw, err := EncodeAttributes(attrs)
	require.NoError(t, err)

	decoded, err := DecodeAttributes(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://a24films.com", decoded.StringOr("website", ""))

	founded, ok := decoded["founded"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 2012.0, founded)

	tags, ok := decoded["tags"].AsList()
	require.True(t, ok)
	require.Len(t, tags, 2)
	assert.Equal(t, "indie", tags[0].Interface())

	addr, ok := decoded["address"].AsMap()
	require.True(t, ok)
	assert.Equal(t, "New York", addr["city"].Interface())
}

func TestEncodeAttributesNil(t *testing.T) {
	raw, err := EncodeAttributes(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)

	decoded, err := DecodeAttributes("")
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestGraphObjectJSON(t *testing.T) {
	x := 300.0
	obj := GraphObject{
		ID:    "abc",
		Class: ClassCompany,
		Name:  "A24",
		Data:  Attributes{"source": String("contacts")},
		MapX:  &x,
	}
	raw, err := json.Marshal(obj)
	require.NoError(t, err)

	var decoded GraphObject
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, obj.Name, decoded.Name)
	require.NotNil(t, decoded.MapX)
	assert.Equal(t, 300.0, *decoded.MapX)
	assert.Nil(t, decoded.MapY)
	assert.Equal(t, "contacts", decoded.Data.StringOr("source", ""))
}

func TestSeedTaxonomy(t *testing.T) {
	classes := SeedClasses()
	require.Len(t, classes, 3)

	byClass := map[string]int{}
	for _, tp := range SeedTypes() {
		byClass[tp.Class]++
	}
	assert.NotZero(t, byClass[ClassCompany])
	assert.NotZero(t, byClass[ClassPerson])
	assert.NotZero(t, byClass[ClassProject])

	var employedBy, relatedTo bool
	for _, rt := range SeedRelationshipTypes() {
		switch rt.ID {
		case RelEmployedBy:
			employedBy = true
			assert.Equal(t, []string{ClassPerson}, rt.ValidSourceClasses)
			assert.Equal(t, []string{ClassCompany}, rt.ValidTargetClasses)
		case "related_to":
			relatedTo = true
			assert.Nil(t, rt.ValidSourceClasses)
			assert.Nil(t, rt.ValidTargetClasses)
		}
	}
	assert.True(t, employedBy)
	assert.True(t, relatedTo)
}
