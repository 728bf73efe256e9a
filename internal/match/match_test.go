package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "warner bros", Normalize("Warner Bros. Entertainment Inc."))
	assert.Equal(t, "netflix", Normalize("Netflix, Inc."))
	assert.Equal(t, "a24", Normalize("A24 Films"))
	assert.Equal(t, "", Normalize("Productions LLC"))
	assert.Equal(t, "blumhouse", Normalize("BLUMHOUSE PRODUCTIONS"))
}

func TestIsMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Netflix", "Netflix Inc.", true},
		{"Warner Bros.", "Warner Bros. Entertainment", true},
		{"Warner Bros. Pictures", "Warner Brothers", true},
		{"Amazon Studios", "Amazon MGM Studios", true},
		{"ABC", "XYZ", false},
		{"", "Netflix", false},
		{"Legendary", "Legendary Entertainment", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsMatch(tc.a, tc.b, DefaultThreshold), "%s vs %s", tc.a, tc.b)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 0, LevenshteinDistance("same", "same"))
	assert.Equal(t, 4, LevenshteinDistance("", "abcd"))
	assert.Equal(t, 4, LevenshteinDistance("abcd", ""))
}

func TestLevenshteinSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, LevenshteinSimilarity("", ""))
	assert.Equal(t, 1.0, LevenshteinSimilarity("netflix", "netflix"))
	assert.InDelta(t, 1.0-3.0/7.0, LevenshteinSimilarity("kitten", "sitting"), 1e-9)
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"Warner Bros.", "Netflix", "A24", "Neon"}

	m, ok := BestMatch("Netflix Inc.", candidates, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "Netflix", m.Candidate)
	assert.Equal(t, 1.0, m.Score)

	m, ok = BestMatch("Warner Bros Discovery", candidates, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "Warner Bros.", m.Candidate)
	assert.Equal(t, 0.95, m.Score)

	_, ok = BestMatch("Totally Unrelated Studio Name", candidates, DefaultThreshold)
	assert.False(t, ok)

	_, ok = BestMatch("", candidates, DefaultThreshold)
	assert.False(t, ok)
}

func TestBestMatchEarliestWinsTies(t *testing.T) {
	// Both candidates contain the target; the first one wins.
	m, ok := BestMatch("Neon", []string{"Neon Rated", "Neon Global"}, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "Neon Rated", m.Candidate)
}
