// Package match implements fuzzy company-name matching for contact
// import: punctuation-insensitive normalization with corporate suffix
// stripping, a layered match predicate, and best-candidate selection
// over Levenshtein similarity.
package match

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the minimum Levenshtein similarity treated as a
// match.
const DefaultThreshold = 0.8

// corporateSuffixes are dropped during normalization. Punctuation is
// stripped first, so dotted variants like "inc." reduce to these.
var corporateSuffixes = map[string]bool{
	"inc": true, "incorporated": true,
	"llc":  true,
	"corp": true, "corporation": true,
	"co": true, "company": true,
	"ltd": true, "limited": true,
	"entertainment": true, "pictures": true, "films": true,
	"studios": true, "studio": true,
	"productions": true, "production": true,
	"media": true, "group": true, "holdings": true,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9 ]`)

// Normalize lowercases, strips everything but letters, digits, and
// spaces, and drops corporate suffix tokens.
func Normalize(name string) string {
	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
	var kept []string
	for _, w := range strings.Fields(s) {
		if !corporateSuffixes[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// IsMatch reports whether two company names refer to the same company.
// After normalization it tries, in order: exact equality, containment,
// token overlap of at least half the shorter name, and Levenshtein
// similarity against threshold.
func IsMatch(a, b string, threshold float64) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return true
	}
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	wordsA := tokenSet(na)
	wordsB := tokenSet(nb)
	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}
	shorter := min(len(wordsA), len(wordsB))
	if common > 0 && float64(common)/float64(shorter) >= 0.5 {
		return true
	}

	return LevenshteinSimilarity(na, nb) >= threshold
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

// LevenshteinSimilarity maps edit distance into [0, 1]; two empty
// strings score 1.0.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// LevenshteinDistance is the classic dynamic-programming edit distance
// over runes.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Match is a scored candidate returned by BestMatch.
type Match struct {
	Candidate string
	Score     float64
}

// BestMatch scans candidates in order and returns the strongest match
// for name, if any clears threshold. A normalized-exact candidate wins
// immediately with score 1.0, containment scores 0.95, everything else
// scores its Levenshtein similarity. Ties keep the earliest candidate.
func BestMatch(name string, candidates []string, threshold float64) (Match, bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return Match{}, false
	}

	var best Match
	for _, candidate := range candidates {
		cn := Normalize(candidate)
		if cn == "" {
			continue
		}
		if normalized == cn {
			return Match{Candidate: candidate, Score: 1.0}, true
		}
		if strings.Contains(normalized, cn) || strings.Contains(cn, normalized) {
			if best.Score < 0.95 {
				best = Match{Candidate: candidate, Score: 0.95}
			}
			continue
		}
		if sim := LevenshteinSimilarity(normalized, cn); sim >= threshold && sim > best.Score {
			best = Match{Candidate: candidate, Score: sim}
		}
	}
	if best.Candidate == "" {
		return Match{}, false
	}
	return best, true
}
