package domain

import (
	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyCutoff is the minimum similarity ratio a key needs to be chosen when
// the query has no exact match.
const FuzzyCutoff = 0.4

// MatchKind records how a query was resolved.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "none"
)

// Resolution is the outcome of resolving one query against a NameMap.
type Resolution struct {
	Query      string    `json:"query"`
	Key        string    `json:"key"`
	MatchedKey string    `json:"matched_key,omitempty"`
	Match      MatchKind `json:"match"`
	Score      float64   `json:"score"`
	Targets    []string  `json:"targets"`
}

// Found reports whether the query resolved to at least one raw name.
func (r Resolution) Found() bool {
	return len(r.Targets) > 0
}

// Resolve maps a user query to the raw station names it refers to.
func Resolve(m NameMap, query string) Resolution {
	key := NormalizeStationName(query)
	res := Resolution{Query: query, Key: key, Match: MatchNone, Targets: []string{}}

	if targets, ok := m[key]; ok {
		res.MatchedKey = key
		res.Match = MatchExact
		res.Score = 1
		res.Targets = targets
		return res
	}

	best, score, ok := ClosestKey(key, m.Keys(), FuzzyCutoff)
	if !ok {
		return res
	}
	res.MatchedKey = best
	res.Match = MatchFuzzy
	res.Score = score
	res.Targets = m[best]
	return res
}

// ClosestKey returns the candidate most similar to word whose ratio is at
// least cutoff. Equal ratios are broken in favour of the greater string.
// Ratios are computed on runes with difflib semantics: the candidate is the
// first sequence, word the second.
func ClosestKey(word string, candidates []string, cutoff float64) (string, float64, bool) {
	s := difflib.NewMatcher(nil, nil)
	s.SetSeq2(splitRunes(word))

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		s.SetSeq1(splitRunes(c))
		if s.RealQuickRatio() < cutoff || s.QuickRatio() < cutoff {
			continue
		}
		r := s.Ratio()
		if r < cutoff {
			continue
		}
		if !found || r > bestScore || (r == bestScore && c > best) {
			best, bestScore, found = c, r, true
		}
	}
	return best, bestScore, found
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
