package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNameMap() NameMap {
	return NameMap{
		"합정":   {"합정"},
		"홍대입구": {"홍대입구", "홍대입구(2호선)"},
		"신촌":   {"신촌(2호선)", "신촌역"},
		"강남":   {"강남"},
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	res := Resolve(testNameMap(), "합정")

	assert.Equal(t, MatchExact, res.Match)
	assert.Equal(t, "합정", res.MatchedKey)
	assert.Contains(t, res.Targets, "합정")
	assert.True(t, res.Found())
}

func TestResolve_ExactMatchAfterNormalization(t *testing.T) {
	res := Resolve(testNameMap(), " 신촌역(2호선) ")

	assert.Equal(t, MatchExact, res.Match)
	assert.Equal(t, "신촌", res.Key)
	assert.Equal(t, []string{"신촌(2호선)", "신촌역"}, res.Targets)
}

func TestResolve_FuzzyFallback(t *testing.T) {
	res := Resolve(testNameMap(), "홍대입국")

	assert.Equal(t, MatchFuzzy, res.Match)
	assert.Equal(t, "홍대입구", res.MatchedKey)
	assert.InDelta(t, 0.75, res.Score, 0.0001)
	assert.Equal(t, []string{"홍대입구", "홍대입구(2호선)"}, res.Targets)
}

func TestResolve_Unrelated(t *testing.T) {
	res := Resolve(testNameMap(), "xyz")

	assert.Equal(t, MatchNone, res.Match)
	assert.Empty(t, res.Targets)
	assert.False(t, res.Found())
}

func TestResolve_EmptyMap(t *testing.T) {
	res := Resolve(NameMap{}, "신촌")
	assert.False(t, res.Found())
	assert.NotNil(t, res.Targets)
}

func TestClosestKey_Cutoff(t *testing.T) {
	// ratio = 2*matches/(len(a)+len(b)): 4/12 for the first, 4/10 for the second.
	_, _, ok := ClosestKey("ab", []string{"abcdefghij"}, 0.4)
	assert.False(t, ok, "ratio 0.333 is below cutoff")

	key, score, ok := ClosestKey("ab", []string{"abcdefgh"}, 0.4)
	require.True(t, ok, "ratio equal to cutoff is accepted")
	assert.Equal(t, "abcdefgh", key)
	assert.InDelta(t, 0.4, score, 0.0001)
}

func TestClosestKey_PrefersHigherScore(t *testing.T) {
	key, _, ok := ClosestKey("을지로3가", []string{"을지로4가", "을지로입구", "종로3가"}, 0.4)
	require.True(t, ok)
	assert.Equal(t, "을지로4가", key)
}

func TestClosestKey_TieBreaksOnGreaterKey(t *testing.T) {
	key, score, ok := ClosestKey("a", []string{"ab", "ac"}, 0.4)
	require.True(t, ok)
	assert.Equal(t, "ac", key)
	assert.InDelta(t, 2.0/3.0, score, 0.0001)

	key, _, _ = ClosestKey("a", []string{"ac", "ab"}, 0.4)
	assert.Equal(t, "ac", key, "result must not depend on candidate order")
}

func TestClosestKey_NoCandidates(t *testing.T) {
	_, _, ok := ClosestKey("신촌", nil, 0.4)
	assert.False(t, ok)
}
