package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(nil, 8, nil)
	require.NoError(t, err)
	return a
}

func TestDefaultDrawsLoad(t *testing.T) {
	draws := DefaultDraws()
	require.Len(t, draws, 10)
	for _, d := range draws {
		assert.Len(t, d.Numbers, 5, d.Date)
		assert.True(t, d.Jackpot.IsPositive(), d.Date)
	}
}

func TestLoadDrawsBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2020-01-01","numbers":[9,3,1,7,5],"powerball":4,"jackpot":"1000000.50"}]`), 0o600))

	draws, err := LoadDraws(path)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, []int{1, 3, 5, 7, 9}, draws[0].Numbers)
	assert.Equal(t, "1000000.5", draws[0].Jackpot.String())
}

func TestLoadDrawsRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"draws":[]}`), 0o600))
	_, err := LoadDraws(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"date":"x","numbers":[1],"powerball":0}]`), 0o600))
	_, err = LoadDraws(bad)
	assert.Error(t, err)

	_, err = LoadDraws(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestCompareIdenticalDraw(t *testing.T) {
	d := Draw{Numbers: []int{15, 26, 27, 30, 35}, Powerball: 3}

	s := Compare([]int{15, 26, 27, 30, 35}, 3, d)
	assert.Equal(t, 100.0, s.OverallScore)
	assert.Equal(t, 5, s.DirectMatches)
	assert.Zero(t, s.SumDifference)
	assert.True(t, s.PowerballMatch)
	assert.Equal(t, "A+", Grade(s.OverallScore))
}

func TestCompareComponents(t *testing.T) {
	d := Draw{Numbers: []int{1, 2, 3, 4, 5}, Powerball: 9}

	s := Compare([]int{1, 2, 3, 4, 6}, 10, d)
	assert.Equal(t, 4, s.DirectMatches)
	assert.Equal(t, 1, s.SumDifference)
	assert.False(t, s.PowerballMatch)
	assert.Equal(t, 80.0, s.Breakdown.DirectMatch)
	assert.Equal(t, 100.0, s.Breakdown.ZonePattern)
	assert.Equal(t, 99.5, s.Breakdown.SumSimilarity)
	// gaps 1,1,1,2 vs 1,1,1,1
	assert.Equal(t, 98.75, s.Breakdown.Spacing)
	// 80*.3 + 100*.25 + 99.5*.2 + 98.75*.15 + 0
	assert.Equal(t, 83.71, s.OverallScore)
}

func TestZoneSimilarity(t *testing.T) {
	assert.Equal(t, 100.0, zoneSimilarity(Zones{Low: 5}, Zones{Low: 5}))
	// 100% low vs 100% high: diffs 100+0+100
	assert.InDelta(t, 33.33, zoneSimilarity(Zones{Low: 5}, Zones{High: 5}), 0.01)
	assert.Zero(t, zoneSimilarity(Zones{}, Zones{Low: 1}))
}

func TestGradeBoundaries(t *testing.T) {
	cases := map[float64]string{
		100: "A+", 90: "A+", 89.99: "A", 85: "A", 80: "A-", 75: "B+", 70: "B",
		65: "B-", 60: "C+", 55: "C", 50: "C-", 45: "D+", 40: "D", 39.99: "F", 0: "F",
	}
	for score, want := range cases {
		assert.Equal(t, want, Grade(score), "score %v", score)
	}
}

func TestProfile(t *testing.T) {
	p := NewProfile([]int{5, 3, 1, 4, 2})

	assert.Equal(t, 15, p.Sum)
	assert.Equal(t, 4, p.Range)
	assert.Equal(t, 3.0, p.Average)
	assert.Equal(t, Zones{Low: 5}, p.Zones)
	assert.Equal(t, []int{1, 1, 1, 1}, p.Spacing)
	assert.True(t, p.Consecutive)
	assert.True(t, p.Patterns.Arithmetic)
	assert.False(t, p.Patterns.Geometric)
	assert.True(t, p.Patterns.Fibonacci)
	assert.Equal(t, map[int]int{2: 2}, p.Patterns.Multiples)
	assert.Equal(t, 2, p.EvenCount)
	assert.Equal(t, 3, p.OddCount)
	assert.Equal(t, 3, p.PrimeCount)

	assert.True(t, NewProfile([]int{2, 4, 8, 16, 32}).Patterns.Geometric)
	assert.Zero(t, NewProfile(nil).Sum)
}

func TestFindSimilarRanksAndCaches(t *testing.T) {
	a := testAnalyzer(t)

	matches, err := a.FindSimilar([]int{15, 26, 27, 30, 35}, 3, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "2024-12-25", matches[0].Draw.Date)
	assert.Equal(t, 100.0, matches[0].Similarity.OverallScore)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity.OverallScore, matches[i].Similarity.OverallScore)
	}
	assert.Equal(t, 1, a.Stats().CacheSize)

	again, err := a.FindSimilar([]int{15, 26, 27, 30, 35}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, again, 10)
	assert.Equal(t, 1, a.Stats().CacheSize)

	a.ClearCache()
	assert.Zero(t, a.Stats().CacheSize)

	_, err = a.FindSimilar(nil, 3, 5)
	assert.ErrorIs(t, err, ErrNoNumbers)
}

func TestAnalyzeReport(t *testing.T) {
	a := testAnalyzer(t)

	r, err := a.Analyze([]int{15, 26, 27, 30, 35}, 3, 0)
	require.NoError(t, err)
	assert.Len(t, r.Matches, DefaultTop)
	assert.Equal(t, 10, r.Summary.TotalAnalyzed)
	assert.Equal(t, 100.0, r.Summary.MaxSimilarity)
	assert.Equal(t, "A+", r.Summary.TopGrade)
	assert.LessOrEqual(t, r.Summary.MinSimilarity, r.Summary.AverageSimilarity)
	assert.Equal(t, 133, r.Summary.Profile.Sum)

	s, err := a.Summarize([]int{15, 26, 27, 30, 35}, 3)
	require.NoError(t, err)
	assert.Equal(t, r.Summary, s)
}

func TestCompareSets(t *testing.T) {
	same := CompareSets([]int{3, 14, 15, 26, 53}, []int{3, 14, 15, 26, 53})
	assert.Equal(t, 5, same.Exact.Count)
	assert.Equal(t, 100.0, same.Exact.Percentage)
	assert.Equal(t, 1.0, same.Patterns.Similarity)
	assert.Zero(t, same.Distance.Total)
	assert.GreaterOrEqual(t, same.Score, 85.0)
	assert.LessOrEqual(t, same.Score, 100.0)
	assert.Contains(t, same.Insights, "exceptional similarity")

	far := CompareSets([]int{1, 2, 3}, []int{60, 65, 69})
	assert.Zero(t, far.Exact.Count)
	assert.Equal(t, 59, far.Distance.Max)
	assert.Less(t, far.Score, same.Score)
}

func TestPatternLabels(t *testing.T) {
	labels := patternLabels([]int{2, 4, 6, 8})
	assert.Contains(t, labels, "all_even")
	assert.Contains(t, labels, "ascending")
	assert.Contains(t, labels, "cosmic_powers of 2")
	assert.NotContains(t, labels, "consecutive")

	assert.Contains(t, patternLabels([]int{12, 21}), "palindrome")
	assert.Equal(t, 9, digitalRoot(99))
	assert.Equal(t, 6, digitalRoot(69))
}
