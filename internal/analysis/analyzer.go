// Package analysis scores generated numbers against historical draws and
// against each other. The scores are novelty heuristics; none of them says
// anything about the odds of a drawing.
package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultTop is the number of matches FindSimilar returns when asked for 0.
	DefaultTop = 5
	// DefaultCacheSize bounds the FindSimilar result cache.
	DefaultCacheSize = 256

	summaryTop = 10
)

// ErrNoNumbers is returned when an empty main set is analysed.
var ErrNoNumbers = errors.New("no numbers to analyse")

// Match is a historical draw with its similarity to the analysed set.
type Match struct {
	Draw       Draw       `json:"draw"`
	Similarity Similarity `json:"similarity"`
	Grade      string     `json:"grade"`
}

// Summary aggregates the top matches.
type Summary struct {
	TotalAnalyzed     int     `json:"total_analyzed"`
	AverageSimilarity float64 `json:"average_similarity"`
	MaxSimilarity     float64 `json:"max_similarity"`
	MinSimilarity     float64 `json:"min_similarity"`
	TopGrade          string  `json:"top_grade,omitempty"`
	Profile           Profile `json:"profile"`
}

// Report is the full analysis of one generated set.
type Report struct {
	Matches []Match `json:"matches"`
	Summary Summary `json:"summary"`
}

// Stats describes the analyzer state.
type Stats struct {
	DrawsLoaded int `json:"draws_loaded"`
	CacheSize   int `json:"cache_size"`
}

// Analyzer compares sets against a fixed list of draws. It is safe for
// concurrent use.
type Analyzer struct {
	draws  []Draw
	cache  *lru.Cache[string, []Match]
	logger *slog.Logger
}

// New returns an analyzer over draws. Nil draws selects the built-in sample.
func New(draws []Draw, cacheSize int, logger *slog.Logger) (*Analyzer, error) {
	if draws == nil {
		draws = DefaultDraws()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []Match](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}
	logger.Debug("analyzer ready", "draws", len(draws), "cache_size", cacheSize)
	return &Analyzer{draws: draws, cache: cache, logger: logger}, nil
}

// Draws returns the loaded draws.
func (a *Analyzer) Draws() []Draw {
	return slices.Clone(a.draws)
}

// FindSimilar returns the top draws most similar to main/special, best first.
func (a *Analyzer) FindSimilar(main []int, special, top int) ([]Match, error) {
	if len(main) == 0 {
		return nil, ErrNoNumbers
	}
	if top <= 0 {
		top = DefaultTop
	}

	all, err := a.rank(main, special)
	if err != nil {
		return nil, err
	}
	return slices.Clone(all[:min(top, len(all))]), nil
}

// rank scores every draw, caching the ordering per input.
func (a *Analyzer) rank(main []int, special int) ([]Match, error) {
	key := cacheKey(main, special)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("analysis cache hit", "key", key)
		return cached, nil
	}

	matches := make([]Match, 0, len(a.draws))
	for _, d := range a.draws {
		s := Compare(main, special, d)
		matches = append(matches, Match{Draw: d, Similarity: s, Grade: Grade(s.OverallScore)})
	}
	slices.SortStableFunc(matches, func(x, y Match) int {
		switch {
		case x.Similarity.OverallScore > y.Similarity.OverallScore:
			return -1
		case x.Similarity.OverallScore < y.Similarity.OverallScore:
			return 1
		}
		return 0
	})
	a.cache.Add(key, matches)
	return matches, nil
}

// Summarize aggregates the ten best matches and profiles main.
func (a *Analyzer) Summarize(main []int, special int) (Summary, error) {
	top, err := a.FindSimilar(main, special, summaryTop)
	if err != nil {
		return Summary{}, err
	}
	return a.summary(main, top), nil
}

// Analyze returns the top matches and the summary in one call.
func (a *Analyzer) Analyze(main []int, special, top int) (Report, error) {
	matches, err := a.FindSimilar(main, special, max(top, summaryTop))
	if err != nil {
		return Report{}, err
	}
	if top <= 0 {
		top = DefaultTop
	}
	return Report{
		Matches: matches[:min(top, len(matches))],
		Summary: a.summary(main, matches[:min(summaryTop, len(matches))]),
	}, nil
}

func (a *Analyzer) summary(main []int, top []Match) Summary {
	s := Summary{TotalAnalyzed: len(a.draws), Profile: NewProfile(main)}
	if len(top) == 0 {
		return s
	}
	total := 0.0
	s.MaxSimilarity = top[0].Similarity.OverallScore
	s.MinSimilarity = top[0].Similarity.OverallScore
	for _, m := range top {
		v := m.Similarity.OverallScore
		total += v
		s.MaxSimilarity = max(s.MaxSimilarity, v)
		s.MinSimilarity = min(s.MinSimilarity, v)
	}
	s.AverageSimilarity = round2(total / float64(len(top)))
	s.TopGrade = Grade(s.MaxSimilarity)
	return s
}

// ClearCache drops every cached ranking.
func (a *Analyzer) ClearCache() {
	a.cache.Purge()
}

// Stats reports the analyzer state.
func (a *Analyzer) Stats() Stats {
	return Stats{DrawsLoaded: len(a.draws), CacheSize: a.cache.Len()}
}

func cacheKey(main []int, special int) string {
	parts := make([]string, len(main))
	for i, n := range main {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",") + "-" + strconv.Itoa(special)
}
