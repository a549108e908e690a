// Package engine turns collected entropy into lottery number sets.
//
// Each number is drawn from a fresh seed: the collector gathers one sample per
// source, Mix folds them into a single word, MapRange reduces it into the
// requested range and the Sampler rejects duplicates until the set is full.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/powerball-superposition/internal/entropy"
)

// DefaultHistorySize bounds the list of recent results kept by an Engine.
const DefaultHistorySize = 20

// Collector supplies entropy samples for one seed.
type Collector interface {
	Collect(amb entropy.Ambient) entropy.Collection
}

// Status is a snapshot of engine state. CryptoAvailable is true only when the
// last generation drew its primary samples from a healthy system CSPRNG.
type Status struct {
	Generations     uint64          `json:"generations"`
	CryptoAvailable bool            `json:"crypto_available"`
	LastQuality     entropy.Quality `json:"last_quality"`
	LastGenerated   *time.Time      `json:"last_generated,omitempty"`
	HistorySize     int             `json:"history_size"`
}

// Engine generates NumberSets. It is safe for concurrent use.
type Engine struct {
	collector Collector
	logger    *slog.Logger
	pacing    time.Duration
	maxHist   int
	clock     func() time.Time

	mu          sync.Mutex
	generations uint64
	lastQuality entropy.Quality
	lastAt      time.Time
	history     []Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPacing inserts a delay between accepted draws. It has no effect on the
// numbers produced.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) { e.pacing = d }
}

// WithHistorySize bounds the recent-results list. Values below 1 disable it.
func WithHistorySize(n int) Option {
	return func(e *Engine) { e.maxHist = n }
}

// WithClock overrides time.Now for result timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New builds an engine around collector.
func New(collector Collector, opts ...Option) *Engine {
	e := &Engine{
		collector: collector,
		logger:    slog.Default(),
		maxHist:   DefaultHistorySize,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate draws Main.Count distinct main numbers and one special number.
// The special number is drawn from its own range and may equal a main number.
func (e *Engine) Generate(ctx context.Context, req Request) (Result, error) {
	if req.Special.Size() == 0 {
		return Result{}, fmt.Errorf("special: %w: min %d is greater than max %d",
			ErrInvalidRange, req.Special.Min, req.Special.Max)
	}

	var (
		worst    entropy.Quality
		scored   bool
		scoreSum float64
		draws    int
	)
	next := func() uint32 {
		c := e.collector.Collect(req.Ambient)
		seed := Mix(c.Values()...)
		e.logger.Debug("seed mixed", "seed", fmt.Sprintf("%#08x", seed), "source", c.Quality.Source)

		draws++
		scoreSum += c.Quality.Score
		if !scored || c.Quality.Degraded && !worst.Degraded {
			worst = c.Quality
			scored = true
		}
		return seed
	}

	sampler := NewSampler(next, e.pacing)

	main, stats, err := sampler.Sample(ctx, req.Main.Count, req.Main.Min, req.Main.Max, nil)
	if err != nil {
		return Result{}, fmt.Errorf("main: %w", err)
	}
	special, specialStats, err := sampler.Sample(ctx, 1, req.Special.Min, req.Special.Max, nil)
	if err != nil {
		return Result{}, fmt.Errorf("special: %w", err)
	}
	stats.Attempts += specialStats.Attempts
	stats.UsedFallback = stats.UsedFallback || specialStats.UsedFallback

	quality := worst
	if draws > 0 {
		quality.Score = roundScore(scoreSum / float64(draws))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.generations++
	res := Result{
		GenerationID: e.generations,
		Numbers:      NumberSet{Main: main, Special: special[0]},
		Quality:      quality,
		Stats:        stats,
		GeneratedAt:  e.clock().UTC(),
	}
	e.lastQuality = quality
	e.lastAt = res.GeneratedAt
	if e.maxHist > 0 {
		e.history = append(e.history, res)
		if over := len(e.history) - e.maxHist; over > 0 {
			e.history = append(e.history[:0:0], e.history[over:]...)
		}
	}

	if quality.Degraded {
		e.logger.Warn("numbers generated with degraded entropy",
			"generation", res.GenerationID, "source", quality.Source)
	}
	e.logger.Info("numbers generated",
		"generation", res.GenerationID,
		"main", main,
		"special", res.Numbers.Special,
		"attempts", stats.Attempts,
		"fallback", stats.UsedFallback)

	return res, nil
}

func roundScore(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Recent returns up to the last history-size results, newest first.
func (e *Engine) Recent() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, len(e.history))
	for i, r := range e.history {
		out[len(e.history)-1-i] = r
	}
	return out
}

// Status reports counters and the quality of the most recent generation.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Generations:     e.generations,
		CryptoAvailable: e.lastQuality.Source == entropy.KindCrypto && !e.lastQuality.Degraded,
		LastQuality:     e.lastQuality,
		HistorySize:     len(e.history),
	}
	if !e.lastAt.IsZero() {
		t := e.lastAt
		st.LastGenerated = &t
	}
	return st
}

// Reset clears history and counters.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generations = 0
	e.lastQuality = entropy.Quality{}
	e.lastAt = time.Time{}
	e.history = nil
	e.logger.Info("engine reset")
}
