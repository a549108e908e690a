package entropy

import (
	"log/slog"
	"math/bits"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Quality describes one collection. Score is a synthetic display value with no
// statistical meaning; Degraded is the only field callers should act on.
type Quality struct {
	Score    float64 `json:"synthetic_quality"`
	Source   Kind    `json:"source"`
	Degraded bool    `json:"degraded"`
	Missing  []Kind  `json:"missing,omitempty"`
}

// Collection is the set of samples gathered for one seed.
type Collection struct {
	Samples []Sample
	Quality Quality
}

// Values returns the raw words in collection order.
func (c Collection) Values() []uint32 {
	out := make([]uint32, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Value
	}
	return out
}

// Collector gathers one primary sample plus the ambient samples for a seed.
type Collector struct {
	primary  Source
	fallback Source
	clock    func() time.Time
	logger   *slog.Logger

	warnOnce sync.Once
}

// Option configures a Collector.
type Option func(*Collector)

// WithFallback replaces the weak source used when the primary fails.
func WithFallback(s Source) Option {
	return func(c *Collector) { c.fallback = s }
}

// WithClock sets the clock used for timing samples.
func WithClock(clock func() time.Time) Option {
	return func(c *Collector) { c.clock = clock }
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// NewCollector builds a collector around primary. A nil primary selects the
// system CSPRNG.
func NewCollector(primary Source, opts ...Option) *Collector {
	if primary == nil {
		primary = NewCryptoSource(nil)
	}
	c := &Collector{
		primary: primary,
		clock:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fallback == nil {
		c.fallback = NewWeakSource(c.clock)
	}
	return c
}

// Collect takes one sample from every source. It never fails: an unavailable
// primary is replaced by the fallback source and reported through Quality.
func (c *Collector) Collect(amb Ambient) Collection {
	q := Quality{Source: c.primary.Kind()}

	primary, err := c.primary.Uint32()
	if err != nil {
		c.warnOnce.Do(func() {
			c.logger.Warn("primary entropy source unavailable, using fallback",
				"source", c.primary.Kind(), "fallback", c.fallback.Kind(), "err", err)
		})
		q.Source = c.fallback.Kind()
		q.Degraded = true
		var ferr error
		if primary, ferr = c.fallback.Uint32(); ferr != nil {
			c.logger.Warn("fallback entropy source failed", "source", c.fallback.Kind(), "err", ferr)
			q.Missing = append(q.Missing, c.fallback.Kind())
		}
	}

	samples := []Sample{
		{Kind: q.Source, Value: primary},
		{Kind: KindGeometry, Value: geometryWord(amb)},
		{Kind: KindTiming, Value: timingWord(c.clock())},
		{Kind: KindPointer, Value: pointerWord(amb)},
	}
	for _, s := range samples[1:] {
		if s.Value == 0 {
			q.Missing = append(q.Missing, s.Kind)
		}
	}
	q.Score = syntheticScore(q, samples)

	return Collection{Samples: samples, Quality: q}
}

// syntheticScore starts at 50, adds bonuses for a healthy CSPRNG and for each
// ambient signal present, then scales by the 0/1 balance of the XOR of all
// samples.
func syntheticScore(q Quality, samples []Sample) float64 {
	score := 50.0
	if q.Source == KindCrypto && !q.Degraded {
		score += 30
	}

	var combined uint32
	for _, s := range samples {
		combined ^= s.Value
		switch {
		case s.Value == 0:
		case s.Kind == KindGeometry:
			score += 10
		case s.Kind == KindTiming, s.Kind == KindPointer:
			score += 5
		}
	}

	length := bits.Len32(combined)
	if length == 0 {
		length = 1
	}
	ones := bits.OnesCount32(combined)
	zeros := length - ones
	diff := ones - zeros
	if diff < 0 {
		diff = -diff
	}
	balance := 1 - float64(diff)/float64(length)

	score = min(100, score*balance)
	return decimal.NewFromFloat(score).Round(1).InexactFloat64()
}
