package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/powerball-superposition/internal/entropy"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func seededEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	col := entropy.NewCollector(entropy.NewSeededSource("server-seed", t.Name(), 1),
		entropy.WithClock(fixedClock), entropy.WithLogger(quietLogger()))
	return New(col, append([]Option{WithLogger(quietLogger()), WithClock(fixedClock)}, opts...)...)
}

func constSeed(v uint32) SeedFunc { return func() uint32 { return v } }

func TestMixIsDeterministic(t *testing.T) {
	assert.Equal(t, Mix(1, 2, 3), Mix(1, 2, 3))
	assert.Equal(t, Mix(1, 2, 3), Mix(3, 2, 1))
	assert.NotEqual(t, Mix(1, 2, 3), Mix(1, 2, 4))
	// absent sources are zero contributions
	assert.Equal(t, Mix(42), Mix(42, 0, 0))
}

func TestMapRangeIsIdempotent(t *testing.T) {
	for _, seed := range []uint32{0, 1, 68, 69, 0xDEADBEEF, 0xFFFFFFFF} {
		first := MapRange(seed, 1, 69)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, MapRange(seed, 1, 69))
		}
		assert.GreaterOrEqual(t, first, 1)
		assert.LessOrEqual(t, first, 69)
	}
	assert.Equal(t, 5, MapRange(0xFFFFFFFF, 5, 5))
	assert.Equal(t, -3, MapRange(0, -3, 3))
}

func TestSampleValidRequests(t *testing.T) {
	src := entropy.NewSeededSource("s", "c", 0)
	next := func() uint32 {
		v, err := src.Uint32()
		require.NoError(t, err)
		return v
	}
	s := NewSampler(next, 0)

	cases := []struct{ k, min, max int }{
		{5, 1, 69},
		{1, 1, 26},
		{10, 1, 10},
		{3, -5, 5},
		{20, 100, 140},
	}
	for _, tc := range cases {
		got, _, err := s.Sample(context.Background(), tc.k, tc.min, tc.max, nil)
		require.NoError(t, err)
		require.Len(t, got, tc.k)
		seen := map[int]bool{}
		for i, v := range got {
			assert.GreaterOrEqual(t, v, tc.min)
			assert.LessOrEqual(t, v, tc.max)
			assert.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
			if i > 0 {
				assert.Less(t, got[i-1], v, "not sorted")
			}
		}
	}
}

func TestSampleInsufficientRange(t *testing.T) {
	s := NewSampler(constSeed(7), 0)

	_, _, err := s.Sample(context.Background(), 11, 1, 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientRange)

	_, _, err = s.Sample(context.Background(), 3, 1, 4, []int{1, 2})
	assert.ErrorIs(t, err, ErrInsufficientRange)

	// exclusions outside the range do not count against it
	got, _, err := s.Sample(context.Background(), 4, 1, 4, []int{0, 5, 99})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestSampleInvalidInput(t *testing.T) {
	s := NewSampler(constSeed(0), 0)

	_, _, err := s.Sample(context.Background(), 1, 10, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = s.Sample(context.Background(), -1, 1, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestSampleBoundaries(t *testing.T) {
	s := NewSampler(constSeed(12345), 0)

	got, stats, err := s.Sample(context.Background(), 0, 1, 69, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stats.Attempts)

	got, _, err = s.Sample(context.Background(), 1, 42, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{42}, got)
}

func TestSampleFallbackFindsLastValue(t *testing.T) {
	// seed 0 always maps to 1, which is excluded
	s := NewSampler(constSeed(0), 0)

	got, stats, err := s.Sample(context.Background(), 1, 1, 10, []int{1, 2, 3, 4, 5, 6, 8, 9, 10})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, got)
	assert.True(t, stats.UsedFallback)
	assert.Equal(t, 21, stats.Attempts)
}

func TestSampleFallbackAfterDuplicates(t *testing.T) {
	s := NewSampler(constSeed(0), 0)

	got, stats, err := s.Sample(context.Background(), 3, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, stats.UsedFallback)
}

func TestSampleHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewSampler(constSeed(1), 0).Sample(ctx, 2, 1, 10, nil)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	seq := uint32(0)
	next := func() uint32 { seq++; return seq }
	_, _, err = NewSampler(next, time.Hour).Sample(ctx, 2, 1, 10, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRangeSize(t *testing.T) {
	cases := []struct {
		r    Range
		want uint64
	}{
		{Range{Min: 1, Max: 69}, 69},
		{Range{Min: 5, Max: 5}, 1},
		{Range{Min: 2, Max: 1}, 0},
		{Range{Min: 0, Max: math.MaxInt}, 1 << 63},
		{Range{Min: math.MinInt, Max: -1}, 1 << 63},
		{Range{Min: math.MinInt, Max: math.MaxInt}, math.MaxUint64},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.r.Size(), "%+v", tc.r)
	}
}

func TestSampleTerminatesAtMaxInt(t *testing.T) {
	done := make(chan struct{})
	var (
		got   []int
		stats DrawStats
		err   error
	)
	go func() {
		defer close(done)
		got, stats, err = NewSampler(constSeed(0), 0).
			Sample(context.Background(), 1, math.MaxInt-1, math.MaxInt, []int{math.MaxInt - 1})
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Sample did not return for [MaxInt-1, MaxInt]")
	}
	require.NoError(t, err)
	assert.Equal(t, []int{math.MaxInt}, got)
	assert.True(t, stats.UsedFallback)
}

func TestSampleFallbackAtMinInt(t *testing.T) {
	got, stats, err := NewSampler(constSeed(0), 0).Sample(context.Background(), 3, math.MinInt, math.MinInt+2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{math.MinInt, math.MinInt + 1, math.MinInt + 2}, got)
	assert.True(t, stats.UsedFallback)
}

func TestSampleWideRanges(t *testing.T) {
	seq := uint32(0)
	next := func() uint32 { seq += 7919; return seq }
	s := NewSampler(next, 0)

	got, _, err := s.Sample(context.Background(), 1, 0, math.MaxInt, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0], 0)

	got, _, err = s.Sample(context.Background(), 0, math.MinInt, math.MaxInt, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, _, err = s.Sample(context.Background(), 3, math.MinInt, math.MaxInt, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSampleRejectsOversizedCount(t *testing.T) {
	s := NewSampler(constSeed(1), 0)

	_, _, err := s.Sample(context.Background(), 10_000_000_000, 1, 10_000_000_000, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, _, err = s.Sample(context.Background(), MaxCount+1, 1, 1<<40, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)

	seq := uint32(0)
	got, _, err := NewSampler(func() uint32 { seq++; return seq }, 0).Sample(context.Background(), MaxCount, 1, 1<<40, nil)
	require.NoError(t, err)
	assert.Len(t, got, MaxCount)
}

func TestGeneratePowerball(t *testing.T) {
	e := seededEngine(t)

	for i := 0; i < 25; i++ {
		res, err := e.Generate(context.Background(), PowerballRequest())
		require.NoError(t, err)

		main := res.Numbers.Main
		require.Len(t, main, 5)
		for j, v := range main {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 69)
			if j > 0 {
				assert.Less(t, main[j-1], v)
			}
		}
		assert.GreaterOrEqual(t, res.Numbers.Special, 1)
		assert.LessOrEqual(t, res.Numbers.Special, 26)
		assert.Equal(t, uint64(i+1), res.GenerationID)
		assert.False(t, res.Quality.Degraded)
	}
}

func TestGenerateInsufficientRange(t *testing.T) {
	e := seededEngine(t)

	req := Request{Main: Pick{Count: 6, Range: Range{Min: 1, Max: 5}}, Special: Range{Min: 1, Max: 26}}
	_, err := e.Generate(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientRange)
	assert.Zero(t, e.Status().Generations)
}

func TestGenerateRejectsBadSpecialRange(t *testing.T) {
	e := seededEngine(t)

	req := PowerballRequest()
	req.Special = Range{Min: 26, Max: 1}
	_, err := e.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGenerateDegradedIsVisible(t *testing.T) {
	col := entropy.NewCollector(entropy.NewCryptoSource(errReader{}),
		entropy.WithClock(fixedClock), entropy.WithLogger(quietLogger()))
	e := New(col, WithLogger(quietLogger()))

	res, err := e.Generate(context.Background(), PowerballRequest())
	require.NoError(t, err)
	assert.True(t, res.Quality.Degraded)
	assert.Equal(t, entropy.KindFallback, res.Quality.Source)
	assert.False(t, e.Status().CryptoAvailable)
}

func TestStatusCryptoAvailable(t *testing.T) {
	seeded := seededEngine(t)
	assert.False(t, seeded.Status().CryptoAvailable)
	_, err := seeded.Generate(context.Background(), PowerballRequest())
	require.NoError(t, err)
	assert.False(t, seeded.Status().CryptoAvailable)

	col := entropy.NewCollector(nil, entropy.WithLogger(quietLogger()))
	e := New(col, WithLogger(quietLogger()))
	_, err = e.Generate(context.Background(), PowerballRequest())
	require.NoError(t, err)
	assert.True(t, e.Status().CryptoAvailable)
}

func TestHistoryIsBounded(t *testing.T) {
	e := seededEngine(t, WithHistorySize(3))

	for i := 0; i < 5; i++ {
		_, err := e.Generate(context.Background(), PowerballRequest())
		require.NoError(t, err)
	}

	recent := e.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(5), recent[0].GenerationID)
	assert.Equal(t, uint64(3), recent[2].GenerationID)

	st := e.Status()
	assert.Equal(t, uint64(5), st.Generations)
	assert.Equal(t, 3, st.HistorySize)
	require.NotNil(t, st.LastGenerated)
	assert.Equal(t, fixedClock(), *st.LastGenerated)

	e.Reset()
	assert.Empty(t, e.Recent())
	assert.Zero(t, e.Status().Generations)
	assert.Nil(t, e.Status().LastGenerated)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("entropy device missing") }

func BenchmarkGeneratePowerball(b *testing.B) {
	col := entropy.NewCollector(nil, entropy.WithLogger(quietLogger()))
	e := New(col, WithLogger(quietLogger()), WithHistorySize(0))
	req := PowerballRequest()

	b.ResetTimer()
	for range b.N {
		if _, err := e.Generate(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
