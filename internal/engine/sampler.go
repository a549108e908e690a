package engine

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"
)

// SeedFunc returns a fresh mixed seed for one draw.
type SeedFunc func() uint32

// Sampler draws distinct values from a range using a SeedFunc and MapRange.
type Sampler struct {
	next   SeedFunc
	pacing time.Duration
}

// NewSampler returns a sampler that pauses for pacing between accepted draws.
// Pacing is presentation only and may be zero.
func NewSampler(next SeedFunc, pacing time.Duration) *Sampler {
	return &Sampler{next: next, pacing: pacing}
}

// MaxCount bounds how many values one Sample call may return.
const MaxCount = 1000

// Sample returns k distinct values in [min, max], none of which appear in
// exclude, sorted ascending.
//
// It first draws and rejects duplicates for up to 2*size attempts. If that
// budget runs out it picks the remaining values by index among the free
// candidates, so it always succeeds when k fits. When k exceeds what the range
// can supply it fails with ErrInsufficientRange instead of returning a short
// result.
func (s *Sampler) Sample(ctx context.Context, k, min, max int, exclude []int) ([]int, DrawStats, error) {
	var stats DrawStats
	r := Range{Min: min, Max: max}

	size := r.Size()
	if size == 0 {
		return nil, stats, fmt.Errorf("%w: min %d is greater than max %d", ErrInvalidRange, min, max)
	}
	if k < 0 {
		return nil, stats, fmt.Errorf("%w: %d", ErrInvalidCount, k)
	}
	if k > MaxCount {
		return nil, stats, fmt.Errorf("%w: %d exceeds the limit of %d", ErrInvalidCount, k, MaxCount)
	}

	excluded := make(map[int]struct{}, len(exclude)+k)
	for _, v := range exclude {
		if r.Contains(v) {
			excluded[v] = struct{}{}
		}
	}
	available := size - uint64(len(excluded))
	if uint64(k) > available {
		return nil, stats, fmt.Errorf("%w: cannot draw %d unique numbers from [%d-%d] with %d excluded (%d available)",
			ErrInsufficientRange, k, min, max, len(excluded), available)
	}

	picked := make([]int, 0, k)
	maxAttempts := size * 2
	if size > math.MaxUint64/2 {
		maxAttempts = math.MaxUint64
	}

	for len(picked) < k && uint64(stats.Attempts) < maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Attempts++

		v := MapRange(s.next(), min, max)
		if _, taken := excluded[v]; taken {
			continue
		}
		excluded[v] = struct{}{}
		picked = append(picked, v)

		if len(picked) < k {
			if err := s.pause(ctx); err != nil {
				return nil, stats, err
			}
		}
	}

	if len(picked) < k {
		stats.UsedFallback = true
		taken := make([]uint64, 0, len(excluded))
		for v := range excluded {
			taken = append(taken, r.offset(v))
		}
		slices.Sort(taken)

		for len(picked) < k {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			stats.Attempts++
			free := size - uint64(len(taken))
			off := nthFree(uint64(s.next())%free, taken)
			pos, _ := slices.BinarySearch(taken, off)
			taken = slices.Insert(taken, pos, off)
			picked = append(picked, r.at(off))
		}
	}

	slices.Sort(picked)
	return picked, stats, nil
}

// nthFree returns the offset of the idx-th candidate not listed in taken,
// which must be sorted ascending.
func nthFree(idx uint64, taken []uint64) uint64 {
	off := idx
	for _, t := range taken {
		if t > off {
			break
		}
		off++
	}
	return off
}

func (s *Sampler) pause(ctx context.Context) error {
	if s.pacing <= 0 {
		return nil
	}
	t := time.NewTimer(s.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
