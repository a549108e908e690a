package engine

import (
	"math"
	"time"

	"github.com/MJE43/powerball-superposition/internal/entropy"
)

// Range is a closed integer interval [Min, Max].
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Size returns the number of integers in the range, or 0 when Min > Max.
// The full int range has 2^64 members and saturates at math.MaxUint64.
func (r Range) Size() uint64 {
	if r.Min > r.Max {
		return 0
	}
	d := uint64(r.Max) - uint64(r.Min)
	if d == math.MaxUint64 {
		return d
	}
	return d + 1
}

// offset is the distance of v from Min. v must lie in the range.
func (r Range) offset(v int) uint64 {
	return uint64(v) - uint64(r.Min)
}

// at returns the value off steps above Min.
func (r Range) at(off uint64) int {
	return int(uint64(r.Min) + off)
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Pick asks for Count distinct values from a range.
type Pick struct {
	Count int `json:"count" yaml:"count"`
	Range `yaml:",inline"`
}

// Request describes one generation event.
type Request struct {
	Main    Pick            `json:"main"`
	Special Range           `json:"special"`
	Ambient entropy.Ambient `json:"ambient,omitempty"`
}

// PowerballRequest is five of [1,69] plus one of [1,26].
func PowerballRequest() Request {
	return Request{
		Main:    Pick{Count: 5, Range: Range{Min: 1, Max: 69}},
		Special: Range{Min: 1, Max: 26},
	}
}

// NumberSet is the generated output: sorted distinct main numbers and one
// special number drawn independently from its own range.
type NumberSet struct {
	Main    []int `json:"main"`
	Special int   `json:"special"`
}

// DrawStats records how the sampler reached its result.
type DrawStats struct {
	Attempts     int  `json:"attempts"`
	UsedFallback bool `json:"used_fallback"`
}

// Result is a NumberSet plus the metadata of the call that produced it.
type Result struct {
	GenerationID uint64          `json:"generation_id"`
	Numbers      NumberSet       `json:"numbers"`
	Quality      entropy.Quality `json:"quality"`
	Stats        DrawStats       `json:"stats"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
