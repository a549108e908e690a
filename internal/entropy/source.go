// Package entropy collects the raw 32-bit samples that feed the seed mixer.
//
// A Collector always takes one sample from its primary Source (normally the
// operating system CSPRNG) and one sample from each ambient signal supplied by
// the host: a timing reading, screen geometry and pointer state. Missing
// ambient signals contribute zero, which lowers the effective entropy of the
// mixed seed but never blocks generation.
package entropy

import "errors"

// Kind tags where a sample came from.
type Kind string

const (
	KindCrypto   Kind = "crypto"
	KindFallback Kind = "fallback"
	KindSeeded   Kind = "seeded"
	KindChaCha20 Kind = "chacha20"
	KindMT19937  Kind = "mt19937"
	KindHybrid   Kind = "hybrid"
	KindTiming   Kind = "timing"
	KindGeometry Kind = "geometry"
	KindPointer  Kind = "pointer"
)

// Sample is one raw value feeding the mixer.
type Sample struct {
	Kind  Kind   `json:"kind"`
	Value uint32 `json:"value"`
}

// Source produces words for the primary slot of a Collector.
type Source interface {
	Kind() Kind
	Uint32() (uint32, error)
}

// ErrUnsupportedSource is returned by a Source that cannot produce output,
// e.g. when the system random device is unreadable.
var ErrUnsupportedSource = errors.New("entropy: source unavailable")
