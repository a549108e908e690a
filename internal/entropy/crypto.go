package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	mathrand "math/rand/v2"
	"sync"
	"time"
)

// CryptoSource reads words from a CSPRNG reader.
type CryptoSource struct {
	r io.Reader
}

// NewCryptoSource wraps r. A nil reader selects crypto/rand.Reader.
func NewCryptoSource(r io.Reader) *CryptoSource {
	if r == nil {
		r = rand.Reader
	}
	return &CryptoSource{r: r}
}

func (s *CryptoSource) Kind() Kind { return KindCrypto }

// Uint32 returns the next word, or ErrUnsupportedSource when the reader fails.
func (s *CryptoSource) Uint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// WeakSource is the declared fallback when no CSPRNG is available: a PCG
// generator seeded from the wall clock, folded with the current time on every
// read. It is predictable and must only be used behind a degraded flag.
type WeakSource struct {
	mu    sync.Mutex
	rng   *mathrand.Rand
	clock func() time.Time
}

// NewWeakSource seeds a WeakSource from clock (time.Now when nil).
func NewWeakSource(clock func() time.Time) *WeakSource {
	if clock == nil {
		clock = time.Now
	}
	now := uint64(clock().UnixNano())
	return &WeakSource{
		rng:   mathrand.New(mathrand.NewPCG(now, now^0x9E3779B97F4A7C15)),
		clock: clock,
	}
}

func (s *WeakSource) Kind() Kind { return KindFallback }

func (s *WeakSource) Uint32() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint32() ^ uint32(s.clock().UnixNano()), nil
}
