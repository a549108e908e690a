package entropy

import "sync"

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// MT19937Source is the 32-bit Mersenne Twister. It is fast and statistically
// sound but fully predictable from 624 outputs, so it never counts as a
// cryptographic source.
type MT19937Source struct {
	mu    sync.Mutex
	state [mtN]uint32
	index int
}

// NewMT19937Source seeds the generator with the reference initialisation.
func NewMT19937Source(seed uint32) *MT19937Source {
	s := &MT19937Source{index: mtN}
	s.state[0] = seed
	for i := 1; i < mtN; i++ {
		prev := s.state[i-1]
		s.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	return s
}

func (s *MT19937Source) Kind() Kind { return KindMT19937 }

func (s *MT19937Source) Uint32() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= mtN {
		s.twist()
	}
	y := s.state[s.index]
	s.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y, nil
}

func (s *MT19937Source) twist() {
	for i := range mtN {
		y := s.state[i]&mtUpperMask | s.state[(i+1)%mtN]&mtLowerMask
		next := s.state[(i+mtM)%mtN] ^ y>>1
		if y&1 != 0 {
			next ^= mtMatrixA
		}
		s.state[i] = next
	}
	s.index = 0
}
