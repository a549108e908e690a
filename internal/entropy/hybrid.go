package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// HybridSource XORs one word from each of its parts. The result is at least
// as unpredictable as the strongest part.
type HybridSource struct {
	parts []Source
}

// NewHybridSource combines parts in order.
func NewHybridSource(parts ...Source) *HybridSource {
	return &HybridSource{parts: parts}
}

func (s *HybridSource) Kind() Kind { return KindHybrid }

// Uint32 fails if any part fails.
func (s *HybridSource) Uint32() (uint32, error) {
	var v uint32
	for _, p := range s.parts {
		w, err := p.Uint32()
		if err != nil {
			return 0, fmt.Errorf("hybrid %s: %w", p.Kind(), err)
		}
		v ^= w
	}
	return v, nil
}

// PrimaryKinds lists the kinds NewSource can build.
var PrimaryKinds = []Kind{KindCrypto, KindChaCha20, KindMT19937, KindHybrid}

// NewSource builds a primary source of the given kind. The keyed generators
// are seeded from r (crypto/rand when nil); the Mersenne Twister seed is also
// folded with the clock. The hybrid source combines ChaCha20, Mersenne Twister
// and a direct read from r.
func NewSource(kind Kind, r io.Reader, clock func() time.Time) (Source, error) {
	if r == nil {
		r = rand.Reader
	}
	if clock == nil {
		clock = time.Now
	}

	switch kind {
	case KindCrypto, "":
		return NewCryptoSource(r), nil
	case KindChaCha20:
		cc, err := chachaFrom(r)
		if err != nil {
			return nil, err
		}
		return cc, nil
	case KindMT19937:
		mt, err := mtFrom(r, clock)
		if err != nil {
			return nil, err
		}
		return mt, nil
	case KindHybrid:
		cc, err := chachaFrom(r)
		if err != nil {
			return nil, err
		}
		mt, err := mtFrom(r, clock)
		if err != nil {
			return nil, err
		}
		return NewHybridSource(cc, mt, NewCryptoSource(r)), nil
	default:
		return nil, fmt.Errorf("unknown entropy source %q (want one of %v)", kind, PrimaryKinds)
	}
}

func chachaFrom(r io.Reader) (*ChaCha20Source, error) {
	key := new([32]byte)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("%w: seed chacha20: %v", ErrUnsupportedSource, err)
	}
	return NewChaCha20Source(key), nil
}

func mtFrom(r io.Reader, clock func() time.Time) (*MT19937Source, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("%w: seed mt19937: %v", ErrUnsupportedSource, err)
	}
	seed := binary.LittleEndian.Uint32(b[:]) ^ uint32(clock().UnixMilli())
	return NewMT19937Source(seed), nil
}
