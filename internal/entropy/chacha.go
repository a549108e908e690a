package entropy

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/chacha20"
)

var chachaNonce = make([]byte, chacha20.NonceSize)

// ChaCha20Source is a keyed ChaCha20 keystream read as little endian words.
// The same key always replays the same stream.
type ChaCha20Source struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
	buf    [64]byte
	pos    int
}

// NewChaCha20Source seeds a ChaCha20Source from a 32-byte key.
func NewChaCha20Source(key *[32]byte) *ChaCha20Source {
	cipher, _ := chacha20.NewUnauthenticatedCipher(key[:], chachaNonce)
	return &ChaCha20Source{cipher: cipher, pos: 64}
}

func (s *ChaCha20Source) Kind() Kind { return KindChaCha20 }

func (s *ChaCha20Source) Uint32() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == len(s.buf) {
		clear(s.buf[:])
		s.cipher.XORKeyStream(s.buf[:], s.buf[:])
		s.pos = 0
	}
	v := binary.LittleEndian.Uint32(s.buf[s.pos:])
	s.pos += 4
	return v, nil
}
