package entropy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
)

// SeededSource replays a deterministic word stream derived from a server seed,
// client seed and nonce. Bytes come from HMAC-SHA256(server, "client:nonce:round")
// in 32-byte rounds, so the same triple always yields the same numbers.
type SeededSource struct {
	mu  sync.Mutex
	gen *byteGenerator
}

// NewSeededSource starts the stream at byte cursor 0.
func NewSeededSource(serverSeed, clientSeed string, nonce uint64) *SeededSource {
	return &SeededSource{gen: newByteGenerator(serverSeed, clientSeed, nonce, 0)}
}

func (s *SeededSource) Kind() Kind { return KindSeeded }

func (s *SeededSource) Uint32() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b [4]byte
	for i := range b {
		b[i] = s.gen.next()
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

type byteGenerator struct {
	serverSeed   string
	clientSeed   string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

func newByteGenerator(serverSeed, clientSeed string, nonce, cursor uint64) *byteGenerator {
	bg := &byteGenerator{
		serverSeed:   serverSeed,
		clientSeed:   clientSeed,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}
	bg.generateRound()
	return bg
}

func (bg *byteGenerator) next() byte {
	if bg.currentPos >= len(bg.buffer) {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}
	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

func (bg *byteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", bg.clientSeed, bg.nonce, bg.currentRound)
	copy(bg.buffer[:], h.Sum(nil))
}
