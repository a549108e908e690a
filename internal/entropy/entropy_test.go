package entropy

import (
	"bytes"
	"crypto/rand"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no device") }

func fixedClock() time.Time { return time.Unix(1700000000, 123456789) }

func TestCryptoSourceReadsLittleEndian(t *testing.T) {
	src := NewCryptoSource(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))

	v, err := src.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v)
	assert.Equal(t, KindCrypto, src.Kind())
}

func TestCryptoSourceUnavailable(t *testing.T) {
	src := NewCryptoSource(failingReader{})

	_, err := src.Uint32()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := NewSeededSource("server", "client", 7)
	b := NewSeededSource("server", "client", 7)
	c := NewSeededSource("server", "client", 8)

	var sameAsC int
	for i := 0; i < 20; i++ { // crosses the 32-byte round boundary
		va, _ := a.Uint32()
		vb, _ := b.Uint32()
		vc, _ := c.Uint32()
		require.Equal(t, va, vb, "word %d", i)
		if va == vc {
			sameAsC++
		}
	}
	assert.Less(t, sameAsC, 20)
}

func TestCollectorFallsBackVisibly(t *testing.T) {
	c := NewCollector(NewCryptoSource(failingReader{}), WithClock(fixedClock))

	col := c.Collect(Ambient{})
	assert.True(t, col.Quality.Degraded)
	assert.Equal(t, KindFallback, col.Quality.Source)
	assert.Equal(t, KindFallback, col.Samples[0].Kind)
}

func TestCollectorHealthySource(t *testing.T) {
	c := NewCollector(nil, WithClock(fixedClock))

	col := c.Collect(Ambient{ScreenWidth: 1920, ScreenHeight: 1080, PointerX: 10, PointerY: 20, LastClick: 1700000000000})
	assert.False(t, col.Quality.Degraded)
	assert.Equal(t, KindCrypto, col.Quality.Source)
	assert.Empty(t, col.Quality.Missing)
	assert.Len(t, col.Values(), 4)
	assert.GreaterOrEqual(t, col.Quality.Score, 0.0)
	assert.LessOrEqual(t, col.Quality.Score, 100.0)
}

func TestCollectorReportsMissingAmbient(t *testing.T) {
	c := NewCollector(NewSeededSource("s", "c", 1), WithClock(fixedClock))

	col := c.Collect(Ambient{})
	assert.False(t, col.Quality.Degraded)
	assert.Equal(t, KindSeeded, col.Quality.Source)
	assert.ElementsMatch(t, []Kind{KindGeometry, KindPointer}, col.Quality.Missing)
}

func TestPointerWordAbsent(t *testing.T) {
	assert.Zero(t, pointerWord(Ambient{}))
	assert.NotZero(t, pointerWord(Ambient{PointerX: 3, PointerY: 4, LastClick: 5}))
}

type brokenSource struct{ kind Kind }

func (s brokenSource) Kind() Kind              { return s.kind }
func (s brokenSource) Uint32() (uint32, error) { return 0, ErrUnsupportedSource }

type fixedSource uint32

func (fixedSource) Kind() Kind                { return KindSeeded }
func (s fixedSource) Uint32() (uint32, error) { return uint32(s), nil }

func TestCollectorReportsFailedFallback(t *testing.T) {
	var logs bytes.Buffer
	c := NewCollector(NewCryptoSource(failingReader{}),
		WithFallback(brokenSource{kind: KindFallback}),
		WithClock(fixedClock),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	col := c.Collect(Ambient{ScreenWidth: 800, ScreenHeight: 600, PointerX: 1, PointerY: 2, LastClick: 3})
	assert.True(t, col.Quality.Degraded)
	assert.Equal(t, []Kind{KindFallback}, col.Quality.Missing)
	assert.Zero(t, col.Samples[0].Value)
	assert.Contains(t, logs.String(), "fallback entropy source failed")
}

func TestMT19937ReferenceOutput(t *testing.T) {
	src := NewMT19937Source(5489)
	want := []uint32{3499211612, 581869302, 3890346734, 3586334585, 545404204}
	for i, w := range want {
		v, err := src.Uint32()
		require.NoError(t, err)
		assert.Equal(t, w, v, "word %d", i)
	}
	assert.Equal(t, KindMT19937, src.Kind())
}

func TestChaCha20KeystreamWords(t *testing.T) {
	// all-zero key and nonce, block 0
	src := NewChaCha20Source(new([32]byte))
	first, err := src.Uint32()
	require.NoError(t, err)
	second, err := src.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xade0b876), first)
	assert.Equal(t, uint32(0x903df1a0), second)

	// crosses the 64-byte block boundary deterministically
	a, b := NewChaCha20Source(&[32]byte{1}), NewChaCha20Source(&[32]byte{1})
	for i := 0; i < 40; i++ {
		va, _ := a.Uint32()
		vb, _ := b.Uint32()
		require.Equal(t, va, vb, "word %d", i)
	}
}

func TestHybridSourceXorsParts(t *testing.T) {
	h := NewHybridSource(fixedSource(0xF0F0F0F0), fixedSource(0x0FF00FF0), fixedSource(0x1))
	v, err := h.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xF0F0F0F0^0x0FF00FF0^0x1), v)
	assert.Equal(t, KindHybrid, h.Kind())

	_, err = NewHybridSource(fixedSource(1), brokenSource{kind: KindCrypto}).Uint32()
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestNewSource(t *testing.T) {
	for _, kind := range PrimaryKinds {
		src, err := NewSource(kind, nil, fixedClock)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, src.Kind())
		_, err = src.Uint32()
		assert.NoError(t, err, kind)
	}

	_, err := NewSource("lcg", nil, nil)
	assert.Error(t, err)

	_, err = NewSource(KindChaCha20, failingReader{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestCollectorWithGeneratorSources(t *testing.T) {
	src, err := NewSource(KindHybrid, nil, fixedClock)
	require.NoError(t, err)

	col := NewCollector(src, WithClock(fixedClock)).Collect(Ambient{})
	assert.False(t, col.Quality.Degraded)
	assert.Equal(t, KindHybrid, col.Quality.Source)
}

func benchmarkSource(b *testing.B, src Source) {
	b.Helper()
	for range b.N {
		if _, err := src.Uint32(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMT19937(b *testing.B) { benchmarkSource(b, NewMT19937Source(5489)) }

func BenchmarkChaCha20(b *testing.B) { benchmarkSource(b, NewChaCha20Source(new([32]byte))) }

func BenchmarkCrypto(b *testing.B) { benchmarkSource(b, NewCryptoSource(rand.Reader)) }

func BenchmarkHybrid(b *testing.B) {
	src, err := NewSource(KindHybrid, nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	benchmarkSource(b, src)
}
