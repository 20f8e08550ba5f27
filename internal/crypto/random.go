package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniform random integers in [0, n).
type Source interface {
	IntN(n int) (int, error)
}

// CryptoSource draws from crypto/rand. It is the default source.
type CryptoSource struct{}

// IntN returns a uniform random int in [0, n) using crypto/rand.
func (CryptoSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid range %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// LegacySource is a fast non-cryptographic source matching the behavior of
// the original desktop tool. Safe for concurrent use.
type LegacySource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewLegacySource returns a LegacySource seeded from the runtime.
func NewLegacySource() *LegacySource {
	return NewSeededSource(mrand.Uint64(), mrand.Uint64())
}

// NewSeededSource returns a deterministic LegacySource. Two sources built with
// the same seeds produce the same sequence.
func NewSeededSource(seed1, seed2 uint64) *LegacySource {
	return &LegacySource{rng: mrand.New(mrand.NewPCG(seed1, seed2))}
}

// IntN returns a pseudo-random int in [0, n).
func (s *LegacySource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid range %d", n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n), nil
}

// SourceByName maps a configuration value to a Source.
// "crypto" and "" select CryptoSource; "legacy" selects a LegacySource.
func SourceByName(name string) (Source, error) {
	switch name {
	case "", "crypto":
		return CryptoSource{}, nil
	case "legacy":
		return NewLegacySource(), nil
	default:
		return nil, fmt.Errorf("unknown random source %q", name)
	}
}
