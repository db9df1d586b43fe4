package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Rand is the randomness provider used for all money-affecting decisions.
// Implementations must draw from an unpredictable, non-reproducible source.
type Rand interface {
	// IntN returns a uniformly distributed integer in [0, n)
	IntN(n int64) (int64, error)

	// IntRange returns a uniformly distributed integer in [min, max]
	IntRange(min, max int64) (int64, error)
}

// cryptoRand wraps crypto/rand. Source exhaustion surfaces as
// ErrRandomSource; it never falls back to a seeded generator.
type cryptoRand struct{}

// NewCryptoRand returns the production randomness provider
func NewCryptoRand() Rand {
	return cryptoRand{}
}

func (cryptoRand) IntN(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("IntN bound must be positive, got %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return v.Int64(), nil
}

func (cryptoRand) IntRange(min, max int64) (int64, error) {
	if max < min {
		return 0, fmt.Errorf("invalid range [%d, %d]", min, max)
	}
	v, err := cryptoRand{}.IntN(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + v, nil
}
