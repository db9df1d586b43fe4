package services

import "fmt"

// seqRand returns pre-programmed values so winner selection is deterministic
// in tests. Values wrap around when exhausted.
type seqRand struct {
	values []int64
	pos    int
}

func newSeqRand(values ...int64) *seqRand {
	if len(values) == 0 {
		values = []int64{0}
	}
	return &seqRand{values: values}
}

func (r *seqRand) IntN(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("IntN bound must be positive, got %d", n)
	}
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v % n, nil
}

func (r *seqRand) IntRange(min, max int64) (int64, error) {
	v, err := r.IntN(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + v, nil
}

// failRand simulates random source exhaustion
type failRand struct{}

func (failRand) IntN(n int64) (int64, error) {
	return 0, ErrRandomSource
}

func (failRand) IntRange(min, max int64) (int64, error) {
	return 0, ErrRandomSource
}
