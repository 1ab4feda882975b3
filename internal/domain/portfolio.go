package domain

import (
	"fmt"
	"math"
	"math/rand"
)

const WeightSumTolerance = 0.01

// WeightVector maps each symbol to its non-negative share of the
// portfolio
type WeightVector map[string]float64

// NewWeightVector zips symbols and weights together. It only checks
// the lengths; use Validate for the rest.
func NewWeightVector(symbols []string, weights []float64) (WeightVector, error) {
	if len(symbols) != len(weights) {
		return nil, fmt.Errorf("%w: got %d weights for %d symbols", ErrInvalidWeights, len(weights), len(symbols))
	}
	w := WeightVector{}
	for i, s := range symbols {
		if _, ok := w[s]; ok {
			return nil, fmt.Errorf("%w: duplicate symbol %s", ErrInvalidWeights, s)
		}
		w[s] = weights[i]
	}
	return w, nil
}

// EqualWeights gives every symbol 1/n
func EqualWeights(symbols []string) WeightVector {
	w := WeightVector{}
	for _, s := range symbols {
		w[s] = 1 / float64(len(symbols))
	}
	return w
}

// RandomWeights draws a uniform [0, 1) weight for each symbol and
// renormalizes so they sum to 1
func RandomWeights(symbols []string, rng *rand.Rand) WeightVector {
	values := RandomWeightSlice(len(symbols), rng)
	w := WeightVector{}
	for i, s := range symbols {
		w[s] = values[i]
	}
	return w
}

func RandomWeightSlice(n int, rng *rand.Rand) []float64 {
	values := make([]float64, n)
	for {
		sum := 0.0
		for i := range values {
			values[i] = rng.Float64()
			sum += values[i]
		}
		// all zero draws are practically impossible, but we'd divide by 0
		if sum > 0 {
			for i := range values {
				values[i] /= sum
			}
			return values
		}
	}
}

func (w WeightVector) Sum() float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum
}

// Validate checks that the weights cover exactly the given symbols,
// are non-negative, and sum to 1 within WeightSumTolerance
func (w WeightVector) Validate(symbols []string) error {
	if len(w) != len(symbols) {
		return fmt.Errorf("%w: got %d weights for %d symbols", ErrInvalidWeights, len(w), len(symbols))
	}
	for _, s := range symbols {
		v, ok := w[s]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, s)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight for %s must be non-negative, got %f", ErrInvalidWeights, s, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: weights sum to %f, expected 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Slice orders the weights by symbols
func (w WeightVector) Slice(symbols []string) []float64 {
	out := make([]float64, len(symbols))
	for i, s := range symbols {
		out[i] = w[s]
	}
	return out
}
