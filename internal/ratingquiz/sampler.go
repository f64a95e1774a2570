package ratingquiz

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// DefaultMaxAttempts bounds the rejection loop before Sample falls back to
// enumerating the valid pairs.
const DefaultMaxAttempts = 1000

// Sampler draws round pairs from a filtered pool. The zero value is not
// usable; construct with NewSampler.
type Sampler struct {
	maxAttempts int
	intN        func(n int) int
}

// NewSampler returns a sampler backed by the global math/rand/v2 source,
// which is safe for concurrent use.
func NewSampler(maxAttempts int) *Sampler {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Sampler{maxAttempts: maxAttempts, intN: rand.IntN}
}

// NewSamplerWithSource uses r for every draw. r is not safe for concurrent
// use, so neither is the returned sampler.
func NewSamplerWithSource(maxAttempts int, r *rand.Rand) *Sampler {
	s := NewSampler(maxAttempts)
	s.intN = r.IntN
	return s
}

func (s *Sampler) MaxAttempts() int { return s.maxAttempts }

// Sample picks two distinct entities whose ratings differ by at most maxGap.
// Draws are uniform with replacement; after MaxAttempts rejected draws the
// valid pairs are enumerated so that a pair is returned whenever one exists.
func (s *Sampler) Sample(pool []Entity, maxGap float64) (RoundPair, error) {
	if len(pool) < 2 {
		return RoundPair{}, ErrInsufficientPool
	}
	gap := decimal.NewFromFloat(maxGap)

	for range s.maxAttempts {
		a := pool[s.intN(len(pool))]
		b := pool[s.intN(len(pool))]
		if accept(a, b, gap) {
			return RoundPair{A: a, B: b}, nil
		}
	}

	return s.exhaustive(pool, gap)
}

func (s *Sampler) exhaustive(pool []Entity, gap decimal.Decimal) (RoundPair, error) {
	type pair struct{ i, j int }
	var valid []pair
	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			if accept(pool[i], pool[j], gap) {
				valid = append(valid, pair{i, j})
			}
		}
	}
	if len(valid) == 0 {
		return RoundPair{}, ErrInsufficientPool
	}

	p := valid[s.intN(len(valid))]
	if s.intN(2) == 0 {
		return RoundPair{A: pool[p.i], B: pool[p.j]}, nil
	}
	return RoundPair{A: pool[p.j], B: pool[p.i]}, nil
}

func accept(a, b Entity, gap decimal.Decimal) bool {
	if a.Name == b.Name {
		return false
	}
	diff := decimal.NewFromFloat(a.Rating).Sub(decimal.NewFromFloat(b.Rating)).Abs()
	return diff.LessThanOrEqual(gap)
}
