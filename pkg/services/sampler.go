package services

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// Sampler draws weighted-random keys from weight maps. The random source is
// injected and seedable so exact outcomes are reproducible in tests; a
// mutex guards it because rand.Rand is not safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler from any random source.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewSeededSampler creates a sampler with a fixed seed.
func NewSeededSampler(seed int64) *Sampler {
	return NewSampler(rand.NewSource(seed))
}

// Pick draws one key with probability proportional to its weight. Entries
// are walked in sorted key order so the draw depends only on the seed, not
// on map iteration order. When the total weight is zero, or floating-point
// drift exhausts the walk, the first key in sorted order is returned as the
// deterministic fallback.
func (s *Sampler) Pick(weights map[string]float64) (string, error) {
	if len(weights) == 0 {
		return "", fmt.Errorf("cannot sample from an empty weight map")
	}

	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		if w := weights[k]; w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return keys[0], nil
	}

	s.mu.Lock()
	remaining := s.rng.Float64() * total
	s.mu.Unlock()

	for _, k := range keys {
		w := weights[k]
		if w <= 0 {
			continue
		}
		remaining -= w
		if remaining <= 0 {
			return k, nil
		}
	}

	// Floating-point drift left a sliver of remaining weight.
	return keys[0], nil
}
