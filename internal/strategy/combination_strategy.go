package strategy

import (
	"math/rand"

	"go-outfit-advisor/internal/repository"
)

// Combination size and count bounds.
const (
	minCombinationSize = 2
	maxCombinationSize = 4
	maxCombinations    = 6
)

// CombinationStrategy selects subsets of the working set to present as
// outfit combinations. Selection is positional, not semantic: no strategy
// here understands clothing-type compatibility, so two bottoms can land in
// one outfit. That is a known limitation of the selection logic, kept
// deliberately.
type CombinationStrategy interface {
	Select(images []repository.ClothingImage) [][]repository.ClothingImage
	GetStrategyName() string
}

// SlidingWindowStrategy is the deterministic default: a window slides over
// the uploaded list at each ordinal start position, wrapping around the end,
// with the window size cycling through 2, 3, 4.
type SlidingWindowStrategy struct{}

// NewSlidingWindowStrategy creates the deterministic selection strategy
func NewSlidingWindowStrategy() CombinationStrategy {
	return &SlidingWindowStrategy{}
}

// Select returns up to six positional windows over the working set
func (s *SlidingWindowStrategy) Select(images []repository.ClothingImage) [][]repository.ClothingImage {
	n := len(images)
	if n < minCombinationSize {
		return nil
	}

	count := n
	if count > maxCombinations {
		count = maxCombinations
	}

	combos := make([][]repository.ClothingImage, 0, count)
	for i := 0; i < count; i++ {
		size := minCombinationSize + i%(maxCombinationSize-minCombinationSize+1)
		if size > n {
			size = n
		}
		window := make([]repository.ClothingImage, 0, size)
		for j := 0; j < size; j++ {
			window = append(window, images[(i+j)%n])
		}
		combos = append(combos, window)
	}
	return combos
}

// GetStrategyName returns the strategy name
func (s *SlidingWindowStrategy) GetStrategyName() string {
	return "sliding_window"
}

// ShuffleStrategy mimics the old in-browser generator: uniform shuffle and
// truncate. It exists as a development stub only and is never the default;
// the seed keeps test runs repeatable.
type ShuffleStrategy struct {
	seed int64
}

// NewShuffleStrategy creates the seeded shuffle stub
func NewShuffleStrategy(seed int64) CombinationStrategy {
	return &ShuffleStrategy{seed: seed}
}

// Select returns up to six shuffled-and-truncated subsets
func (s *ShuffleStrategy) Select(images []repository.ClothingImage) [][]repository.ClothingImage {
	n := len(images)
	if n < minCombinationSize {
		return nil
	}

	rng := rand.New(rand.NewSource(s.seed))
	count := n
	if count > maxCombinations {
		count = maxCombinations
	}

	combos := make([][]repository.ClothingImage, 0, count)
	for i := 0; i < count; i++ {
		shuffled := make([]repository.ClothingImage, n)
		copy(shuffled, images)
		rng.Shuffle(n, func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		size := minCombinationSize + rng.Intn(maxCombinationSize-minCombinationSize+1)
		if size > n {
			size = n
		}
		combos = append(combos, shuffled[:size])
	}
	return combos
}

// GetStrategyName returns the strategy name
func (s *ShuffleStrategy) GetStrategyName() string {
	return "shuffle"
}
