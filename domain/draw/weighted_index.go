package draw

import (
	"errors"
	"fmt"
	"sort"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

var (
	errNoCandidates  = errors.New("no candidates")
	errAllZeroWeight = errors.New("all candidate weights are zero")
)

// WeightedIndex samples indexes with probability proportional to their weight.
type WeightedIndex struct {
	cumulative []uint256.Int
}

// NewWeightedIndex builds the cumulative table for weights.
func NewWeightedIndex(weights []uint256.Int) (*WeightedIndex, error) {
	if len(weights) == 0 {
		return nil, errNoCandidates
	}
	cumulative := make([]uint256.Int, len(weights))
	var running uint256.Int
	for i, w := range weights {
		next, err := entities.Add(running, w)
		if err != nil {
			return nil, fmt.Errorf("failed to sum weights: %w", err)
		}
		running = next
		cumulative[i] = running
	}
	if running.IsZero() {
		return nil, errAllZeroWeight
	}
	return &WeightedIndex{cumulative: cumulative}, nil
}

// Total is the sum of all weights.
func (w *WeightedIndex) Total() uint256.Int {
	return w.cumulative[len(w.cumulative)-1]
}

// Sample draws one index. Zero-weight indexes are never returned.
func (w *WeightedIndex) Sample(r *Rand) int {
	x := r.Below(w.Total())
	return sort.Search(len(w.cumulative), func(i int) bool {
		return w.cumulative[i].Gt(&x)
	})
}
