package draw

import (
	"errors"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// Candidate is a live stake entry with its weight for the closing window.
type Candidate struct {
	Ref    entities.SlotRef
	Entry  entities.StakeEntry
	Weight uint256.Int
}

// NewCandidate weighs entry against window.
func NewCandidate(ref entities.SlotRef, entry entities.StakeEntry, window entities.LotteryWindow) Candidate {
	return Candidate{Ref: ref, Entry: entry, Weight: Weight(entry, window)}
}

// Pick chooses a winner among candidates using a generator keyed by key.
// Empty and all-zero candidate sets are reported through the status, not as errors.
func Pick(candidates []Candidate, key [32]byte) (*Candidate, entities.DrawStatus, error) {
	weights := make([]uint256.Int, len(candidates))
	for i := range candidates {
		weights[i] = candidates[i].Weight
	}

	index, err := NewWeightedIndex(weights)
	switch {
	case errors.Is(err, errNoCandidates):
		return nil, entities.DrawStatusNoEntries, nil
	case errors.Is(err, errAllZeroWeight):
		return nil, entities.DrawStatusAllZeroWeight, nil
	case err != nil:
		return nil, "", err
	}

	rng, err := NewRand(key)
	if err != nil {
		return nil, "", err
	}
	winner := candidates[index.Sample(rng)]
	return &winner, entities.DrawStatusWinner, nil
}
