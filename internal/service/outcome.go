package service

import (
	"math"
	"sort"

	"gritinterview/internal/model"
)

// OutcomeCalculator derives the composite outcome from score records
type OutcomeCalculator struct {
	weights  *model.WeightTable
	maxScore float64
}

// NewOutcomeCalculator creates a calculator over an immutable weighting table
func NewOutcomeCalculator(weights *model.WeightTable, maxScore float64) *OutcomeCalculator {
	return &OutcomeCalculator{weights: weights, maxScore: maxScore}
}

// Composite computes round((1 - weightedAverage/maxScore) * 100) over the weighted dimensions present.
// The result depends only on the multiset of (dimension, score) pairs.
func (c *OutcomeCalculator) Composite(records []model.ScoreRecord) (*model.CompositeOutcome, error) {
	// summing in a canonical order keeps float rounding independent of input order
	sorted := make([]model.ScoreRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Dimension != sorted[j].Dimension {
			return sorted[i].Dimension < sorted[j].Dimension
		}
		return sorted[i].Score < sorted[j].Score
	})

	var sum, weightSum float64
	present := make(map[model.TraitDimension]bool)

	for _, r := range sorted {
		w, ok := c.weights.Weight(r.Dimension)
		if !ok {
			continue
		}
		sum += r.Score * w
		weightSum += w
		present[r.Dimension] = true
	}
	if weightSum == 0 {
		return nil, ErrNoWeightedDimensions
	}

	avg := sum / weightSum
	value := int(math.Round((1 - avg/c.maxScore) * 100))
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	dims := make([]model.TraitDimension, 0, len(present))
	for _, d := range c.weights.Dimensions() {
		if present[d] {
			dims = append(dims, d)
		}
	}

	return &model.CompositeOutcome{
		Value:           value,
		WeightedAverage: avg,
		MaxScore:        c.maxScore,
		Dimensions:      dims,
	}, nil
}
