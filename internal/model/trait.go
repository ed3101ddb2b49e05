package model

import (
	"fmt"
	"sort"
)

// TraitDimension identifies one of the twelve GRIT constructs (1..12)
type TraitDimension int

// TraitCount is the size of the closed trait domain
const TraitCount = 12

// Valid reports whether d belongs to the closed trait domain
func (d TraitDimension) Valid() bool {
	return d >= 1 && d <= TraitCount
}

// AllTraitDimensions returns the full domain in ascending order
func AllTraitDimensions() []TraitDimension {
	dims := make([]TraitDimension, 0, TraitCount)
	for d := TraitDimension(1); d <= TraitCount; d++ {
		dims = append(dims, d)
	}
	return dims
}

// TraitTable maps every dimension to its display label. It is immutable after construction.
type TraitTable struct {
	labels map[TraitDimension]string
}

// NewTraitTable copies labels into a table. Every dimension of the domain must have a non-empty label.
func NewTraitTable(labels map[TraitDimension]string) (*TraitTable, error) {
	t := &TraitTable{labels: make(map[TraitDimension]string, TraitCount)}
	for _, d := range AllTraitDimensions() {
		label, ok := labels[d]
		if !ok || label == "" {
			return nil, fmt.Errorf("missing label for trait %d", d)
		}
		t.labels[d] = label
	}
	for d := range labels {
		if !d.Valid() {
			return nil, fmt.Errorf("unknown trait %d", d)
		}
	}
	return t, nil
}

// Label returns the display label for d, or a placeholder for unknown dimensions
func (t *TraitTable) Label(d TraitDimension) string {
	if label, ok := t.labels[d]; ok {
		return label
	}
	return fmt.Sprintf("Trait %d", d)
}

// WeightTable maps a subset of dimensions to positive weights. Immutable after construction.
type WeightTable struct {
	weights map[TraitDimension]float64
}

// NewWeightTable copies weights into a table
func NewWeightTable(weights map[TraitDimension]float64) (*WeightTable, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weight table is empty")
	}
	t := &WeightTable{weights: make(map[TraitDimension]float64, len(weights))}
	for d, w := range weights {
		if !d.Valid() {
			return nil, fmt.Errorf("unknown trait %d in weight table", d)
		}
		if w <= 0 {
			return nil, fmt.Errorf("weight for trait %d must be positive", d)
		}
		t.weights[d] = w
	}
	return t, nil
}

// Weight returns the weight for d and whether d is weighted
func (t *WeightTable) Weight(d TraitDimension) (float64, bool) {
	w, ok := t.weights[d]
	return w, ok
}

// Dimensions returns the weighted dimensions in ascending order
func (t *WeightTable) Dimensions() []TraitDimension {
	dims := make([]TraitDimension, 0, len(t.weights))
	for d := range t.weights {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}
