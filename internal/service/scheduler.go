package service

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
)

// TraitScheduler picks the next trait dimension to probe.
// It holds no mutable state; the choice is a pure function of the probed set.
type TraitScheduler struct {
	policy string
	seed   uint64
}

// NewTraitScheduler creates a scheduler for a selection policy
func NewTraitScheduler(policy string, seed uint64) *TraitScheduler {
	if policy != config.SelectionSeededRandom {
		policy = config.SelectionFirstAvailable
	}
	return &TraitScheduler{policy: policy, seed: seed}
}

// Policy returns the active selection policy
func (s *TraitScheduler) Policy() string {
	return s.policy
}

// Remaining returns the unprobed dimensions in ascending order
func (s *TraitScheduler) Remaining(probed map[model.TraitDimension]bool) []model.TraitDimension {
	remaining := make([]model.TraitDimension, 0, model.TraitCount)
	for _, d := range model.AllTraitDimensions() {
		if !probed[d] {
			remaining = append(remaining, d)
		}
	}
	return remaining
}

// Next returns the dimension to probe, or false when every dimension is covered
func (s *TraitScheduler) Next(probed map[model.TraitDimension]bool) (model.TraitDimension, bool) {
	remaining := s.Remaining(probed)
	if len(remaining) == 0 {
		return 0, false
	}
	if s.policy == config.SelectionFirstAvailable {
		return remaining[0], true
	}
	return remaining[s.pick(probed, len(remaining))], true
}

// pick hashes the seed and the probed set into an index below n
func (s *TraitScheduler) pick(probed map[model.TraitDimension]bool, n int) int {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.seed)
	d.Write(buf[:])
	// iterate the domain, not the map, so the digest is order-stable
	for _, dim := range model.AllTraitDimensions() {
		if probed[dim] {
			d.Write([]byte{byte(dim)})
		}
	}
	return int(d.Sum64() % uint64(n))
}
