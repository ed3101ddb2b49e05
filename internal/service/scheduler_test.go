package service

import (
	"testing"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
)

func probedSet(dims ...model.TraitDimension) map[model.TraitDimension]bool {
	probed := make(map[model.TraitDimension]bool, len(dims))
	for _, d := range dims {
		probed[d] = true
	}
	return probed
}

func TestFirstAvailable(t *testing.T) {
	s := NewTraitScheduler(config.SelectionFirstAvailable, 0)

	tests := []struct {
		probed []model.TraitDimension
		want   model.TraitDimension
	}{
		{nil, 1},
		{[]model.TraitDimension{1, 2, 3}, 4},
		{[]model.TraitDimension{1, 3, 5}, 2},
		{[]model.TraitDimension{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, 12},
	}
	for _, tt := range tests {
		got, ok := s.Next(probedSet(tt.probed...))
		if !ok || got != tt.want {
			t.Errorf("Next(%v) = %d, %v; want %d", tt.probed, got, ok, tt.want)
		}
	}
}

func TestNextWhenAllProbed(t *testing.T) {
	for _, policy := range []string{config.SelectionFirstAvailable, config.SelectionSeededRandom} {
		s := NewTraitScheduler(policy, 7)
		if _, ok := s.Next(probedSet(model.AllTraitDimensions()...)); ok {
			t.Errorf("%s: expected no remaining trait", policy)
		}
	}
}

func TestSeededRandomIsDeterministic(t *testing.T) {
	a := NewTraitScheduler(config.SelectionSeededRandom, 42)
	b := NewTraitScheduler(config.SelectionSeededRandom, 42)

	probed := probedSet()
	for len(probed) < model.TraitCount {
		da, ok := a.Next(probed)
		if !ok {
			t.Fatalf("ran out of traits with %d probed", len(probed))
		}
		db, _ := b.Next(probed)
		if da != db {
			t.Fatalf("same seed chose %d and %d", da, db)
		}
		if probed[da] {
			t.Fatalf("chose already probed trait %d", da)
		}
		probed[da] = true
	}
}

func TestUnknownPolicyFallsBack(t *testing.T) {
	s := NewTraitScheduler("round_robin", 0)
	if s.Policy() != config.SelectionFirstAvailable {
		t.Errorf("Policy = %q", s.Policy())
	}
}
