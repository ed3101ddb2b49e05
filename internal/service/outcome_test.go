package service

import (
	"errors"
	"testing"

	"gritinterview/internal/model"
)

func records(pairs ...float64) []model.ScoreRecord {
	out := make([]model.ScoreRecord, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.ScoreRecord{
			TurnIndex: i/2 + 1,
			Dimension: model.TraitDimension(pairs[i]),
			Score:     pairs[i+1],
		})
	}
	return out
}

func TestCompositeAllMaxScores(t *testing.T) {
	_, _, weights := testTables(t)
	calc := NewOutcomeCalculator(weights, 5)

	got, err := calc.Composite(records(2, 5, 3, 5, 4, 5, 9, 5, 11, 5))
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 0 {
		t.Errorf("Value = %d, want 0", got.Value)
	}
	if len(got.Dimensions) != 5 {
		t.Errorf("Dimensions = %v", got.Dimensions)
	}
}

func TestCompositeValues(t *testing.T) {
	_, _, weights := testTables(t)
	calc := NewOutcomeCalculator(weights, 5)

	tests := []struct {
		name string
		in   []model.ScoreRecord
		want int
	}{
		{"all minimum", records(2, 1, 3, 1, 4, 1, 9, 1, 11, 1), 80},
		{"mixed", records(2, 4, 3, 3, 4, 5, 9, 2, 11, 1), 40},
		{"unweighted ignored", records(1, 1, 2, 5, 12, 1), 0},
		{"partial", records(2, 2.5, 9, 2.5), 50},
	}
	for _, tt := range tests {
		got, err := calc.Composite(tt.in)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("%s: Value = %d, want %d", tt.name, got.Value, tt.want)
		}
	}
}

func TestCompositeOrderInvariant(t *testing.T) {
	_, _, weights := testTables(t)
	calc := NewOutcomeCalculator(weights, 5)

	in := records(2, 3.3, 3, 4.1, 4, 2.7, 9, 1.9, 11, 4.4, 1, 2)
	want, err := calc.Composite(in)
	if err != nil {
		t.Fatal(err)
	}

	reversed := make([]model.ScoreRecord, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}
	got, err := calc.Composite(reversed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != want.Value || got.WeightedAverage != want.WeightedAverage {
		t.Errorf("reversed input gave %+v, want %+v", got, want)
	}
	if in[0].Dimension != 2 {
		t.Error("Composite reordered the caller's slice")
	}
}

func TestCompositeNoWeightedDimensions(t *testing.T) {
	_, _, weights := testTables(t)
	calc := NewOutcomeCalculator(weights, 5)

	if _, err := calc.Composite(records(1, 3, 5, 4)); !errors.Is(err, ErrNoWeightedDimensions) {
		t.Fatalf("err = %v, want ErrNoWeightedDimensions", err)
	}
	if _, err := calc.Composite(nil); !errors.Is(err, ErrNoWeightedDimensions) {
		t.Fatalf("empty input: err = %v, want ErrNoWeightedDimensions", err)
	}
}
