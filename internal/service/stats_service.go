package service

import (
	"context"
	"log"

	"gritinterview/internal/cache"
	"gritinterview/internal/model"
)

// StatsService keeps cross-session dashboard data. Failures never affect a session.
type StatsService struct {
	traitStats cache.TraitStatsCache
	board      cache.OutcomeBoardCache
	traits     *model.TraitTable
}

// NewStatsService creates a new stats service
func NewStatsService(traitStats cache.TraitStatsCache, board cache.OutcomeBoardCache, traits *model.TraitTable) *StatsService {
	return &StatsService{
		traitStats: traitStats,
		board:      board,
		traits:     traits,
	}
}

// RecordScore adds one score record to the per-trait aggregate
func (s *StatsService) RecordScore(ctx context.Context, record *model.ScoreRecord) {
	if err := s.traitStats.AddScore(ctx, record.Dimension, record.Score); err != nil {
		log.Printf("[Stats] Failed to record score for trait %d: %v", record.Dimension, err)
	}
}

// RecordOutcome places a completed session on the outcome board
func (s *StatsService) RecordOutcome(ctx context.Context, sessionID string, outcome *model.CompositeOutcome) {
	if err := s.board.Record(ctx, sessionID, outcome.Value); err != nil {
		log.Printf("[Stats] Failed to record outcome for session %s: %v", sessionID, err)
	}
}

// TraitStats returns count and mean score for every trait, in trait order
func (s *StatsService) TraitStats(ctx context.Context) ([]model.TraitStat, error) {
	totals, err := s.traitStats.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]model.TraitStat, 0, model.TraitCount)
	for _, d := range model.AllTraitDimensions() {
		t := totals[d]
		stat := model.TraitStat{
			Dimension: d,
			Label:     s.traits.Label(d),
			Count:     t.Count,
		}
		if t.Count > 0 {
			stat.Mean = t.Sum / float64(t.Count)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// TopOutcomes returns the highest composite outcomes
func (s *StatsService) TopOutcomes(ctx context.Context, limit int) ([]model.OutcomeEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.board.GetTop(ctx, limit)
}
