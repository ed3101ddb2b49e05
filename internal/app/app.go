// Package app wires storage, the oracle and the services into one dependency graph.
package app

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"gritinterview/internal/cache"
	"gritinterview/internal/config"
	"gritinterview/internal/oracle"
	"gritinterview/internal/repository"
	"gritinterview/internal/service"
	"gritinterview/internal/transport/rest"
	"gritinterview/internal/transport/ws"
)

// App holds the assembled services
type App struct {
	Auth      *service.AuthService
	Interview *service.InterviewService
	Stats     *service.StatsService
	Hub       *ws.Hub

	corsOrigins string
}

// New builds the service graph over the given clients and oracle
func New(
	db *mongo.Database,
	rdb *redis.Client,
	orc oracle.Oracle,
	serverCfg *config.ServerConfig,
	aiCfg *config.AIConfig,
	interviewCfg *config.InterviewConfig,
) (*App, error) {
	traits, err := interviewCfg.TraitTable()
	if err != nil {
		return nil, err
	}
	weights, err := interviewCfg.WeightTable()
	if err != nil {
		return nil, err
	}

	// Repositories
	sessionRepo := repository.NewSessionRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// Caches
	sessionCache := cache.NewSessionCache(rdb)
	draftCache := cache.NewDraftCache(rdb)
	sessionLock := cache.NewSessionLock(rdb)
	outcomeBoard := cache.NewOutcomeBoardCache(rdb)
	traitStats := cache.NewTraitStatsCache(rdb)

	// Core
	poller := service.NewJobPoller(orc, aiCfg.PollInterval, aiCfg.JobTimeout)
	scheduler := service.NewTraitScheduler(interviewCfg.Selection, interviewCfg.Seed)
	evaluator := service.NewEvaluatorService(poller, traits, interviewCfg.Scale)
	questions := service.NewQuestionService(poller, traits)
	outcome := service.NewOutcomeCalculator(weights, interviewCfg.Scale.Max)
	summary := service.NewSummaryService(poller, outcome, traits, interviewCfg.MaxTurns, reportRepo, sessionRepo, sessionCache)
	stats := service.NewStatsService(traitStats, outcomeBoard, traits)
	interview := service.NewInterviewService(
		interviewCfg, traits,
		sessionCache, draftCache, sessionLock, sessionRepo,
		evaluator, questions, scheduler, outcome, summary,
		aiCfg.JobTimeout,
	)
	interview.SetStatsService(stats)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	hub := ws.NewHub()
	interview.SetBroadcaster(hub)

	return &App{
		Auth:        service.NewAuthService(serverCfg),
		Interview:   interview,
		Stats:       stats,
		Hub:         hub,
		corsOrigins: serverCfg.CORSOrigins,
	}, nil
}

// Router returns the HTTP handler for the API
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:      a.Auth,
		InterviewService: a.Interview,
		StatsService:     a.Stats,
		WSHub:            a.Hub,
		CORSOrigins:      a.corsOrigins,
	})
}

// Close stops background goroutines
func (a *App) Close() {
	a.Hub.Close()
}
