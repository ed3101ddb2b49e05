package repository

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"gritinterview/internal/model"
)

func ns(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func TestSessionRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("archive upserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "s1"}}}},
		))

		repo := NewSessionRepo(mt.DB)
		err := repo.Archive(context.Background(), &model.Session{ID: "s1", Phase: model.PhaseComplete})
		if err != nil {
			t.Fatalf("Archive: %v", err)
		}
	})

	mt.Run("get by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "sessions"), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "phase", Value: "complete"},
			{Key: "scores", Value: bson.A{
				bson.D{{Key: "turnIndex", Value: 1}, {Key: "dimension", Value: 3}, {Key: "score", Value: 4.5}},
			}},
			{Key: "outcome", Value: bson.D{{Key: "value", Value: 25}}},
		}))

		repo := NewSessionRepo(mt.DB)
		s, err := repo.GetByID(context.Background(), "s1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if s == nil || s.Phase != model.PhaseComplete {
			t.Fatalf("GetByID = %+v", s)
		}
		if len(s.Scores) != 1 || s.Scores[0].Dimension != 3 || s.Scores[0].Score != 4.5 {
			t.Errorf("Scores = %+v", s.Scores)
		}
		if s.Outcome == nil || s.Outcome.Value != 25 {
			t.Errorf("Outcome = %+v", s.Outcome)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "sessions"), mtest.FirstBatch))

		repo := NewSessionRepo(mt.DB)
		s, err := repo.GetByID(context.Background(), "nope")
		if err != nil || s != nil {
			t.Fatalf("GetByID(missing) = %+v, %v", s, err)
		}
	})

	mt.Run("list recent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "sessions"), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b"}, {Key: "phase", Value: "complete"}},
			bson.D{{Key: "_id", Value: "a"}, {Key: "phase", Value: "awaiting_answer"}},
		))

		repo := NewSessionRepo(mt.DB)
		sessions, err := repo.ListRecent(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRecent: %v", err)
		}
		if len(sessions) != 2 || sessions[0].ID != "b" || sessions[1].Phase != model.PhaseAwaitingAnswer {
			t.Errorf("ListRecent = %+v", sessions)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Message: "interrupted at shutdown",
		}))

		repo := NewSessionRepo(mt.DB)
		if _, err := repo.GetByID(context.Background(), "s1"); err == nil || err == mongo.ErrNoDocuments {
			t.Fatalf("err = %v, want command error", err)
		}
	})
}

func TestReportRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		repo := NewReportRepo(mt.DB)
		err := repo.SaveSummary(context.Background(), &model.SummaryReport{SessionID: "s1", Narrative: "steady"})
		if err != nil {
			t.Fatalf("SaveSummary: %v", err)
		}
	})

	mt.Run("get", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "summary_reports"), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "narrative", Value: "steady"},
			{Key: "outcome", Value: bson.D{{Key: "value", Value: 40}, {Key: "maxScore", Value: 5.0}}},
		}))

		repo := NewReportRepo(mt.DB)
		report, err := repo.GetSummary(context.Background(), "s1")
		if err != nil {
			t.Fatalf("GetSummary: %v", err)
		}
		if report == nil || report.Narrative != "steady" || report.Outcome.Value != 40 {
			t.Errorf("GetSummary = %+v", report)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "summary_reports"), mtest.FirstBatch))

		repo := NewReportRepo(mt.DB)
		report, err := repo.GetSummary(context.Background(), "nope")
		if err != nil || report != nil {
			t.Fatalf("GetSummary(missing) = %+v, %v", report, err)
		}
	})
}
