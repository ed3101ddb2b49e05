package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gritinterview/internal/model"
)

// ReportRepo handles MongoDB operations for summary reports
type ReportRepo interface {
	SaveSummary(ctx context.Context, report *model.SummaryReport) error
	GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error)
}

type reportRepo struct {
	summaries *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		summaries: db.Collection("summary_reports"),
	}
}

func (r *reportRepo) SaveSummary(ctx context.Context, report *model.SummaryReport) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.summaries.ReplaceOne(ctx, bson.M{"_id": report.SessionID}, report, opts)
	return err
}

func (r *reportRepo) GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error) {
	var report model.SummaryReport
	err := r.summaries.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
