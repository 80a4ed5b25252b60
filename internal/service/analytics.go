package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/apperr"
	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

// AnalyticsService computes the dashboard KPIs over manufacturing orders.
// Everything is derived on read; nothing is precomputed or cached.
type AnalyticsService struct {
	mos store.ManufacturingOrderStore
	log *zap.Logger
	now func() time.Time
}

func NewAnalyticsService(mos store.ManufacturingOrderStore, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		mos: mos,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// StatusOverview counts orders per lifecycle status.
func (s *AnalyticsService) StatusOverview(ctx context.Context) (*models.StatusOverview, error) {
	counts, err := s.mos.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to count orders by status")
	}
	return &models.StatusOverview{
		Planned:    counts[models.MOStatusPlanned],
		InProgress: counts[models.MOStatusInProgress],
		Done:       counts[models.MOStatusDone],
		Cancelled:  counts[models.MOStatusCancelled],
	}, nil
}

// Throughput returns completed-order counts per day over the last "days" days.
func (s *AnalyticsService) Throughput(ctx context.Context, days int) (*models.ProductionThroughput, error) {
	if days <= 0 {
		return nil, apperr.Validation("throughput period must be a positive number of days")
	}
	since := s.now().AddDate(0, 0, -days)
	points, err := s.mos.ThroughputByDay(ctx, since)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to aggregate production throughput")
	}
	if points == nil {
		points = []models.ThroughputPoint{}
	}
	return &models.ProductionThroughput{
		Period: fmt.Sprintf("Last %d days", days),
		Data:   points,
	}, nil
}

// CycleTime returns the mean creation-to-completion time across done orders.
func (s *AnalyticsService) CycleTime(ctx context.Context) (*models.CycleTimeSummary, error) {
	avg, count, err := s.mos.AverageCycleTime(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to compute average cycle time")
	}
	return &models.CycleTimeSummary{
		AverageHours:   round2(avg.Hours()),
		AverageMinutes: round2(avg.Minutes()),
		OrdersMeasured: count,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
