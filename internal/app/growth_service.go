package app

import (
	"context"

	"growthtrack/internal/domain"
	"growthtrack/internal/growth"
)

const (
	// ChartPointLimit caps the points fetched per charted type.
	ChartPointLimit = 200
	// TrendPointLimit caps the measurements fetched for a trend window. The
	// window is read oldest first, so past the cap the newest points drop out
	// and oldest stays exact.
	TrendPointLimit = MaxListLimit
	// MaxTrendWindowDays bounds the trend window a caller may request.
	MaxTrendWindowDays = 3660
)

// DefaultChartTypes are charted when the caller names no type.
var DefaultChartTypes = []domain.MeasurementType{domain.TypeWeight, domain.TypeHeight}

// GrowthService serves derived growth views for a subject.
type GrowthService struct {
	measurements *MeasurementService
	engine       *growth.Engine
}

// NewGrowthService creates a GrowthService reading through ms.
func NewGrowthService(ms *MeasurementService, engine *growth.Engine) *GrowthService {
	return &GrowthService{measurements: ms, engine: engine}
}

// Chart returns one series per type, newest first. from and to are optional
// inclusive dates bounding the series.
func (s *GrowthService) Chart(ctx context.Context, subjectID, ownerID string, types []domain.MeasurementType, from, to string) (map[domain.MeasurementType][]growth.ChartPoint, error) {
	if len(types) == 0 {
		types = DefaultChartTypes
	}
	for _, t := range types {
		if !t.Valid() {
			return nil, domain.NewValidationError("types", "unknown measurement type %q", t)
		}
	}

	var all []domain.Measurement
	for _, t := range dedupeTypes(types) {
		ms, err := s.measurements.List(ctx, subjectID, ownerID, domain.ListFilter{Type: t, From: from, To: to, Limit: ChartPointLimit})
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return s.engine.BuildChart(all, types), nil
}

// Trends analyses the last windowDays days of measurements.
func (s *GrowthService) Trends(ctx context.Context, subjectID, ownerID string, windowDays int) (map[domain.MeasurementType]growth.TrendRecord, error) {
	if windowDays < 1 || windowDays > MaxTrendWindowDays {
		return nil, domain.NewValidationError("days", "must be between 1 and %d", MaxTrendWindowDays)
	}
	ms, err := s.measurements.List(ctx, subjectID, ownerID, domain.ListFilter{
		From:        s.engine.WindowStart(windowDays),
		Limit:       TrendPointLimit,
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}
	return s.engine.AnalyzeTrends(ms, windowDays), nil
}

// Summary aggregates the subject's measurements. Only the newest MaxListLimit
// are read, so totals for larger histories are capped at that count.
func (s *GrowthService) Summary(ctx context.Context, subjectID, ownerID string) (growth.GrowthSummary, error) {
	ms, err := s.measurements.List(ctx, subjectID, ownerID, domain.ListFilter{Limit: MaxListLimit})
	if err != nil {
		return growth.GrowthSummary{}, err
	}
	return s.engine.BuildSummary(ms), nil
}

func dedupeTypes(types []domain.MeasurementType) []domain.MeasurementType {
	seen := make(map[domain.MeasurementType]bool, len(types))
	out := make([]domain.MeasurementType, 0, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
