package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growthtrack/internal/adapter/memory"
	"growthtrack/internal/app"
	"growthtrack/internal/domain"
	"growthtrack/internal/growth"
)

func newGrowthService(store domain.MeasurementStore) (*app.GrowthService, *app.MeasurementService) {
	ms := newService(store)
	engine := growth.NewEngineWithClock(func() time.Time { return testNow })
	return app.NewGrowthService(ms, engine), ms
}

func seed(t *testing.T, ms *app.MeasurementService, owner string, typ domain.MeasurementType, day string, v float64, unit string, percentile *float64) {
	t.Helper()
	_, err := ms.Create(context.Background(), domain.MeasurementInput{
		SubjectID: "baby-1", MeasuredAt: day, Type: typ, Value: fptr(v), Unit: unit, Percentile: percentile,
	}, owner)
	require.NoError(t, err)
}

func TestChart_DefaultsToWeightAndHeight(t *testing.T) {
	gs, ms := newGrowthService(memory.New())
	seed(t, ms, "user-1", domain.TypeWeight, "2024-01-01", 3.2, "kg", nil)
	seed(t, ms, "user-1", domain.TypeWeight, "2024-02-01", 4.0, "kg", fptr(45))
	seed(t, ms, "user-1", domain.TypeHeight, "2024-01-01", 50, "cm", nil)
	seed(t, ms, "user-1", domain.TypeHeadCircumference, "2024-01-01", 34, "cm", nil)

	chart, err := gs.Chart(context.Background(), "baby-1", "user-1", nil, "", "")

	require.NoError(t, err)
	require.Len(t, chart, 2)
	require.Len(t, chart[domain.TypeWeight], 2)
	assert.Equal(t, "2024-02-01", chart[domain.TypeWeight][0].Date, "newest first")
	assert.Equal(t, 45.0, *chart[domain.TypeWeight][0].Percentile)
	assert.Len(t, chart[domain.TypeHeight], 1)
}

func TestChart_PerTypeQueries(t *testing.T) {
	var queried []domain.MeasurementType
	gs, _ := newGrowthService(&mockStore{
		queryFn: func(_ context.Context, _ string, q domain.SubjectQuery) ([]domain.Measurement, error) {
			queried = append(queried, q.Type)
			assert.Equal(t, app.ChartPointLimit, q.Limit)
			return nil, nil
		},
	})

	chart, err := gs.Chart(context.Background(), "baby-1", "user-1",
		[]domain.MeasurementType{domain.TypeBMI, domain.TypeBMI, domain.TypeHeadCircumference}, "", "")

	require.NoError(t, err)
	assert.Equal(t, []domain.MeasurementType{domain.TypeBMI, domain.TypeHeadCircumference}, queried)
	assert.Len(t, chart, 2)
}

func TestChart_UnknownType(t *testing.T) {
	gs, _ := newGrowthService(&mockStore{})

	_, err := gs.Chart(context.Background(), "baby-1", "user-1", []domain.MeasurementType{"length"}, "", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChart_DateRange(t *testing.T) {
	gs, ms := newGrowthService(memory.New())
	seed(t, ms, "user-1", domain.TypeWeight, "2023-12-01", 2.9, "kg", nil)
	seed(t, ms, "user-1", domain.TypeWeight, "2024-01-01", 3.2, "kg", nil)
	seed(t, ms, "user-1", domain.TypeWeight, "2024-01-20", 3.6, "kg", nil)
	seed(t, ms, "user-1", domain.TypeWeight, "2024-02-01", 4.0, "kg", nil)

	chart, err := gs.Chart(context.Background(), "baby-1", "user-1",
		[]domain.MeasurementType{domain.TypeWeight}, "2024-01-01", "2024-01-31")

	require.NoError(t, err)
	require.Len(t, chart[domain.TypeWeight], 2)
	assert.Equal(t, "2024-01-20", chart[domain.TypeWeight][0].Date)
	assert.Equal(t, "2024-01-01", chart[domain.TypeWeight][1].Date)

	_, err = gs.Chart(context.Background(), "baby-1", "user-1", nil, "2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = gs.Chart(context.Background(), "baby-1", "user-1", nil, "01/02/2024", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTrends_Scenario(t *testing.T) {
	gs, ms := newGrowthService(memory.New())
	seed(t, ms, "user-1", domain.TypeWeight, "2024-01-01", 3.2, "kg", nil)
	seed(t, ms, "user-1", domain.TypeWeight, "2024-02-01", 4.0, "kg", nil)
	seed(t, ms, "user-2", domain.TypeWeight, "2024-02-10", 9.9, "kg", nil)

	trends, err := gs.Trends(context.Background(), "baby-1", "user-1", 60)

	require.NoError(t, err)
	require.Contains(t, trends, domain.TypeWeight)
	rec := trends[domain.TypeWeight]
	assert.Equal(t, growth.Increasing, rec.Direction)
	assert.Equal(t, 0.8, rec.Change)
	require.NotNil(t, rec.PercentChange)
	assert.InDelta(t, 25.0, *rec.PercentChange, 1e-9)
	assert.Equal(t, 2, rec.Measurements, "another owner's record is never counted")
}

func TestTrends_QueriesWindow(t *testing.T) {
	gs, _ := newGrowthService(&mockStore{
		queryFn: func(_ context.Context, _ string, q domain.SubjectQuery) ([]domain.Measurement, error) {
			assert.Equal(t, "2024-01-16", q.From)
			assert.Equal(t, "", q.To)
			assert.Equal(t, app.TrendPointLimit, q.Limit)
			assert.False(t, q.NewestFirst, "window is read oldest first so truncation keeps the oldest point")
			return nil, nil
		},
	})

	trends, err := gs.Trends(context.Background(), "baby-1", "user-1", 30)

	require.NoError(t, err)
	assert.Empty(t, trends)
}

func TestTrends_WindowBounds(t *testing.T) {
	gs, _ := newGrowthService(&mockStore{})
	for _, days := range []int{0, -5, app.MaxTrendWindowDays + 1} {
		_, err := gs.Trends(context.Background(), "baby-1", "user-1", days)
		assert.ErrorIs(t, err, domain.ErrValidation, "days=%d", days)
	}
}

func TestSummary(t *testing.T) {
	gs, ms := newGrowthService(memory.New())
	seed(t, ms, "user-1", domain.TypeWeight, "2023-11-20", 3.1, "kg", fptr(40))
	seed(t, ms, "user-1", domain.TypeWeight, "2024-02-01", 4.0, "kg", fptr(45))
	seed(t, ms, "user-1", domain.TypeWeight, "2024-02-10", 4.3, "kg", nil)
	seed(t, ms, "user-1", domain.TypeHeight, "2024-02-10", 55, "cm", nil)

	s, err := gs.Summary(context.Background(), "baby-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 4, s.TotalMeasurements)
	assert.ElementsMatch(t, []domain.MeasurementType{domain.TypeWeight, domain.TypeHeight}, s.MeasurementTypes)
	assert.Equal(t, growth.DateRange{First: "2023-11-20", Last: "2024-02-10"}, s.DateRange)
	assert.Equal(t, map[domain.MeasurementType]float64{domain.TypeWeight: 42.5}, s.AveragePercentiles)
	require.Contains(t, s.RecentTrends, domain.TypeWeight)
	assert.Equal(t, 2, s.RecentTrends[domain.TypeWeight].Measurements)
}

func TestSummary_Empty(t *testing.T) {
	gs, _ := newGrowthService(memory.New())

	s, err := gs.Summary(context.Background(), "baby-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalMeasurements)
	assert.Empty(t, s.AveragePercentiles)
}

func TestSummary_StoreError(t *testing.T) {
	storeErr := &domain.StorageError{Op: "query", Err: errors.New("timeout")}
	gs, _ := newGrowthService(&mockStore{
		queryFn: func(context.Context, string, domain.SubjectQuery) ([]domain.Measurement, error) {
			return nil, storeErr
		},
	})

	_, err := gs.Summary(context.Background(), "baby-1", "user-1")

	assert.Same(t, storeErr, err)
}
