package growth

import "growthtrack/internal/domain"

// Direction is the sign of a trend.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// TrendRecord describes how one measurement type moved across a window.
type TrendRecord struct {
	Direction Direction `json:"direction"`
	Change    float64   `json:"change"`
	// PercentChange is nil when the oldest value is zero.
	PercentChange *float64           `json:"percentChange,omitempty"`
	Measurements  int                `json:"measurements"`
	Latest        domain.Measurement `json:"latest"`
	Oldest        domain.Measurement `json:"oldest"`
}

// AnalyzeTrends computes a TrendRecord per type from the measurements dated
// within the last windowDays days. Types with fewer than two points in the
// window are left out.
func (e *Engine) AnalyzeTrends(ms []domain.Measurement, windowDays int) map[domain.MeasurementType]TrendRecord {
	cutoff := e.WindowStart(windowDays)

	groups := make(map[domain.MeasurementType][]domain.Measurement)
	for _, m := range ms {
		if m.MeasuredAt < cutoff {
			continue
		}
		groups[m.Type] = append(groups[m.Type], m)
	}

	trends := make(map[domain.MeasurementType]TrendRecord, len(groups))
	for t, group := range groups {
		if len(group) < 2 {
			continue
		}
		trends[t] = trendOf(sortByDate(group))
	}
	return trends
}

// trendOf expects at least two measurements sorted oldest first.
func trendOf(sorted []domain.Measurement) TrendRecord {
	oldest := sorted[0]
	latest := sorted[len(sorted)-1]

	diff := latest.Value - oldest.Value

	rec := TrendRecord{
		Direction: Stable,
		// Only the reported value is rounded, so 4.0-3.2 reads as 0.8.
		Change:       round(diff, 4),
		Measurements: len(sorted),
		Latest:       latest,
		Oldest:       oldest,
	}
	switch {
	case diff > 0:
		rec.Direction = Increasing
	case diff < 0:
		rec.Direction = Decreasing
	}
	if oldest.Value != 0 {
		pct := round(diff/oldest.Value*100, 2)
		rec.PercentChange = &pct
	}
	return rec
}
