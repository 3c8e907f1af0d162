package growth

import "growthtrack/internal/domain"

// DateRange spans the earliest and latest MeasuredAt of a set. Both are empty
// for an empty set.
type DateRange struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
}

// GrowthSummary is the overview of a subject's measurements.
type GrowthSummary struct {
	TotalMeasurements  int                                    `json:"totalMeasurements"`
	MeasurementTypes   []domain.MeasurementType               `json:"measurementTypes"`
	DateRange          DateRange                              `json:"dateRange"`
	AveragePercentiles map[domain.MeasurementType]float64     `json:"averagePercentiles"`
	RecentTrends       map[domain.MeasurementType]TrendRecord `json:"recentTrends"`
}

// BuildSummary aggregates ms. MeasurementTypes lists each type once in order of
// first appearance. Types whose measurements carry no percentile get no
// average.
func (e *Engine) BuildSummary(ms []domain.Measurement) GrowthSummary {
	summary := GrowthSummary{
		TotalMeasurements:  len(ms),
		MeasurementTypes:   []domain.MeasurementType{},
		AveragePercentiles: map[domain.MeasurementType]float64{},
		RecentTrends:       e.AnalyzeTrends(ms, SummaryTrendWindowDays),
	}
	if len(ms) == 0 {
		return summary
	}

	sorted := sortByDate(ms)
	summary.DateRange = DateRange{First: sorted[0].MeasuredAt, Last: sorted[len(sorted)-1].MeasuredAt}

	seen := make(map[domain.MeasurementType]bool)
	sums := make(map[domain.MeasurementType]float64)
	counts := make(map[domain.MeasurementType]int)
	for _, m := range ms {
		if !seen[m.Type] {
			seen[m.Type] = true
			summary.MeasurementTypes = append(summary.MeasurementTypes, m.Type)
		}
		if m.Percentile != nil {
			sums[m.Type] += *m.Percentile
			counts[m.Type]++
		}
	}
	for t, n := range counts {
		summary.AveragePercentiles[t] = round(sums[t]/float64(n), 1)
	}
	return summary
}
