package growth

import "growthtrack/internal/domain"

// ChartPoint is one plotted measurement.
type ChartPoint struct {
	Date       string   `json:"date"`
	Value      float64  `json:"value"`
	Percentile *float64 `json:"percentile"`
	ZScore     *float64 `json:"zScore"`
	Notes      string   `json:"notes"`
}

// BuildChart projects ms into one series per requested type. Series keep the
// order of ms; callers that want oldest-first must sort themselves. Every
// requested type gets an entry, empty when nothing matched.
func (e *Engine) BuildChart(ms []domain.Measurement, types []domain.MeasurementType) map[domain.MeasurementType][]ChartPoint {
	chart := make(map[domain.MeasurementType][]ChartPoint, len(types))
	for _, t := range types {
		chart[t] = []ChartPoint{}
	}
	for _, m := range ms {
		series, ok := chart[m.Type]
		if !ok {
			continue
		}
		chart[m.Type] = append(series, ChartPoint{
			Date:       m.MeasuredAt,
			Value:      m.Value,
			Percentile: m.Percentile,
			ZScore:     m.ZScore,
			Notes:      m.Notes,
		})
	}
	return chart
}
