// Package growth derives chart series, trends and summaries from a subject's
// measurements. Every function is a pure computation over the slice it is
// given; the only outside input is the engine's clock.
package growth

import (
	"math"
	"sort"
	"time"

	"growthtrack/internal/domain"
)

// SummaryTrendWindowDays is the trend window embedded in a GrowthSummary.
const SummaryTrendWindowDays = 30

// Engine computes derived growth views.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine that reads the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock returns an Engine whose notion of today comes from now.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Today returns the current UTC calendar date in domain.DayLayout.
func (e *Engine) Today() string {
	return e.now().UTC().Format(domain.DayLayout)
}

// WindowStart returns the first calendar date included in a trailing window of
// windowDays days.
func (e *Engine) WindowStart(windowDays int) string {
	return e.now().UTC().AddDate(0, 0, -windowDays).Format(domain.DayLayout)
}

// sortByDate returns a copy of ms ordered oldest first. Equal dates keep their
// input order.
func sortByDate(ms []domain.Measurement) []domain.Measurement {
	out := make([]domain.Measurement, len(ms))
	copy(out, ms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeasuredAt < out[j].MeasuredAt
	})
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
