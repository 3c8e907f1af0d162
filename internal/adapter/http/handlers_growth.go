package adapthttp

import (
	"net/http"
	"strings"

	"growthtrack/internal/domain"
)

const defaultTrendDays = 30

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var types []domain.MeasurementType
	for _, t := range strings.Split(q.Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, domain.MeasurementType(t))
		}
	}
	series, err := s.growth.Chart(r.Context(), r.PathValue("subjectId"), ownerFrom(r.Context()), types, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chartData": series})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", defaultTrendDays)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	trends, err := s.growth.Trends(r.Context(), r.PathValue("subjectId"), ownerFrom(r.Context()), days)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "trends": trends})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.growth.Summary(r.Context(), r.PathValue("subjectId"), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
