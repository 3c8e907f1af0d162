package adapthttp

import (
	"encoding/json"
	"net/http"

	"growthtrack/internal/app"
	"growthtrack/internal/domain"
)

func (s *Server) handleCreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var in domain.MeasurementInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := s.measurements.Create(r.Context(), in, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Measurements []json.RawMessage `json:"measurements"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Items are decoded one by one so a malformed item fails alone.
	items := make([]app.BatchItem, len(body.Measurements))
	for i, raw := range body.Measurements {
		items[i].Err = decodeStrict(raw, &items[i].Input)
	}
	res, err := s.measurements.BatchCreateItems(r.Context(), items, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if len(res.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, res)
}

func (s *Server) handleGetMeasurement(w http.ResponseWriter, r *http.Request) {
	m, err := s.measurements.Get(r.Context(), r.PathValue("id"), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMeasurement(w http.ResponseWriter, r *http.Request) {
	var patch domain.MeasurementPatch
	if err := parsePatchJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := s.measurements.Update(r.Context(), r.PathValue("id"), patch, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	if err := s.measurements.Delete(r.Context(), r.PathValue("id"), ownerFrom(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items, err := s.measurements.List(r.Context(), r.PathValue("subjectId"), ownerFrom(r.Context()), domain.ListFilter{
		Type:  domain.MeasurementType(q.Get("type")),
		From:  q.Get("from"),
		To:    q.Get("to"),
		Limit: limit,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
