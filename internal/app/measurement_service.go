// Package app holds the application services and business logic.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"growthtrack/internal/domain"
)

const (
	// DefaultListLimit caps a listing when the caller gives no limit.
	DefaultListLimit = 100
	// MaxListLimit is the largest listing a caller may request.
	MaxListLimit = 1000
	// MaxBatchSize bounds the number of inputs accepted by BatchCreate.
	MaxBatchSize = 25
)

// MeasurementService encapsulates measurement CRUD use cases. Every operation
// is scoped to the requesting owner.
type MeasurementService struct {
	store domain.MeasurementStore
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// MeasurementOption customises a MeasurementService.
type MeasurementOption func(*MeasurementService)

// WithClock replaces the wall clock used for timestamps and date checks.
func WithClock(now func() time.Time) MeasurementOption {
	return func(s *MeasurementService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for new measurements.
func WithIDGenerator(newID func() string) MeasurementOption {
	return func(s *MeasurementService) { s.newID = newID }
}

// NewMeasurementService creates a MeasurementService backed by the given store.
func NewMeasurementService(store domain.MeasurementStore, log *zap.Logger, opts ...MeasurementOption) *MeasurementService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MeasurementService{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and stores a new measurement owned by ownerID.
func (s *MeasurementService) Create(ctx context.Context, in domain.MeasurementInput, ownerID string) (*domain.Measurement, error) {
	now := s.now().UTC()
	if err := validateInput(in, now.Format(domain.DayLayout)); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = domain.DefaultSource
	}
	m := &domain.Measurement{
		ID:          s.newID(),
		SubjectID:   in.SubjectID,
		OwnerID:     ownerID,
		MeasuredAt:  in.MeasuredAt,
		Type:        in.Type,
		Value:       *in.Value,
		Unit:        in.Unit,
		Percentile:  copyFloat(in.Percentile),
		ZScore:      copyFloat(in.ZScore),
		Source:      source,
		DeviceInfo:  copyDeviceInfo(in.DeviceInfo),
		IsEstimated: in.IsEstimated,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyDeviceInfo(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Get returns the measurement with the given id if requesterID owns it.
func (s *MeasurementService) Get(ctx context.Context, id, requesterID string) (*domain.Measurement, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorize(m, requesterID); err != nil {
		return nil, err
	}
	return m, nil
}

// Update applies the set fields of patch to a measurement owned by requesterID.
func (s *MeasurementService) Update(ctx context.Context, id string, patch domain.MeasurementPatch, requesterID string) (*domain.Measurement, error) {
	current, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch, current.Type); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, patch, s.now().UTC())
}

// Delete removes a measurement owned by requesterID.
func (s *MeasurementService) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.Get(ctx, id, requesterID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns a subject's measurements, newest measuredAt first unless
// f.OldestFirst is set.
func (s *MeasurementService) List(ctx context.Context, subjectID, requesterID string, f domain.ListFilter) ([]domain.Measurement, error) {
	q, err := subjectQuery(subjectID, f)
	if err != nil {
		return nil, err
	}
	ms, err := s.store.QueryBySubject(ctx, subjectID, q)
	if err != nil {
		return nil, err
	}
	return ownedBy(ms, requesterID), nil
}

func subjectQuery(subjectID string, f domain.ListFilter) (domain.SubjectQuery, error) {
	if strings.TrimSpace(subjectID) == "" {
		return domain.SubjectQuery{}, domain.NewValidationError("subjectId", "is required")
	}
	if f.Type != "" && !f.Type.Valid() {
		return domain.SubjectQuery{}, domain.NewValidationError("type", "unknown measurement type %q", f.Type)
	}
	if f.From != "" {
		if err := validateDay("from", f.From); err != nil {
			return domain.SubjectQuery{}, err
		}
	}
	if f.To != "" {
		if err := validateDay("to", f.To); err != nil {
			return domain.SubjectQuery{}, err
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return domain.SubjectQuery{}, domain.NewValidationError("from", "must not be after to")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return domain.SubjectQuery{Type: f.Type, From: f.From, To: f.To, Limit: limit, NewestFirst: !f.OldestFirst}, nil
}

// BatchFailure records why one batch input was skipped.
type BatchFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult reports the outcome of BatchCreate.
type BatchResult struct {
	CreatedCount int                  `json:"createdCount"`
	TotalCount   int                  `json:"totalCount"`
	Created      []domain.Measurement `json:"created"`
	Failed       []BatchFailure       `json:"failed"`
}

// BatchItem is one entry of a batch. Err carries a failure found before the
// input could be built, such as malformed JSON; such items are recorded as
// failed without being validated.
type BatchItem struct {
	Input domain.MeasurementInput
	Err   error
}

// BatchCreate creates each input in order. A failing input is logged and
// skipped; it never aborts the rest of the batch.
func (s *MeasurementService) BatchCreate(ctx context.Context, inputs []domain.MeasurementInput, ownerID string) (*BatchResult, error) {
	items := make([]BatchItem, len(inputs))
	for i, in := range inputs {
		items[i] = BatchItem{Input: in}
	}
	return s.BatchCreateItems(ctx, items, ownerID)
}

// BatchCreateItems is BatchCreate for callers that decode items one by one.
func (s *MeasurementService) BatchCreateItems(ctx context.Context, items []BatchItem, ownerID string) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("measurements", "no measurements provided")
	}
	if len(items) > MaxBatchSize {
		return nil, domain.NewValidationError("measurements", "maximum %d measurements per batch", MaxBatchSize)
	}

	res := &BatchResult{
		TotalCount: len(items),
		Created:    make([]domain.Measurement, 0, len(items)),
		Failed:     []BatchFailure{},
	}
	for i, item := range items {
		err := item.Err
		var m *domain.Measurement
		if err == nil {
			m, err = s.Create(ctx, item.Input, ownerID)
		}
		if err != nil {
			s.log.Warn("batch create: skipping measurement",
				zap.Int("index", i),
				zap.String("subjectId", item.Input.SubjectID),
				zap.Error(err))
			res.Failed = append(res.Failed, BatchFailure{Index: i, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, *m)
	}
	res.CreatedCount = len(res.Created)
	if len(res.Failed) > 0 {
		s.log.Info("batch create finished with failures",
			zap.Int("created", res.CreatedCount),
			zap.Int("total", res.TotalCount))
	}
	return res, nil
}

