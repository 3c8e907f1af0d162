// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// DayLayout is the calendar-date format used for MeasuredAt and date filters.
const DayLayout = "2006-01-02"

// DefaultSource is the provenance tag applied when the caller supplies none.
const DefaultSource = "manual"

// MeasurementType is the category of a growth observation.
type MeasurementType string

const (
	TypeWeight            MeasurementType = "weight"
	TypeHeight            MeasurementType = "height"
	TypeHeadCircumference MeasurementType = "head_circumference"
	TypeBMI               MeasurementType = "bmi"
)

// MeasurementTypes lists every accepted type in display order.
var MeasurementTypes = []MeasurementType{TypeWeight, TypeHeight, TypeHeadCircumference, TypeBMI}

// Valid reports whether t is one of the known measurement types.
func (t MeasurementType) Valid() bool {
	switch t {
	case TypeWeight, TypeHeight, TypeHeadCircumference, TypeBMI:
		return true
	}
	return false
}

// Measurement is a single growth observation for a subject.
type Measurement struct {
	ID          string            `json:"id"`
	SubjectID   string            `json:"subjectId"`
	OwnerID     string            `json:"ownerId"`
	MeasuredAt  string            `json:"measuredAt"`
	Type        MeasurementType   `json:"type"`
	Value       float64           `json:"value"`
	Unit        string            `json:"unit"`
	Percentile  *float64          `json:"percentile"`
	ZScore      *float64          `json:"zScore"`
	Source      string            `json:"source"`
	DeviceInfo  map[string]string `json:"deviceInfo,omitempty"`
	IsEstimated bool              `json:"isEstimated"`
	Notes       string            `json:"notes"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// MeasurementInput carries the caller-supplied fields of a new measurement.
// Value is a pointer so that a missing value can be told apart from zero.
type MeasurementInput struct {
	SubjectID   string            `json:"subjectId"`
	MeasuredAt  string            `json:"measuredAt"`
	Type        MeasurementType   `json:"type"`
	Value       *float64          `json:"value"`
	Unit        string            `json:"unit"`
	Percentile  *float64          `json:"percentile"`
	ZScore      *float64          `json:"zScore"`
	Source      string            `json:"source"`
	DeviceInfo  map[string]string `json:"deviceInfo"`
	IsEstimated bool              `json:"isEstimated"`
	Notes       string            `json:"notes"`
}

// MeasurementPatch is a partial update. Only non-nil fields are applied, and
// only these fields can ever change after creation.
type MeasurementPatch struct {
	Value       *float64          `json:"value"`
	Unit        *string           `json:"unit"`
	Percentile  *float64          `json:"percentile"`
	ZScore      *float64          `json:"zScore"`
	Notes       *string           `json:"notes"`
	IsEstimated *bool             `json:"isEstimated"`
	DeviceInfo  map[string]string `json:"deviceInfo"`
	Source      *string           `json:"source"`
}

// Empty reports whether the patch sets no field at all.
func (p MeasurementPatch) Empty() bool {
	return p.Value == nil && p.Unit == nil && p.Percentile == nil && p.ZScore == nil &&
		p.Notes == nil && p.IsEstimated == nil && p.DeviceInfo == nil && p.Source == nil
}

// Apply copies the set fields of p onto m and stamps UpdatedAt.
func (p MeasurementPatch) Apply(m *Measurement, updatedAt time.Time) {
	if p.Value != nil {
		m.Value = *p.Value
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.Percentile != nil {
		v := *p.Percentile
		m.Percentile = &v
	}
	if p.ZScore != nil {
		v := *p.ZScore
		m.ZScore = &v
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.IsEstimated != nil {
		m.IsEstimated = *p.IsEstimated
	}
	if p.DeviceInfo != nil {
		m.DeviceInfo = copyDeviceInfo(p.DeviceInfo)
	}
	if p.Source != nil {
		m.Source = *p.Source
	}
	m.UpdatedAt = updatedAt
}

func copyDeviceInfo(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ListFilter narrows a subject listing.
type ListFilter struct {
	Type  MeasurementType
	From  string
	To    string
	Limit int
	// OldestFirst flips the default newest-first order, so a truncated
	// listing keeps the start of the range.
	OldestFirst bool
}

// SubjectQuery is what the repository asks of the store for a subject listing.
// From and To are inclusive calendar dates; empty means unbounded.
type SubjectQuery struct {
	Type        MeasurementType
	From        string
	To          string
	Limit       int
	NewestFirst bool
}

// MeasurementStore is the port for measurement persistence.
type MeasurementStore interface {
	// Get returns nil, nil when no record exists for id.
	Get(ctx context.Context, id string) (*Measurement, error)
	// Put inserts or replaces m, stamping CreatedAt/UpdatedAt when zero.
	Put(ctx context.Context, m *Measurement) (*Measurement, error)
	// Update applies patch to the record and returns ErrNotFound if it is absent.
	Update(ctx context.Context, id string, patch MeasurementPatch, updatedAt time.Time) (*Measurement, error)
	Delete(ctx context.Context, id string) error
	QueryBySubject(ctx context.Context, subjectID string, q SubjectQuery) ([]Measurement, error)
}
