package app

import (
	"math"
	"strings"
	"time"

	"growthtrack/internal/domain"
)

func validateInput(in domain.MeasurementInput, today string) error {
	if strings.TrimSpace(in.SubjectID) == "" {
		return domain.NewValidationError("subjectId", "is required")
	}
	if err := validateDay("measuredAt", in.MeasuredAt); err != nil {
		return err
	}
	if in.MeasuredAt > today {
		return domain.NewValidationError("measuredAt", "cannot be in the future")
	}
	if in.Type == "" {
		return domain.NewValidationError("type", "is required")
	}
	if !in.Type.Valid() {
		return domain.NewValidationError("type", "unknown measurement type %q", in.Type)
	}
	if in.Value == nil {
		return domain.NewValidationError("value", "is required")
	}
	if err := validateValue(*in.Value); err != nil {
		return err
	}
	if in.Unit == "" {
		return domain.NewValidationError("unit", "is required")
	}
	if err := validateUnit(in.Type, in.Unit); err != nil {
		return err
	}
	return validateAnnotations(in.Percentile, in.ZScore)
}

// validatePatch checks the set fields of p against the stored measurement type.
func validatePatch(p domain.MeasurementPatch, typ domain.MeasurementType) error {
	if p.Empty() {
		return domain.NewValidationError("", "no valid fields provided for update")
	}
	if p.Value != nil {
		if err := validateValue(*p.Value); err != nil {
			return err
		}
	}
	if p.Unit != nil {
		if err := validateUnit(typ, *p.Unit); err != nil {
			return err
		}
	}
	return validateAnnotations(p.Percentile, p.ZScore)
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NewValidationError("value", "must be a finite number")
	}
	if v <= 0 {
		return domain.NewValidationError("value", "must be > 0")
	}
	return nil
}

func validateUnit(typ domain.MeasurementType, unit string) error {
	if !domain.UnitAllowed(typ, unit) {
		return domain.NewValidationError("unit", "%q is not a valid unit for %s (want one of %s)",
			unit, typ, strings.Join(domain.UnitsFor(typ), ", "))
	}
	return nil
}

func validateAnnotations(percentile, zScore *float64) error {
	if percentile != nil {
		p := *percentile
		if math.IsNaN(p) || p < 0 || p > 100 {
			return domain.NewValidationError("percentile", "must be within [0, 100]")
		}
	}
	if zScore != nil && (math.IsNaN(*zScore) || math.IsInf(*zScore, 0)) {
		return domain.NewValidationError("zScore", "must be a finite number")
	}
	return nil
}

func validateDay(field, day string) error {
	if day == "" {
		return domain.NewValidationError(field, "is required")
	}
	if _, err := time.Parse(domain.DayLayout, day); err != nil {
		return domain.NewValidationError(field, "must be a date formatted YYYY-MM-DD")
	}
	return nil
}
