package domain

// allowedUnits maps each measurement type to the units it may be recorded in.
var allowedUnits = map[MeasurementType][]string{
	TypeWeight:            {"kg", "g", "lb", "oz"},
	TypeHeight:            {"cm", "mm", "in"},
	TypeHeadCircumference: {"cm", "mm", "in"},
	TypeBMI:               {"kg/m2"},
}

// UnitAllowed reports whether unit may be paired with a value of type t.
// Unknown types accept no unit.
func UnitAllowed(t MeasurementType, unit string) bool {
	for _, u := range allowedUnits[t] {
		if u == unit {
			return true
		}
	}
	return false
}

// UnitsFor returns the units accepted for t.
func UnitsFor(t MeasurementType) []string {
	out := make([]string, len(allowedUnits[t]))
	copy(out, allowedUnits[t])
	return out
}
