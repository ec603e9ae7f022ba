// Package model defines the core domain types shared across the application.
package model

// Cadence identifies the recurrence category of a schedule.
type Cadence string

// Supported cadences. Custom schedules carry an explicit calendar pattern
// instead of a fixed rule.
const (
	CadenceDaily     Cadence = "daily"
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
	CadenceCustom    Cadence = "custom"
)

// Valid reports whether c is one of the supported cadences.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceBiweekly, CadenceMonthly,
		CadenceQuarterly, CadenceYearly, CadenceCustom:
		return true
	}
	return false
}
