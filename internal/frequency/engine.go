// Package frequency implements pure date and amount arithmetic for
// recurring schedules: next-due-date computation, amount conversion
// between cadences, and cadence classification from interval statistics.
//
// Every function takes the reference date ("today") as an explicit
// parameter so boundary behavior is deterministic under test. Nothing in
// this package performs I/O or holds mutable state.
package frequency

import (
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/model"
)

// Approximate occurrences per year by cadence, used for yearly totals.
// Unknown cadences (including custom) fall back to 12.
var occurrencesPerYear = map[model.Cadence]float64{
	model.CadenceDaily:     365,
	model.CadenceWeekly:    52,
	model.CadenceBiweekly:  26,
	model.CadenceMonthly:   12,
	model.CadenceQuarterly: 4,
	model.CadenceYearly:    1,
}

// NextDueDate returns the next occurrence of the schedule on or after from
// that falls strictly after today. The daily cadence permits returning
// from itself when from is already in the future.
//
// A custom cadence without a usable pattern, or an unrecognized cadence,
// returns from unchanged. This degenerate fallback is deliberate: schedule
// math never fails on malformed specs.
func NextDueDate(spec model.ScheduleSpec, from, today time.Time) time.Time {
	from = midnight(from)
	today = midnight(today)

	switch spec.Cadence {
	case model.CadenceDaily:
		candidate := from
		if !candidate.After(today) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate

	case model.CadenceWeekly:
		return nextWeekdayAligned(spec, from, today, 7)

	case model.CadenceBiweekly:
		// Reuses the weekly weekday alignment; only the already-due advance
		// differs. The 14-day cycle has no persisted phase anchor, so two
		// biweekly schedules on the same weekday are indistinguishable in
		// phase. Known limitation.
		return nextWeekdayAligned(spec, from, today, 14)

	case model.CadenceMonthly:
		day := spec.AnchorDayOrDefault(1)
		candidate := dateClamped(from.Year(), from.Month(), day)
		if !candidate.After(today) {
			next := from.AddDate(0, 0, -from.Day()+1).AddDate(0, 1, 0)
			candidate = dateClamped(next.Year(), next.Month(), day)
		}
		return candidate

	case model.CadenceQuarterly:
		month := quarterStartMonth(from.Month())
		if spec.AnchorMonth != nil {
			month = *spec.AnchorMonth
		}
		// Quarterly deliberately caps the day at 28 instead of querying the
		// real month length: the same anchor day must be valid across three
		// different months. Do not "fix" this to per-month clamping.
		day := minInt(spec.AnchorDayOrDefault(1), 28)
		candidate := time.Date(from.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if !candidate.After(today) {
			candidate = candidate.AddDate(0, 3, 0)
		}
		return candidate

	case model.CadenceYearly:
		month := spec.AnchorMonthOrDefault(1)
		day := minInt(spec.AnchorDayOrDefault(1), 28)
		candidate := time.Date(from.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if !candidate.After(today) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate

	case model.CadenceCustom:
		return nextCustomDate(spec, from, today)
	}

	return from
}

// nextWeekdayAligned aligns from to the anchor weekday (ISO, 1=Monday) and
// advances by step days when the aligned date is already due.
func nextWeekdayAligned(spec model.ScheduleSpec, from, today time.Time, step int) time.Time {
	target := spec.AnchorDayOrDefault(1)
	delta := (target - isoWeekday(from) + 7) % 7

	if delta == 0 {
		if !from.After(today) {
			return from.AddDate(0, 0, step)
		}
		return from
	}
	return from.AddDate(0, 0, delta)
}

// nextCustomDate evaluates a custom calendar pattern against today.
func nextCustomDate(spec model.ScheduleSpec, from, today time.Time) time.Time {
	day := spec.AnchorDayOrDefault(1)

	switch spec.Pattern.Kind {
	case model.PatternMonthSet:
		if len(spec.Pattern.Months) == 0 {
			return from
		}
		// Months are stored ascending; first month strictly after today this
		// year wins, otherwise the pattern's first month next year.
		year := today.Year()
		for _, m := range spec.Pattern.Months {
			candidate := dateClamped(year, time.Month(m), day)
			if candidate.After(today) {
				return candidate
			}
		}
		return dateClamped(year+1, time.Month(spec.Pattern.Months[0]), day)

	case model.PatternDateList:
		// Earliest future date across the current-year and next-year
		// horizons. Next-year candidates are always in play so a list whose
		// entries have all passed still resolves.
		year := today.Year()
		var best time.Time
		for _, entry := range spec.Pattern.Dates {
			current := dateClamped(year, time.Month(entry.Month), entry.Day)
			next := dateClamped(year+1, time.Month(entry.Month), entry.Day)
			if current.After(today) && (best.IsZero() || current.Before(best)) {
				best = current
			}
			if best.IsZero() || next.Before(best) {
				best = next
			}
		}
		if best.IsZero() {
			return from
		}
		return best
	}

	return from
}

// MonthlyEquivalent normalizes an amount at the spec's cadence to a
// comparable per-month figure. Unrecognized cadences pass through.
func MonthlyEquivalent(amount float64, spec model.ScheduleSpec) float64 {
	switch spec.Cadence {
	case model.CadenceDaily:
		return amount * 30
	case model.CadenceWeekly:
		return amount * 52 / 12
	case model.CadenceBiweekly:
		return amount * 26 / 12
	case model.CadenceMonthly:
		return amount
	case model.CadenceQuarterly:
		return amount / 3
	case model.CadenceYearly:
		return amount / 12
	case model.CadenceCustom:
		return amount * float64(spec.Pattern.OccurrencesPerYear()) / 12
	}
	return amount
}

// YearlyTotal returns the total paid per year at the given cadence.
func YearlyTotal(amount float64, cadence model.Cadence) float64 {
	if n, ok := occurrencesPerYear[cadence]; ok {
		return amount * n
	}
	return amount * 12
}

// Classify maps a mean interval in days to a cadence using inclusive bands.
// The monthly band is widened down to 23 days to capture 28-day four-week
// pay cycles. Returns false when the interval falls outside every band;
// callers must treat that as insufficient evidence, not an error.
func Classify(averageIntervalDays float64) (model.Cadence, bool) {
	switch {
	case averageIntervalDays >= 0.5 && averageIntervalDays <= 1.5:
		return model.CadenceDaily, true
	case averageIntervalDays >= 6 && averageIntervalDays <= 8:
		return model.CadenceWeekly, true
	case averageIntervalDays >= 12 && averageIntervalDays <= 16:
		return model.CadenceBiweekly, true
	case averageIntervalDays >= 23 && averageIntervalDays <= 37:
		return model.CadenceMonthly, true
	case averageIntervalDays >= 85 && averageIntervalDays <= 100:
		return model.CadenceQuarterly, true
	case averageIntervalDays >= 350 && averageIntervalDays <= 380:
		return model.CadenceYearly, true
	}
	return "", false
}

// quarterStartMonth returns the first month of the calendar quarter
// containing m.
func quarterStartMonth(m time.Month) int {
	return ((int(m)+2)/3)*3 - 2
}

// isoWeekday returns the ISO weekday of t (1=Monday .. 7=Sunday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateClamped builds a UTC date with day clamped to the target month's
// actual length. Clamping always uses the candidate month, never the
// source month.
func dateClamped(year int, month time.Month, day int) time.Time {
	if max := daysIn(year, month); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
