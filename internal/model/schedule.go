package model

import (
	"encoding/json"
	"sort"
)

// PatternKind discriminates the custom-pattern union.
type PatternKind int

// Custom pattern variants. PatternNone means no usable pattern was supplied;
// schedule math degrades to returning the input date unchanged.
const (
	PatternNone PatternKind = iota
	PatternMonthSet
	PatternDateList
)

// MonthDay is a single (month, day) entry of a date-list pattern.
type MonthDay struct {
	Month int
	Day   int
}

// CustomPattern is the parsed form of a stored calendar pattern: either a
// set of months, an ordered list of (month, day) pairs, or nothing.
// It is parsed once at the boundary; downstream code switches on Kind only.
type CustomPattern struct {
	Months []int      // PatternMonthSet: unique, ascending
	Dates  []MonthDay // PatternDateList: stored order preserved
	Kind   PatternKind
}

// storedPattern mirrors the external JSON representation:
// {"months":[1,6,7]} or {"dates":[{"month":1,"day":15},...]}.
type storedPattern struct {
	Months []int `json:"months"`
	Dates  []struct {
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"dates"`
}

// ParseCustomPattern decodes the persisted pattern payload. Absent, malformed
// or empty input yields a PatternNone value; this is a documented fallback,
// never an error.
func ParseCustomPattern(raw []byte) CustomPattern {
	if len(raw) == 0 {
		return CustomPattern{Kind: PatternNone}
	}

	var stored storedPattern
	if err := json.Unmarshal(raw, &stored); err != nil {
		return CustomPattern{Kind: PatternNone}
	}

	if len(stored.Months) > 0 {
		seen := make(map[int]bool, len(stored.Months))
		months := make([]int, 0, len(stored.Months))
		for _, m := range stored.Months {
			if m < 1 || m > 12 || seen[m] {
				continue
			}
			seen[m] = true
			months = append(months, m)
		}
		if len(months) == 0 {
			return CustomPattern{Kind: PatternNone}
		}
		sort.Ints(months)
		return CustomPattern{Kind: PatternMonthSet, Months: months}
	}

	if len(stored.Dates) > 0 {
		dates := make([]MonthDay, 0, len(stored.Dates))
		for _, d := range stored.Dates {
			if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
				continue
			}
			dates = append(dates, MonthDay{Month: d.Month, Day: d.Day})
		}
		if len(dates) == 0 {
			return CustomPattern{Kind: PatternNone}
		}
		return CustomPattern{Kind: PatternDateList, Dates: dates}
	}

	return CustomPattern{Kind: PatternNone}
}

// MarshalJSON writes the pattern back in the external storage shape.
func (p CustomPattern) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PatternMonthSet:
		return json.Marshal(map[string][]int{"months": p.Months})
	case PatternDateList:
		dates := make([]map[string]int, len(p.Dates))
		for i, d := range p.Dates {
			dates[i] = map[string]int{"month": d.Month, "day": d.Day}
		}
		return json.Marshal(map[string]any{"dates": dates})
	default:
		return []byte("null"), nil
	}
}

// OccurrencesPerYear counts how many times per year the pattern fires:
// unique months for a month set, entries for a date list, zero otherwise.
func (p CustomPattern) OccurrencesPerYear() int {
	switch p.Kind {
	case PatternMonthSet:
		return len(p.Months)
	case PatternDateList:
		return len(p.Dates)
	default:
		return 0
	}
}

// ScheduleSpec describes a recurring obligation's timing. It is immutable
// input to the frequency engine; the engine never mutates it.
type ScheduleSpec struct {
	AnchorDay   *int // weekday (1=Monday..7=Sunday) or day-of-month, per cadence
	AnchorMonth *int // 1-12; quarterly and yearly only
	Pattern     CustomPattern
	Cadence     Cadence
}

// AnchorDayOrDefault returns the anchor day, or def when unset.
func (s ScheduleSpec) AnchorDayOrDefault(def int) int {
	if s.AnchorDay != nil {
		return *s.AnchorDay
	}
	return def
}

// AnchorMonthOrDefault returns the anchor month, or def when unset.
func (s ScheduleSpec) AnchorMonthOrDefault(def int) int {
	if s.AnchorMonth != nil {
		return *s.AnchorMonth
	}
	return def
}
