package frequency

import (
	"testing"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(i int) *int { return &i }

func TestNextDueDate_Daily(t *testing.T) {
	spec := model.ScheduleSpec{Cadence: model.CadenceDaily}

	tests := []struct {
		name  string
		from  time.Time
		today time.Time
		want  time.Time
	}{
		{
			name:  "from equals today advances to tomorrow",
			from:  date(2026, 3, 15),
			today: date(2026, 3, 15),
			want:  date(2026, 3, 16),
		},
		{
			name:  "from before today advances one day",
			from:  date(2026, 3, 10),
			today: date(2026, 3, 15),
			want:  date(2026, 3, 11),
		},
		{
			name:  "future from is returned unchanged",
			from:  date(2026, 3, 20),
			today: date(2026, 3, 15),
			want:  date(2026, 3, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(spec, tt.from, tt.today))
		})
	}
}

func TestNextDueDate_WeeklyAndBiweekly(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := date(2026, 3, 2)

	tests := []struct {
		name  string
		spec  model.ScheduleSpec
		from  time.Time
		today time.Time
		want  time.Time
	}{
		{
			name:  "weekly on anchor weekday and already due advances 7 days",
			spec:  model.ScheduleSpec{Cadence: model.CadenceWeekly, AnchorDay: intPtr(1)},
			from:  monday,
			today: monday,
			want:  date(2026, 3, 9),
		},
		{
			name:  "biweekly on anchor weekday and already due advances 14 days",
			spec:  model.ScheduleSpec{Cadence: model.CadenceBiweekly, AnchorDay: intPtr(1)},
			from:  monday,
			today: monday,
			want:  date(2026, 3, 16),
		},
		{
			name:  "weekly aligns forward to anchor weekday",
			spec:  model.ScheduleSpec{Cadence: model.CadenceWeekly, AnchorDay: intPtr(1)},
			from:  date(2026, 3, 3), // Tuesday
			today: date(2026, 3, 3),
			want:  date(2026, 3, 9), // next Monday
		},
		{
			name:  "weekly future anchor date stays put",
			spec:  model.ScheduleSpec{Cadence: model.CadenceWeekly, AnchorDay: intPtr(1)},
			from:  date(2026, 3, 9),
			today: monday,
			want:  date(2026, 3, 9),
		},
		{
			name:  "weekly Friday anchor from Tuesday",
			spec:  model.ScheduleSpec{Cadence: model.CadenceWeekly, AnchorDay: intPtr(5)},
			from:  date(2026, 3, 3), // Tuesday
			today: date(2026, 3, 3),
			want:  date(2026, 3, 6), // Friday same week
		},
		{
			name:  "default anchor is Monday",
			spec:  model.ScheduleSpec{Cadence: model.CadenceWeekly},
			from:  date(2026, 3, 4), // Wednesday
			today: date(2026, 3, 4),
			want:  date(2026, 3, 9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.spec, tt.from, tt.today))
		})
	}
}

func TestNextDueDate_Monthly(t *testing.T) {
	tests := []struct {
		name  string
		spec  model.ScheduleSpec
		from  time.Time
		today time.Time
		want  time.Time
	}{
		{
			name:  "upcoming day this month",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(28)},
			from:  date(2026, 3, 10),
			today: date(2026, 3, 10),
			want:  date(2026, 3, 28),
		},
		{
			name:  "already due rolls to next month",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(5)},
			from:  date(2026, 3, 10),
			today: date(2026, 3, 10),
			want:  date(2026, 4, 5),
		},
		{
			name:  "day 31 clamps to February length, never rolls into March",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(31)},
			from:  date(2026, 2, 10),
			today: date(2026, 2, 10),
			want:  date(2026, 2, 28),
		},
		{
			name:  "day 31 clamps to leap February",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(31)},
			from:  date(2028, 2, 10),
			today: date(2028, 2, 10),
			want:  date(2028, 2, 29),
		},
		{
			name:  "roll from January 31 reclamps against February",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(31)},
			from:  date(2026, 1, 31),
			today: date(2026, 1, 31),
			want:  date(2026, 2, 28),
		},
		{
			name:  "December roll crosses the year boundary",
			spec:  model.ScheduleSpec{Cadence: model.CadenceMonthly, AnchorDay: intPtr(1)},
			from:  date(2026, 12, 15),
			today: date(2026, 12, 15),
			want:  date(2027, 1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.spec, tt.from, tt.today))
		})
	}
}

func TestNextDueDate_Quarterly(t *testing.T) {
	tests := []struct {
		name  string
		spec  model.ScheduleSpec
		from  time.Time
		today time.Time
		want  time.Time
	}{
		{
			name:  "quarter start derived from fromDate, already due advances 3 months",
			spec:  model.ScheduleSpec{Cadence: model.CadenceQuarterly, AnchorDay: intPtr(31)},
			from:  date(2026, 2, 10),
			today: date(2026, 2, 10),
			// Q1 start is January, day capped at 28; Jan 28 already passed.
			want: date(2026, 4, 28),
		},
		{
			name:  "anchor month overrides the computed quarter start",
			spec:  model.ScheduleSpec{Cadence: model.CadenceQuarterly, AnchorDay: intPtr(28), AnchorMonth: intPtr(2)},
			from:  date(2026, 2, 10),
			today: date(2026, 2, 10),
			want:  date(2026, 2, 28),
		},
		{
			name:  "day is capped at 28 even where the month is longer",
			spec:  model.ScheduleSpec{Cadence: model.CadenceQuarterly, AnchorDay: intPtr(30), AnchorMonth: intPtr(5)},
			from:  date(2026, 4, 1),
			today: date(2026, 4, 1),
			want:  date(2026, 5, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.spec, tt.from, tt.today))
		})
	}
}

func TestNextDueDate_Yearly(t *testing.T) {
	tests := []struct {
		name  string
		spec  model.ScheduleSpec
		from  time.Time
		today time.Time
		want  time.Time
	}{
		{
			name:  "upcoming anniversary this year",
			spec:  model.ScheduleSpec{Cadence: model.CadenceYearly, AnchorDay: intPtr(15), AnchorMonth: intPtr(6)},
			from:  date(2026, 3, 1),
			today: date(2026, 3, 1),
			want:  date(2026, 6, 15),
		},
		{
			name:  "passed anniversary advances one year",
			spec:  model.ScheduleSpec{Cadence: model.CadenceYearly, AnchorDay: intPtr(31), AnchorMonth: intPtr(2)},
			from:  date(2026, 3, 15),
			today: date(2026, 3, 15),
			// Day capped at 28.
			want: date(2027, 2, 28),
		},
		{
			name:  "defaults to January 1",
			spec:  model.ScheduleSpec{Cadence: model.CadenceYearly},
			from:  date(2026, 3, 15),
			today: date(2026, 3, 15),
			want:  date(2027, 1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.spec, tt.from, tt.today))
		})
	}
}

func TestNextDueDate_CustomMonthSet(t *testing.T) {
	pattern := model.ParseCustomPattern([]byte(`{"months":[1,6,7]}`))
	require.Equal(t, model.PatternMonthSet, pattern.Kind)

	tests := []struct {
		name  string
		spec  model.ScheduleSpec
		today time.Time
		want  time.Time
	}{
		{
			name:  "first month strictly after today this year",
			spec:  model.ScheduleSpec{Cadence: model.CadenceCustom, AnchorDay: intPtr(15), Pattern: pattern},
			today: date(2026, 3, 15),
			want:  date(2026, 6, 15),
		},
		{
			name:  "all months passed wraps to first month next year",
			spec:  model.ScheduleSpec{Cadence: model.CadenceCustom, AnchorDay: intPtr(15), Pattern: pattern},
			today: date(2026, 8, 1),
			want:  date(2027, 1, 15),
		},
		{
			name: "anchor day clamps to the candidate month",
			spec: model.ScheduleSpec{
				Cadence:   model.CadenceCustom,
				AnchorDay: intPtr(31),
				Pattern:   model.ParseCustomPattern([]byte(`{"months":[2]}`)),
			},
			today: date(2026, 1, 15),
			want:  date(2026, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.spec, date(2026, 1, 1), tt.today))
		})
	}
}

func TestNextDueDate_CustomDateList(t *testing.T) {
	pattern := model.ParseCustomPattern([]byte(`{"dates":[{"month":2,"day":14},{"month":11,"day":5}]}`))
	require.Equal(t, model.PatternDateList, pattern.Kind)

	spec := model.ScheduleSpec{Cadence: model.CadenceCustom, Pattern: pattern}

	t.Run("earliest remaining current-year entry wins", func(t *testing.T) {
		got := NextDueDate(spec, date(2026, 1, 1), date(2026, 6, 1))
		assert.Equal(t, date(2026, 11, 5), got)
	})

	t.Run("all entries passed picks earliest next-year candidate", func(t *testing.T) {
		got := NextDueDate(spec, date(2026, 1, 1), date(2026, 12, 1))
		assert.Equal(t, date(2027, 2, 14), got)
	})

	t.Run("next-year candidate clamps to leap February", func(t *testing.T) {
		leap := model.ScheduleSpec{
			Cadence: model.CadenceCustom,
			Pattern: model.ParseCustomPattern([]byte(`{"dates":[{"month":2,"day":30}]}`)),
		}
		got := NextDueDate(leap, date(2027, 1, 1), date(2027, 12, 1))
		assert.Equal(t, date(2028, 2, 29), got)
	})
}

func TestNextDueDate_DegenerateFallbacks(t *testing.T) {
	from := date(2026, 3, 1)
	today := date(2026, 3, 15)

	t.Run("custom cadence without pattern returns fromDate", func(t *testing.T) {
		spec := model.ScheduleSpec{Cadence: model.CadenceCustom}
		assert.Equal(t, from, NextDueDate(spec, from, today))
	})

	t.Run("custom cadence with unparseable pattern returns fromDate", func(t *testing.T) {
		spec := model.ScheduleSpec{
			Cadence: model.CadenceCustom,
			Pattern: model.ParseCustomPattern([]byte(`{"bogus":true}`)),
		}
		assert.Equal(t, from, NextDueDate(spec, from, today))
	})

	t.Run("unrecognized cadence returns fromDate", func(t *testing.T) {
		spec := model.ScheduleSpec{Cadence: model.Cadence("fortnightly")}
		assert.Equal(t, from, NextDueDate(spec, from, today))
	})

	t.Run("month set with no months returns fromDate", func(t *testing.T) {
		// Hand-built pattern that the parser would never emit.
		spec := model.ScheduleSpec{
			Cadence: model.CadenceCustom,
			Pattern: model.CustomPattern{Kind: model.PatternMonthSet},
		}
		assert.Equal(t, from, NextDueDate(spec, from, today))
	})

	t.Run("date list with no dates returns fromDate", func(t *testing.T) {
		spec := model.ScheduleSpec{
			Cadence: model.CadenceCustom,
			Pattern: model.CustomPattern{Kind: model.PatternDateList},
		}
		assert.Equal(t, from, NextDueDate(spec, from, today))
	})
}

func TestNextDueDate_StrictlyAfterToday(t *testing.T) {
	// Property: for every recognized cadence, a fromDate at or after today
	// produces a result strictly after today. Far-past fromDates are out of
	// contract for the day-stepping cadences (daily, weekly, biweekly),
	// which advance a single step at a time.
	today := date(2026, 3, 15)
	specs := []model.ScheduleSpec{
		{Cadence: model.CadenceDaily},
		{Cadence: model.CadenceWeekly, AnchorDay: intPtr(3)},
		{Cadence: model.CadenceBiweekly, AnchorDay: intPtr(5)},
		{Cadence: model.CadenceMonthly, AnchorDay: intPtr(31)},
		{Cadence: model.CadenceQuarterly, AnchorDay: intPtr(28)},
		{Cadence: model.CadenceYearly, AnchorDay: intPtr(1), AnchorMonth: intPtr(3)},
		{Cadence: model.CadenceCustom, Pattern: model.ParseCustomPattern([]byte(`{"months":[1,4,9]}`))},
	}

	for _, spec := range specs {
		for offset := 0; offset <= 7; offset++ {
			from := today.AddDate(0, 0, offset)
			got := NextDueDate(spec, from, today)
			assert.True(t, got.After(today),
				"cadence %s from %s produced %s, not after today", spec.Cadence, from, got)
		}
	}
}

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		interval float64
		want     model.Cadence
		ok       bool
	}{
		{0.5, model.CadenceDaily, true},
		{1.0, model.CadenceDaily, true},
		{1.5, model.CadenceDaily, true},
		{2.0, "", false},
		{5.0, "", false},
		{6, model.CadenceWeekly, true},
		{7, model.CadenceWeekly, true},
		{8, model.CadenceWeekly, true},
		{12, model.CadenceBiweekly, true},
		{14, model.CadenceBiweekly, true},
		{16, model.CadenceBiweekly, true},
		{23, model.CadenceMonthly, true},
		{28, model.CadenceMonthly, true},
		{30.4, model.CadenceMonthly, true},
		{37, model.CadenceMonthly, true},
		{45, "", false},
		{85, model.CadenceQuarterly, true},
		{100, model.CadenceQuarterly, true},
		{101, "", false},
		{350, model.CadenceYearly, true},
		{380, model.CadenceYearly, true},
		{400, "", false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.interval)
		assert.Equal(t, tt.ok, ok, "interval %v", tt.interval)
		assert.Equal(t, tt.want, got, "interval %v", tt.interval)
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name string
		spec model.ScheduleSpec
		in   float64
		want float64
	}{
		{"daily", model.ScheduleSpec{Cadence: model.CadenceDaily}, 10, 300},
		{"weekly", model.ScheduleSpec{Cadence: model.CadenceWeekly}, 12, 52},
		{"biweekly", model.ScheduleSpec{Cadence: model.CadenceBiweekly}, 12, 26},
		{"monthly", model.ScheduleSpec{Cadence: model.CadenceMonthly}, 99.5, 99.5},
		{"quarterly", model.ScheduleSpec{Cadence: model.CadenceQuarterly}, 300, 100},
		{"yearly", model.ScheduleSpec{Cadence: model.CadenceYearly}, 1200, 100},
		{
			"custom uses pattern occurrences",
			model.ScheduleSpec{
				Cadence: model.CadenceCustom,
				Pattern: model.ParseCustomPattern([]byte(`{"months":[1,6,7]}`)),
			},
			120, 30, // 120 * 3 / 12
		},
		{
			"custom without pattern contributes nothing",
			model.ScheduleSpec{Cadence: model.CadenceCustom},
			120, 0,
		},
		{"unrecognized cadence passes through", model.ScheduleSpec{Cadence: "sometimes"}, 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyEquivalent(tt.in, tt.spec), 1e-9)
		})
	}
}

func TestYearlyTotal(t *testing.T) {
	assert.InDelta(t, 3650.0, YearlyTotal(10, model.CadenceDaily), 1e-9)
	assert.InDelta(t, 520.0, YearlyTotal(10, model.CadenceWeekly), 1e-9)
	assert.InDelta(t, 260.0, YearlyTotal(10, model.CadenceBiweekly), 1e-9)
	assert.InDelta(t, 120.0, YearlyTotal(10, model.CadenceMonthly), 1e-9)
	assert.InDelta(t, 40.0, YearlyTotal(10, model.CadenceQuarterly), 1e-9)
	assert.InDelta(t, 10.0, YearlyTotal(10, model.CadenceYearly), 1e-9)
	// Unrecognized cadences fall back to 12 occurrences per year.
	assert.InDelta(t, 120.0, YearlyTotal(10, model.Cadence("sometimes")), 1e-9)
}

func TestMonthlyEquivalentRoundTripsWithYearlyTotal(t *testing.T) {
	// yearlyTotal(monthlyEquivalent(a, c), monthly) == yearlyTotal(a, c)
	// holds exactly for every cadence whose conversions share a yearly
	// occurrence count. Daily is the documented exception: the monthly
	// equivalent uses a 30-day month (x360/year) while the yearly total
	// uses 365 occurrences.
	cadences := []model.Cadence{
		model.CadenceWeekly,
		model.CadenceBiweekly,
		model.CadenceMonthly,
		model.CadenceQuarterly,
		model.CadenceYearly,
	}

	for _, c := range cadences {
		amount := 123.45
		me := MonthlyEquivalent(amount, model.ScheduleSpec{Cadence: c})
		assert.InDelta(t,
			YearlyTotal(amount, c),
			YearlyTotal(me, model.CadenceMonthly),
			1e-6, "cadence %s", c)
	}
}
