package model

import "time"

// RejectReason explains why a candidate group did not become a pattern.
type RejectReason string

// Rejection reasons surfaced on the debug channel.
const (
	RejectTooFewOccurrences   RejectReason = "too_few_occurrences"
	RejectNoMatchingFrequency RejectReason = "no_matching_frequency"
)

// DetectedPattern is a ranked recurring-income candidate produced by the
// detector. Patterns have no persistent identity; they are ephemeral
// suggestions a caller may choose to materialize as a schedule.
type DetectedPattern struct {
	LastSeen            time.Time
	Description         string
	SuggestedName       string
	SuggestedSource     string
	MatchPattern        string
	CategoryID          string
	AccountID           string
	Cadence             Cadence
	ExpectedDayOfMonth  int
	OccurrenceCount     int
	AverageAmount       float64
	AmountVariance      float64 // population standard deviation of amounts
	AverageIntervalDays float64
	Confidence          float64 // 0.0 - 1.0
}

// RejectedPattern records a group that failed detection, for debugging.
type RejectedPattern struct {
	Description         string
	Reason              RejectReason
	OccurrenceCount     int
	AverageIntervalDays float64
}
