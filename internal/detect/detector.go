// Package detect turns raw transaction history into ranked recurring-income
// candidates. The detector groups transactions by normalized description,
// rejects amount outliers against the group median, measures interval
// statistics, and classifies the interval distribution into a cadence via
// the frequency package.
//
// Detection is advisory: data-quality problems degrade to debug-only
// rejection entries, never errors. The only user-visible failure mode for
// legitimate history is an empty result.
package detect

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/frequency"
	"github.com/Veraticus/the-bills-must-flow/internal/model"
)

// Default detector configuration.
const (
	DefaultMinAmount      = 10.0
	DefaultLookbackMonths = 6
)

// Config holds the detector's pure configuration.
type Config struct {
	// MinAmount excludes transactions below this absolute amount.
	MinAmount float64
	// LookbackMonths bounds how far back from the reference date history
	// is considered.
	LookbackMonths int
}

// Detector finds recurring income patterns in transaction history. It holds
// only constructor-supplied configuration and is safe for concurrent use.
type Detector struct {
	minAmount      float64
	lookbackMonths int
}

// Result is the outcome of one detection run. Rejected is populated only
// when the run was executed in debug mode.
type Result struct {
	Detected []model.DetectedPattern
	Rejected []model.RejectedPattern
}

// New creates a Detector. Zero config fields take defaults; negative values
// are programmer errors.
func New(cfg Config) (*Detector, error) {
	if cfg.MinAmount < 0 {
		return nil, fmt.Errorf("min amount cannot be negative: %v", cfg.MinAmount)
	}
	if cfg.LookbackMonths < 0 {
		return nil, fmt.Errorf("lookback months cannot be negative: %d", cfg.LookbackMonths)
	}
	if cfg.MinAmount == 0 {
		cfg.MinAmount = DefaultMinAmount
	}
	if cfg.LookbackMonths == 0 {
		cfg.LookbackMonths = DefaultLookbackMonths
	}
	return &Detector{minAmount: cfg.MinAmount, lookbackMonths: cfg.LookbackMonths}, nil
}

// Detect analyzes the given transactions relative to today and returns
// recurring-income candidates sorted by confidence, highest first. With
// debug set, groups that failed detection are reported alongside.
func (d *Detector) Detect(transactions []model.Transaction, today time.Time, debug bool) Result {
	cutoff := today.AddDate(0, -d.lookbackMonths, 0)

	// Income-only: credits at or above the floor, inside the lookback
	// window. Records with no usable date are excluded, never fatal.
	groups := make(map[string][]model.Transaction)
	for _, txn := range transactions {
		if txn.Kind != model.KindCredit {
			continue
		}
		if math.Abs(txn.Amount) < d.minAmount {
			continue
		}
		if txn.Date.IsZero() || txn.Date.Before(cutoff) || txn.Date.After(today) {
			continue
		}
		key := normalizeKey(txn.Name)
		groups[key] = append(groups[key], txn)
	}

	// Deterministic group order so repeated runs emit identical results.
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result Result
	for _, key := range keys {
		pattern, rejection := d.analyzeGroup(key, groups[key])
		if rejection != nil {
			result.Rejected = append(result.Rejected, *rejection)
			continue
		}
		result.Detected = append(result.Detected, *pattern)
	}

	sort.SliceStable(result.Detected, func(i, j int) bool {
		return result.Detected[i].Confidence > result.Detected[j].Confidence
	})

	if !debug {
		result.Rejected = nil
	}
	return result
}

// analyzeGroup runs the per-group statistics pipeline. Exactly one of the
// return values is non-nil. Suggested names derive from the normalized key,
// already free of reference codes; the match pattern keeps working from the
// raw description.
func (d *Detector) analyzeGroup(key string, group []model.Transaction) (*model.DetectedPattern, *model.RejectedPattern) {
	survivors := filterAmountOutliers(group)

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Date.Before(survivors[j].Date)
	})

	latest := survivors[len(survivors)-1]

	if len(survivors) < 2 {
		return nil, &model.RejectedPattern{
			Description:     latest.Name,
			OccurrenceCount: len(survivors),
			Reason:          model.RejectTooFewOccurrences,
		}
	}

	intervals := make([]float64, 0, len(survivors)-1)
	for i := 1; i < len(survivors); i++ {
		intervals = append(intervals, survivors[i].Date.Sub(survivors[i-1].Date).Hours()/24)
	}
	averageInterval := mean(intervals)

	cadence, ok := frequency.Classify(averageInterval)
	if !ok {
		return nil, &model.RejectedPattern{
			Description:         latest.Name,
			OccurrenceCount:     len(survivors),
			AverageIntervalDays: averageInterval,
			Reason:              model.RejectNoMatchingFrequency,
		}
	}

	amounts := make([]float64, len(survivors))
	days := make([]float64, len(survivors))
	for i, txn := range survivors {
		amounts[i] = txn.Amount
		days[i] = float64(txn.Date.Day())
	}
	averageAmount := mean(amounts)
	amountDeviation := populationStdDev(amounts, averageAmount)
	intervalDeviation := populationStdDev(intervals, averageInterval)

	// Confidence grows with occurrence count and is penalized for noisy
	// intervals, then noisy amounts, in that order.
	confidence := math.Min(1.0, float64(len(survivors))/6.0)
	if intervalDeviation > 7 {
		confidence *= 0.8
	}
	if amountDeviation > 0.2*averageAmount {
		confidence *= 0.85
	}

	return &model.DetectedPattern{
		Description:         latest.Name,
		SuggestedName:       suggestName(key),
		SuggestedSource:     suggestSource(key),
		MatchPattern:        matchPattern(latest.Name),
		AverageAmount:       averageAmount,
		Cadence:             cadence,
		ExpectedDayOfMonth:  int(math.Round(mean(days))),
		CategoryID:          latest.CategoryID,
		AccountID:           latest.AccountID,
		OccurrenceCount:     len(survivors),
		Confidence:          confidence,
		LastSeen:            latest.Date,
		AmountVariance:      amountDeviation,
		AverageIntervalDays: averageInterval,
	}, nil
}

// filterAmountOutliers drops transactions whose amount deviates from the
// group median by more than 50%. A zero median disables filtering (division
// guard), and if fewer than two transactions survive the original group is
// kept so a single odd payment cannot erase a real pattern.
func filterAmountOutliers(group []model.Transaction) []model.Transaction {
	med := median(group)
	if med == 0 {
		return group
	}

	survivors := make([]model.Transaction, 0, len(group))
	for _, txn := range group {
		if math.Abs(txn.Amount-med)/math.Abs(med) <= 0.5 {
			survivors = append(survivors, txn)
		}
	}
	if len(survivors) < 2 {
		return group
	}
	return survivors
}

func median(group []model.Transaction) float64 {
	amounts := make([]float64, len(group))
	for i, txn := range group {
		amounts[i] = txn.Amount
	}
	sort.Float64s(amounts)

	n := len(amounts)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return amounts[n/2]
	}
	return (amounts[n/2-1] + amounts[n/2]) / 2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev computes the population (not sample) standard deviation.
func populationStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
