// Package aggregator reduces per-conversation comparison results into
// accuracy metrics. Every (conversation, field) pair counts once.
package aggregator

import (
	"math"

	"lead-extract-eval/internal/types"
)

// epsilon keeps the ratio defined when nothing was scored.
const epsilon = 1e-9

// FieldStats is the accuracy of a single canonical field.
type FieldStats struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Summary is the aggregate over one evaluation run.
type Summary struct {
	Conversations int                   `json:"conversations"`
	Skipped       int                   `json:"skipped"`
	Correct       int                   `json:"correct"`
	Incorrect     int                   `json:"incorrect"`
	Total         int                   `json:"total"`
	Accuracy      float64               `json:"accuracy"`
	Fields        map[string]FieldStats `json:"fields"`
}

// Accumulator collects comparison results as they become available. It is
// owned by a single evaluation loop and is not safe for concurrent use.
type Accumulator struct {
	conversations int
	skipped       int
	correct       int
	total         int
	fieldCorrect  map[string]int
	fieldTotal    map[string]int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		fieldCorrect: map[string]int{},
		fieldTotal:   map[string]int{},
	}
}

// Add folds one conversation's result into the totals.
func (a *Accumulator) Add(res types.ComparisonResult) {
	a.conversations++
	for _, m := range res {
		a.total++
		a.fieldTotal[m.Field]++
		if m.Match {
			a.correct++
			a.fieldCorrect[m.Field]++
		}
	}
}

// Skip records a conversation that could not be scored.
func (a *Accumulator) Skip() {
	a.skipped++
}

// Summary computes the current statistics. Ratios are rounded to 4 places.
func (a *Accumulator) Summary() Summary {
	s := Summary{
		Conversations: a.conversations,
		Skipped:       a.skipped,
		Correct:       a.correct,
		Incorrect:     a.total - a.correct,
		Total:         a.total,
		Accuracy:      ratio(a.correct, a.total),
		Fields:        make(map[string]FieldStats, len(a.fieldTotal)),
	}
	for field, total := range a.fieldTotal {
		s.Fields[field] = FieldStats{
			Correct:  a.fieldCorrect[field],
			Total:    total,
			Accuracy: ratio(a.fieldCorrect[field], total),
		}
	}
	return s
}

// Aggregate summarizes a complete slice of results.
func Aggregate(results []types.ComparisonResult) Summary {
	a := NewAccumulator()
	for _, r := range results {
		a.Add(r)
	}
	return a.Summary()
}

func ratio(correct, total int) float64 {
	return round4(float64(correct) / (float64(total) + epsilon))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
