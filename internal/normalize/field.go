// Package normalize maps raw prediction and ground-truth values into the
// canonical form used for comparison. Every normalizer is best effort: a
// missing or malformed value becomes nil instead of an error.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CroreRupees is the number of rupees in one crore.
const CroreRupees = 10_000_000

// twoPow63 is the first float64 above math.MaxInt64.
const twoPow63 = float64(1 << 63)

// VisitDateLayout is the only accepted visit date format.
const VisitDateLayout = "2006-01-02"

// Professions is the closed set of recognized profession values.
var Professions = map[string]bool{
	"salaried": true,
	"business": true,
	"retired":  true,
}

var (
	intPattern     = regexp.MustCompile(`\d+`)
	decimalPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// timelinePhrases are matched before any numeric parsing.
// "day after tomorrow" has to win over the "day" unit keyword.
var timelinePhrases = []struct {
	phrase string
	weeks  int
}{
	{"day after tomorrow", 0},
	{"immediately", 0},
	{"immediate", 0},
	{"next month", 4},
	{"next year", 52},
}

// timelineUnits are checked in priority order.
var timelineUnits = []struct {
	keyword string
	toWeeks func(n int) int
}{
	{"day", func(n int) int { return n / 7 }},
	{"week", func(n int) int { return n }},
	{"month", func(n int) int { return n * 4 }},
	{"year", func(n int) int { return n * 52 }},
}

// String trims and lower-cases a value. nil and blank values return nil.
// Numbers are rendered without an exponent so phone numbers decoded as
// float64 keep their digits.
func String(v any) *string {
	s, ok := text(v)
	if !ok {
		return nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

// SplitName splits a full name into first and last name. Middle names are
// dropped; a single token yields only a first name.
func SplitName(v any) (first, last *string) {
	s, ok := text(v)
	if !ok {
		return nil, nil
	}
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return String(parts[0]), nil
	default:
		return String(parts[0]), String(parts[len(parts)-1])
	}
}

// TimelineWeeks converts a purchase timeline into a lower-bound week count.
// Numeric input is taken as a week count already.
func TimelineWeeks(v any) *int {
	if n, ok := number(v); ok {
		w, ok := toInt64(n)
		if !ok {
			return nil
		}
		weeks := int(w)
		return &weeks
	}
	s, ok := text(v)
	if !ok {
		return nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	for _, p := range timelinePhrases {
		if strings.Contains(s, p.phrase) {
			w := p.weeks
			return &w
		}
	}

	lower, ok := minInt(s)
	if !ok {
		return nil
	}
	for _, u := range timelineUnits {
		if strings.Contains(s, u.keyword) {
			w := u.toWeeks(lower)
			return &w
		}
	}
	return nil
}

// PredictionTimelineWeeks reads an extractor's buying_timeline_weeks. The
// value is already in weeks, so quoted numbers and bare ranges ("2", "3-5")
// without a unit keyword resolve to their smallest integer.
func PredictionTimelineWeeks(v any) *int {
	if w := TimelineWeeks(v); w != nil {
		return w
	}
	s, ok := text(v)
	if !ok {
		return nil
	}
	lower, ok := minInt(s)
	if !ok {
		return nil
	}
	return &lower
}

// CroreToRupees converts a crore amount to whole rupees.
func CroreToRupees(v any) *int64 {
	n, ok := number(v)
	if !ok {
		s, isText := v.(string)
		if !isText {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		n = f
	}
	r, ok := toInt64(n * CroreRupees)
	if !ok {
		return nil
	}
	return &r
}

// PredictionBudget truncates a numeric budget, or takes the smallest number
// found in free text. Unit words ("lakh", "crore") are not interpreted.
func PredictionBudget(v any) *int64 {
	if n, ok := number(v); ok {
		b, ok := toInt64(n)
		if !ok {
			return nil
		}
		return &b
	}
	s, ok := text(v)
	if !ok {
		return nil
	}
	var (
		lowest float64
		found  bool
	)
	for _, m := range decimalPattern.FindAllString(s, -1) {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		if !found || f < lowest {
			lowest, found = f, true
		}
	}
	if !found {
		return nil
	}
	b, ok := toInt64(lowest)
	if !ok {
		return nil
	}
	return &b
}

// Profession accepts only values from Professions.
func Profession(v any) *string {
	p := String(v)
	if p == nil || !Professions[*p] {
		return nil
	}
	return p
}

// VisitDate accepts a strict YYYY-MM-DD date falling in year.
func VisitDate(v any, year int) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(VisitDateLayout, strings.TrimSpace(s))
	if err != nil || t.Year() != year {
		return nil
	}
	out := t.Format(VisitDateLayout)
	return &out
}

// toInt64 truncates f, rejecting values an int64 cannot hold.
func toInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || f >= twoPow63 || f < -twoPow63 {
		return 0, false
	}
	return int64(f), true
}

func minInt(s string) (int, bool) {
	var (
		lowest int
		found  bool
	)
	for _, m := range intPattern.FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if !found || n < lowest {
			lowest, found = n, true
		}
	}
	return lowest, found
}

// number reports whether v is a JSON-style numeric value.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// text renders strings and scalars to a string; nil and composite values
// are rejected.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	}
	if n, ok := number(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
