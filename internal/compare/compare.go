// Package compare scores a canonical prediction against canonical ground truth.
package compare

import "lead-extract-eval/internal/types"

// FieldHook is called once per compared field.
type FieldHook func(field string, predicted, expected any, match bool)

// Comparator compares canonical records field by field. The zero value is
// ready to use.
type Comparator struct {
	OnField FieldHook
}

// Compare runs a Comparator without a hook.
func Compare(pred, gt types.CanonicalRecord) types.ComparisonResult {
	return Comparator{}.Compare(pred, gt)
}

// Compare walks the ground-truth field set and records exact equality.
// Two nil values count as a match.
func (c Comparator) Compare(pred, gt types.CanonicalRecord) types.ComparisonResult {
	out := make(types.ComparisonResult, 0, len(types.CanonicalFields))
	for _, field := range types.CanonicalFields {
		want := gt.Value(field)
		got := pred.Value(field)
		match := got == want
		if c.OnField != nil {
			c.OnField(field, got, want, match)
		}
		out = append(out, types.FieldMatch{Field: field, Match: match})
	}
	return out
}
