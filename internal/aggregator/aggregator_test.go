package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lead-extract-eval/internal/types"
)

func result(matches ...bool) types.ComparisonResult {
	out := types.ComparisonResult{}
	for i, m := range matches {
		out = append(out, types.FieldMatch{Field: types.CanonicalFields[i], Match: m})
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0.0, s.Accuracy)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Conversations)
	assert.Empty(t, s.Fields)
}

func TestAggregate_Accuracy(t *testing.T) {
	s := Aggregate([]types.ComparisonResult{
		result(true, true, false),
		result(true, false, false),
	})
	assert.Equal(t, 2, s.Conversations)
	assert.Equal(t, 3, s.Correct)
	assert.Equal(t, 3, s.Incorrect)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 0.5, s.Accuracy)

	first := s.Fields[types.FieldFirstName]
	assert.Equal(t, 2, first.Correct)
	assert.Equal(t, 1.0, first.Accuracy)
	assert.Equal(t, 0.5, s.Fields[types.FieldLastName].Accuracy)
	assert.Equal(t, 0.0, s.Fields[types.FieldPhoneNumber].Accuracy)
}

func TestAccumulator_RoundsToFourPlaces(t *testing.T) {
	a := NewAccumulator()
	a.Add(result(true, false, false))
	assert.Equal(t, 0.3333, a.Summary().Accuracy)
}

func TestAccumulator_Skip(t *testing.T) {
	a := NewAccumulator()
	a.Skip()
	a.Add(result(true))
	s := a.Summary()
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Conversations)
	assert.Equal(t, 1.0, s.Accuracy)
}
