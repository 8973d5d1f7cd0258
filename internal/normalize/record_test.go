package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-extract-eval/internal/types"
)

func TestGroundTruth(t *testing.T) {
	raw := types.RawRecord{
		"chat_id": "c1",
		"entities": map[string]any{
			"customer_name":     "Asha  Rao",
			"email":             "Asha.Rao@Mail.com",
			"phone":             "98765 43210",
			"budget_crore":      1.5,
			"current_location":  "Pune",
			"location":          "Baner",
			"purchase_timeline": "3-5 weeks",
			"profession":        "Salaried",
			"visit_date":        "2026-03-01",
		},
	}

	c := GroundTruth(raw, DefaultOptions())
	assert.Equal(t, "asha", c.Value(types.FieldFirstName))
	assert.Equal(t, "rao", c.Value(types.FieldLastName))
	assert.Equal(t, "asha.rao@mail.com", c.Value(types.FieldEmail))
	assert.Equal(t, "98765 43210", c.Value(types.FieldPhoneNumber))
	assert.Equal(t, int64(15000000), c.Value(types.FieldBudget))
	assert.Equal(t, "pune", c.Value(types.FieldCurrentLocation))
	assert.Equal(t, "baner", c.Value(types.FieldPreferredLocation))
	assert.Equal(t, 3, c.Value(types.FieldBuyingTimelineWeeks))
	assert.Equal(t, "salaried", c.Value(types.FieldProfession))
	assert.Equal(t, "2026-03-01", c.Value(types.FieldVisitDate))
}

func TestGroundTruth_BudgetIgnoresPriceMentioned(t *testing.T) {
	raw := types.RawRecord{"entities": map[string]any{"price_mentioned": 2.0}}
	c := GroundTruth(raw, DefaultOptions())
	assert.Nil(t, c.Budget)
}

func TestGroundTruth_MissingEntities(t *testing.T) {
	for _, raw := range []types.RawRecord{nil, {}, {"entities": "oops"}} {
		c := GroundTruth(raw, DefaultOptions())
		for _, f := range types.CanonicalFields {
			assert.Nil(t, c.Value(f), "field %s", f)
		}
	}
}

func TestPrediction(t *testing.T) {
	raw := types.RawRecord{
		"first_name":            "Asha",
		"last_name":             "Rao",
		"phone_number":          float64(9876543210),
		"budget":                "1-1.2 crore",
		"profession":            "doctor",
		"visit_date":            "2026-04-10",
		"buying_timeline_weeks": float64(2),
		"unexpected":            "ignored",
	}
	c := Prediction(raw, DefaultOptions())
	assert.Equal(t, "asha", c.Value(types.FieldFirstName))
	assert.Equal(t, "rao", c.Value(types.FieldLastName))
	assert.Equal(t, "9876543210", c.Value(types.FieldPhoneNumber))
	assert.Equal(t, int64(1), c.Value(types.FieldBudget))
	assert.Nil(t, c.Value(types.FieldProfession))
	assert.Equal(t, "2026-04-10", c.Value(types.FieldVisitDate))
	assert.Equal(t, 2, c.Value(types.FieldBuyingTimelineWeeks))
}

func TestPrediction_FullNameFallback(t *testing.T) {
	c := Prediction(types.RawRecord{"full_name": "Ravi Kumar Sharma", "phone": "12345"}, DefaultOptions())
	require.NotNil(t, c.FirstName)
	require.NotNil(t, c.LastName)
	assert.Equal(t, "ravi", *c.FirstName)
	assert.Equal(t, "sharma", *c.LastName)
	assert.Equal(t, "12345", c.Value(types.FieldPhoneNumber))
}

func TestPrediction_EmptyRecord(t *testing.T) {
	c := Prediction(types.RawRecord{}, DefaultOptions())
	assert.Equal(t, types.CanonicalRecord{}, c)
}

func TestOptions_TargetYear(t *testing.T) {
	raw := types.RawRecord{"visit_date": "2027-01-15"}
	assert.Nil(t, Prediction(raw, DefaultOptions()).VisitDate)
	assert.NotNil(t, Prediction(raw, Options{TargetYear: 2027}).VisitDate)
}

func TestPrediction_QuotedTimelineMatchesGroundTruth(t *testing.T) {
	opts := DefaultOptions()
	gt := GroundTruth(types.RawRecord{"entities": map[string]any{"purchase_timeline": "2 weeks"}}, opts)
	pred := Prediction(types.RawRecord{"buying_timeline_weeks": "2"}, opts)

	require.NotNil(t, gt.BuyingTimelineWeeks)
	require.NotNil(t, pred.BuyingTimelineWeeks)
	assert.Equal(t, gt.Value(types.FieldBuyingTimelineWeeks), pred.Value(types.FieldBuyingTimelineWeeks))

	ranged := Prediction(types.RawRecord{"buying_timeline_weeks": "3-5"}, opts)
	assert.Equal(t, 3, ranged.Value(types.FieldBuyingTimelineWeeks))
}
