package normalize

import "lead-extract-eval/internal/types"

// DefaultTargetYear is the year every ground-truth visit date falls in.
const DefaultTargetYear = 2026

// Options tunes record normalization.
type Options struct {
	// TargetYear filters visit dates; anything outside it becomes nil.
	TargetYear int
}

// DefaultOptions returns the options used by the evaluation dataset.
func DefaultOptions() Options {
	return Options{TargetYear: DefaultTargetYear}
}

func (o Options) year() int {
	if o.TargetYear == 0 {
		return DefaultTargetYear
	}
	return o.TargetYear
}

// Prediction normalizes an extractor output record.
func Prediction(raw types.RawRecord, opts Options) types.CanonicalRecord {
	first, last := String(raw.Get("first_name")), String(raw.Get("last_name"))
	if first == nil && last == nil {
		for _, key := range []string{"full_name", "name", "customer_name"} {
			if raw.Has(key) {
				first, last = SplitName(raw.Get(key))
				break
			}
		}
	}

	phone := raw.Get("phone_number")
	if phone == nil {
		phone = raw.Get("phone")
	}

	return types.CanonicalRecord{
		FirstName:           first,
		LastName:            last,
		PhoneNumber:         String(phone),
		Email:               String(raw.Get("email")),
		Budget:              PredictionBudget(raw.Get("budget")),
		CurrentLocation:     String(raw.Get("current_location")),
		PreferredLocation:   String(raw.Get("preferred_location")),
		Profession:          Profession(raw.Get("profession")),
		VisitDate:           VisitDate(raw.Get("visit_date"), opts.year()),
		BuyingTimelineWeeks: PredictionTimelineWeeks(raw.Get("buying_timeline_weeks")),
	}
}

// GroundTruth normalizes a labelled record. Fields are read from its
// "entities" mapping; the budget comes from budget_crore only.
func GroundTruth(raw types.RawRecord, opts Options) types.CanonicalRecord {
	e := raw.Entities()
	first, last := SplitName(e.Get("customer_name"))

	return types.CanonicalRecord{
		FirstName:           first,
		LastName:            last,
		PhoneNumber:         String(e.Get("phone")),
		Email:               String(e.Get("email")),
		Budget:              CroreToRupees(e.Get("budget_crore")),
		CurrentLocation:     String(e.Get("current_location")),
		PreferredLocation:   String(e.Get("location")),
		Profession:          Profession(e.Get("profession")),
		VisitDate:           VisitDate(e.Get("visit_date"), opts.year()),
		BuyingTimelineWeeks: TimelineWeeks(e.Get("purchase_timeline")),
	}
}
