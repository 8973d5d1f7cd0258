package types

// Canonical field names, in the order they are compared and reported.
const (
	FieldFirstName           = "first_name"
	FieldLastName            = "last_name"
	FieldPhoneNumber         = "phone_number"
	FieldEmail               = "email"
	FieldBudget              = "budget"
	FieldCurrentLocation     = "current_location"
	FieldPreferredLocation   = "preferred_location"
	FieldProfession          = "profession"
	FieldVisitDate           = "visit_date"
	FieldBuyingTimelineWeeks = "buying_timeline_weeks"
)

// CanonicalFields lists every field of a CanonicalRecord.
var CanonicalFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldPhoneNumber,
	FieldEmail,
	FieldBudget,
	FieldCurrentLocation,
	FieldPreferredLocation,
	FieldProfession,
	FieldVisitDate,
	FieldBuyingTimelineWeeks,
}

// CanonicalRecord is the normalized, fixed-shape form of either a
// prediction or a ground-truth record. A nil field means "no value".
type CanonicalRecord struct {
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	PhoneNumber         *string `json:"phone_number"`
	Email               *string `json:"email"`
	Budget              *int64  `json:"budget"`
	CurrentLocation     *string `json:"current_location"`
	PreferredLocation   *string `json:"preferred_location"`
	Profession          *string `json:"profession"`
	VisitDate           *string `json:"visit_date"`
	BuyingTimelineWeeks *int    `json:"buying_timeline_weeks"`
}

// Value returns the dereferenced value of a canonical field, or nil when the
// field is unset or unknown. Returned values are comparable with ==.
func (c CanonicalRecord) Value(field string) any {
	switch field {
	case FieldFirstName:
		return deref(c.FirstName)
	case FieldLastName:
		return deref(c.LastName)
	case FieldPhoneNumber:
		return deref(c.PhoneNumber)
	case FieldEmail:
		return deref(c.Email)
	case FieldBudget:
		return deref(c.Budget)
	case FieldCurrentLocation:
		return deref(c.CurrentLocation)
	case FieldPreferredLocation:
		return deref(c.PreferredLocation)
	case FieldProfession:
		return deref(c.Profession)
	case FieldVisitDate:
		return deref(c.VisitDate)
	case FieldBuyingTimelineWeeks:
		return deref(c.BuyingTimelineWeeks)
	}
	return nil
}

// Values returns every canonical field keyed by name.
func (c CanonicalRecord) Values() map[string]any {
	out := make(map[string]any, len(CanonicalFields))
	for _, f := range CanonicalFields {
		out[f] = c.Value(f)
	}
	return out
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// FieldMatch is the outcome for a single canonical field.
type FieldMatch struct {
	Field string `json:"field"`
	Match bool   `json:"match"`
}

// ComparisonResult holds per-field matches for one conversation, in
// canonical field order.
type ComparisonResult []FieldMatch

// Correct counts matching fields.
func (r ComparisonResult) Correct() int {
	n := 0
	for _, m := range r {
		if m.Match {
			n++
		}
	}
	return n
}

// AsMap returns the result as field -> match.
func (r ComparisonResult) AsMap() map[string]bool {
	out := make(map[string]bool, len(r))
	for _, m := range r {
		out[m.Field] = m.Match
	}
	return out
}
