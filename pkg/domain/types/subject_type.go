package types

// SubjectType represents the kind of CRM entity a recording is about
type SubjectType string

const (
	SubjectTypeParty SubjectType = "Party"
	SubjectTypeDeal  SubjectType = "Deal"
	SubjectTypeKase  SubjectType = "Kase"
)

// Collection returns the CRM collection path used to fetch the subject.
// Unrecognized subject types resolve to "people" on purpose: the CRM reports
// some party-ish records with vendor-specific type names, and people is the
// only collection with a companies fallback.
func (t SubjectType) Collection() string {
	switch t {
	case SubjectTypeParty:
		return "people"
	case SubjectTypeDeal:
		return "deals"
	case SubjectTypeKase:
		return "kases"
	default:
		return "people"
	}
}

// String returns the string representation of the subject type
func (t SubjectType) String() string {
	return string(t)
}
