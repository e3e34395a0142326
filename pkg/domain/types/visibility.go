package types

// Visibility represents who can see a recording in the CRM
type Visibility string

const (
	VisibilityEveryone   Visibility = "Everyone"
	VisibilityOwner      Visibility = "Owner"
	VisibilityNamedGroup Visibility = "NamedGroup"
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	return string(v)
}
