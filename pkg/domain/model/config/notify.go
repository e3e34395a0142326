package config

// NotifyConfig controls which recordings are posted and how messages look
type NotifyConfig struct {
	// ShowEveryone allows recordings visible to the whole CRM account
	ShowEveryone bool
	// Groups is the set of CRM group IDs whose recordings are posted
	Groups []int64

	// Username and IconURL override the webhook sender identity
	Username string
	IconURL  string

	// MaxChars and MaxLines bound the attachment text. Zero disables the
	// respective limit; both default to zero (no truncation).
	MaxChars int
	MaxLines int
}

// GroupVisible reports whether the given CRM group ID is configured for posting
func (c *NotifyConfig) GroupVisible(id int64) bool {
	for _, g := range c.Groups {
		if g == id {
			return true
		}
	}
	return false
}
