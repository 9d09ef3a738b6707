package scheduling

import "time"

// Conflict messages shown to the widget. Wording is load-bearing: the widget
// matches on it.
const (
	msgOutsideHours      = "The selected time is outside available hours. Please choose a valid time."
	msgUnavailable       = "The selected time is not available."
	msgUnavailableNoAlt  = "The selected time is not available. Please choose another."
)

// Conflict is a policy violation: the requested slot cannot be booked, with
// an optional alternative found by the bounded forward search. It is not a
// provider failure.
type Conflict struct {
	Reason    string     `json:"error"`
	Suggested *time.Time `json:"suggested,omitempty"`
}

func (c *Conflict) Error() string {
	return "scheduling: " + c.Reason
}

// HoursConflict reports a request outside the tenant's operating hours.
func HoursConflict() *Conflict {
	return &Conflict{Reason: msgOutsideHours}
}

// SlotConflict reports an occupied slot, with a suggestion when one was found.
func SlotConflict(suggested *time.Time) *Conflict {
	if suggested == nil {
		return &Conflict{Reason: msgUnavailableNoAlt}
	}
	return &Conflict{Reason: msgUnavailable, Suggested: suggested}
}
