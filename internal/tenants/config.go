package tenants

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMeetingDuration is used when a tenant config does not set one.
const DefaultMeetingDuration = 40 * time.Minute

// HourRange is a tenant's (start, end) local-time availability window for one
// weekday. Stored in config JSON as a two-element array: ["09:00", "17:00"].
type HourRange struct {
	Start string
	End   string
}

// UnmarshalJSON accepts the widget config's two-element array form.
func (h *HourRange) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("tenants: available hours entry must have 2 elements, got %d", len(pair))
	}
	h.Start, h.End = pair[0], pair[1]
	return nil
}

// MarshalJSON renders the array form consumed by the widget.
func (h HourRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.Start, h.End})
}

// Config is one tenant's chatbot and booking configuration.
//
// A zero-value Config is valid and means "tenant unknown / nothing
// configured": no display name, no available hours, default duration.
type Config struct {
	ChatbotName     string               `json:"chatbotName"`
	BookingProvider string               `json:"bookingProvider"`
	MeetingDuration int                  `json:"meetingDuration"` // minutes
	AvailableHours  map[string]HourRange `json:"availableHours"`
	Timezone        string               `json:"timezone"`
}

// DisplayName returns the configured chatbot name or a generic fallback.
func (c Config) DisplayName() string {
	if c.ChatbotName == "" {
		return "Chatbot"
	}
	return c.ChatbotName
}

// Duration returns the meeting duration, defaulting when unset.
func (c Config) Duration() time.Duration {
	if c.MeetingDuration <= 0 {
		return DefaultMeetingDuration
	}
	return time.Duration(c.MeetingDuration) * time.Minute
}

// Location resolves the tenant timezone, falling back to UTC when the
// timezone is empty or invalid.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HoursFor looks up the availability window for a weekday ("monday"..."sunday").
func (c Config) HoursFor(weekday string) (HourRange, bool) {
	h, ok := c.AvailableHours[strings.ToLower(weekday)]
	return h, ok
}

// WithinHours reports whether t (already in the tenant's timezone) falls
// inside the configured window for its weekday. The check is on time of day
// only and is inclusive of both boundaries. Days with no configured window
// are never within hours.
func (c Config) WithinHours(t time.Time) bool {
	h, ok := c.HoursFor(t.Weekday().String())
	if !ok {
		return false
	}
	start, err := MinutesOfDay(h.Start)
	if err != nil {
		return false
	}
	end, err := MinutesOfDay(h.End)
	if err != nil {
		return false
	}
	tod := t.Hour()*60 + t.Minute()
	return start <= tod && tod <= end
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("tenants: invalid time of day %q", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("tenants: invalid hour in %q", s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("tenants: invalid minute in %q", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("tenants: time of day %q out of range", s)
	}
	return hh*60 + mm, nil
}
