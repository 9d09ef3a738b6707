// Package scheduling reconciles requested appointment times against a
// tenant's operating hours and its scheduling provider's calendar, and
// creates the provider event once a slot is confirmed free.
package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/247convo/convo-backend/internal/tenants"
)

// ProviderKind is the closed set of supported scheduling providers.
type ProviderKind string

const (
	ProviderGoogle ProviderKind = "google"
	ProviderAcuity ProviderKind = "acuity"
)

// ResolveProvider picks the provider: explicit request override first, then
// the tenant default, then Google.
func ResolveProvider(override, tenantDefault string) (ProviderKind, error) {
	name := strings.ToLower(strings.TrimSpace(override))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(tenantDefault))
	}
	switch name {
	case "", string(ProviderGoogle):
		return ProviderGoogle, nil
	case string(ProviderAcuity):
		return ProviderAcuity, nil
	default:
		return "", fmt.Errorf("scheduling: unknown booking provider %q", name)
	}
}

// Interval is a provider-reported busy span.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Attendee identifies who the appointment is for.
type Attendee struct {
	Name    string
	Email   string
	Purpose string
}

// SlotQuery carries everything an adapter needs to check or book one slot.
type SlotQuery struct {
	ClientID string
	Config   tenants.Config
	Start    time.Time
	Timezone string
}

// End returns the slot end using the tenant's meeting duration.
func (q SlotQuery) End() time.Time {
	return q.Start.Add(q.Config.Duration())
}

// Confirmation is the normalized result of a created event.
type Confirmation struct {
	Ref   string    `json:"confirmationRef"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Adapter is implemented once per provider. The orchestrator selects an
// adapter by kind and treats all of them uniformly.
type Adapter interface {
	Kind() ProviderKind

	// FreeSlots lists available start times for the day (midnight in the
	// tenant's timezone). Days without configured hours yield no slots.
	FreeSlots(ctx context.Context, clientID string, cfg tenants.Config, day time.Time) ([]time.Time, error)

	// CheckSlot verifies the requested slot. A non-nil *Conflict means the
	// slot is taken; the error return is for provider failures only.
	CheckSlot(ctx context.Context, q SlotQuery) (*Conflict, error)

	// CreateEvent books the slot and returns the confirmation reference.
	CreateEvent(ctx context.Context, q SlotQuery, attendee Attendee) (Confirmation, error)
}

// BusyReporter is implemented by adapters that can expose raw busy
// intervals (diagnostics endpoint).
type BusyReporter interface {
	BusyIntervals(ctx context.Context, clientID string, from, to time.Time) ([]Interval, error)
}
