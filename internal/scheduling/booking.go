package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/247convo/convo-backend/internal/observability/metrics"
	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

var bookingTracer = otel.Tracer("convo/scheduling")

// Notifier sends the booking confirmation email for providers that do not
// email attendees themselves.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to, name string, conf Confirmation) error
}

// BookingRequest is a validated request to book one appointment.
type BookingRequest struct {
	ClientID string
	Name     string
	Email    string
	Purpose  string
	Start    time.Time
	Timezone string
	Provider string // optional override of the tenant default
}

// Orchestrator applies tenant policy (operating hours, provider selection)
// and drives the selected adapter. Config is re-read from the store on every
// call so tenant edits take effect immediately.
type Orchestrator struct {
	store    tenants.Store
	adapters map[ProviderKind]Adapter
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
}

// NewOrchestrator wires the adapters. store and at least one adapter are
// required; notifier and metrics may be nil.
func NewOrchestrator(store tenants.Store, adapters []Adapter, notifier Notifier, logger *logging.Logger, m *metrics.BookingMetrics) *Orchestrator {
	if store == nil {
		panic("scheduling: tenant store is required")
	}
	if len(adapters) == 0 {
		panic("scheduling: at least one provider adapter is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	byKind := make(map[ProviderKind]Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &Orchestrator{
		store:    store,
		adapters: byKind,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

func (o *Orchestrator) adapterFor(override, tenantDefault string) (Adapter, error) {
	kind, err := ResolveProvider(override, tenantDefault)
	if err != nil {
		return nil, err
	}
	adapter, ok := o.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("scheduling: provider %s is not configured", kind)
	}
	return adapter, nil
}

// Book validates the requested slot against tenant hours and the provider's
// calendar, then creates the event. A *Conflict error means the slot was
// rejected; any other error is a provider or configuration failure.
func (o *Orchestrator) Book(ctx context.Context, req BookingRequest) (Confirmation, error) {
	ctx, span := bookingTracer.Start(ctx, "scheduling.book",
		trace.WithAttributes(attribute.String("client_id", req.ClientID)))
	defer span.End()

	cfg, err := o.store.Get(ctx, req.ClientID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("scheduling: tenant config: %w", err)
	}
	adapter, err := o.adapterFor(req.Provider, cfg.BookingProvider)
	if err != nil {
		return Confirmation{}, err
	}
	span.SetAttributes(attribute.String("provider", string(adapter.Kind())))

	loc := cfg.Location()
	if req.Timezone != "" {
		if reqLoc, locErr := time.LoadLocation(req.Timezone); locErr == nil {
			loc = reqLoc
		}
	}
	start := req.Start.In(loc)

	// Hours are checked before any provider traffic: out-of-hours requests
	// never reach the calendar API.
	if !cfg.WithinHours(start) {
		o.metrics.ObserveBooking(string(adapter.Kind()), "rejected_hours")
		return Confirmation{}, HoursConflict()
	}

	q := SlotQuery{ClientID: req.ClientID, Config: cfg, Start: start, Timezone: req.Timezone}

	checkStart := time.Now()
	conflict, err := adapter.CheckSlot(ctx, q)
	o.metrics.ObserveProviderLatency(string(adapter.Kind()), "check_slot", time.Since(checkStart).Seconds())
	if err != nil {
		o.metrics.ObserveBooking(string(adapter.Kind()), "error")
		return Confirmation{}, err
	}
	if conflict != nil {
		o.metrics.ObserveBooking(string(adapter.Kind()), "rejected_conflict")
		return Confirmation{}, conflict
	}

	createStart := time.Now()
	conf, err := adapter.CreateEvent(ctx, q, Attendee{Name: req.Name, Email: req.Email, Purpose: req.Purpose})
	o.metrics.ObserveProviderLatency(string(adapter.Kind()), "create_event", time.Since(createStart).Seconds())
	if err != nil {
		o.metrics.ObserveBooking(string(adapter.Kind()), "error")
		return Confirmation{}, err
	}
	o.metrics.ObserveBooking(string(adapter.Kind()), "created")

	// Google invites the attendee itself; other providers get our email.
	if o.notifier != nil && adapter.Kind() != ProviderGoogle {
		if err := o.notifier.SendBookingConfirmation(ctx, req.Email, req.Name, conf); err != nil {
			o.logger.Warn("booking confirmation email failed",
				"client_id", req.ClientID, "error", err)
		}
	}

	o.logger.Info("booking created",
		"client_id", req.ClientID,
		"provider", string(adapter.Kind()),
		"start", conf.Start.Format(time.RFC3339))
	return conf, nil
}

// Availability lists bookable start times for a calendar day using the
// tenant's default provider.
func (o *Orchestrator) Availability(ctx context.Context, clientID, date string) ([]time.Time, error) {
	ctx, span := bookingTracer.Start(ctx, "scheduling.availability",
		trace.WithAttributes(attribute.String("client_id", clientID)))
	defer span.End()

	cfg, err := o.store.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: tenant config: %w", err)
	}
	adapter, err := o.adapterFor("", cfg.BookingProvider)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("scheduling: invalid date %q, want YYYY-MM-DD", date)
	}
	listStart := time.Now()
	slots, err := adapter.FreeSlots(ctx, clientID, cfg, day)
	o.metrics.ObserveProviderLatency(string(adapter.Kind()), "free_slots", time.Since(listStart).Seconds())
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Busy exposes the raw busy intervals for a day when the tenant's provider
// reports them. A provider without busy reporting is an error, not an empty
// list.
func (o *Orchestrator) Busy(ctx context.Context, clientID, date string) ([]Interval, error) {
	cfg, err := o.store.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: tenant config: %w", err)
	}
	adapter, err := o.adapterFor("", cfg.BookingProvider)
	if err != nil {
		return nil, err
	}
	reporter, ok := adapter.(BusyReporter)
	if !ok {
		return nil, fmt.Errorf("scheduling: provider %s does not report busy intervals", adapter.Kind())
	}
	loc := cfg.Location()
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("scheduling: invalid date %q, want YYYY-MM-DD", date)
	}
	return reporter.BusyIntervals(ctx, clientID, day, day.AddDate(0, 0, 1))
}
