package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleAdapter books against Google Calendar using each tenant's OAuth
// refresh token. Created events carry a Google Meet conference link and
// notify attendees by email.
type GoogleAdapter struct {
	oauth  *oauth2.Config
	logger *logging.Logger

	// endpoint overrides the Calendar API base URL in tests.
	endpoint string
}

// NewGoogleAdapter builds the adapter from the application's OAuth client
// credentials. Per-tenant tokens are resolved on each call.
func NewGoogleAdapter(clientID, clientSecret string, logger *logging.Logger) *GoogleAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &GoogleAdapter{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		},
		logger: logger,
	}
}

func (a *GoogleAdapter) Kind() ProviderKind { return ProviderGoogle }

// serviceFor builds a Calendar client for the tenant. The token source
// refreshes the access token transparently when it expires.
func (a *GoogleAdapter) serviceFor(ctx context.Context, clientID string) (*calendar.Service, string, error) {
	tok, err := tenants.GoogleTokenFor(clientID)
	if err != nil {
		return nil, "", fmt.Errorf("scheduling: google credentials for %s: %w", clientID, err)
	}
	src := a.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	})
	opts := []option.ClientOption{option.WithTokenSource(src)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("scheduling: google calendar client: %w", err)
	}
	return svc, tok.CalendarID, nil
}

func (a *GoogleAdapter) queryBusy(ctx context.Context, svc *calendar.Service, calendarID, tz string, from, to time.Time) ([]Interval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin:  from.Format(time.RFC3339),
		TimeMax:  to.Format(time.RFC3339),
		TimeZone: tz,
		Items:    []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}
	resp, err := svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("scheduling: google freebusy: %w", err)
	}
	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	intervals := make([]Interval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return intervals, nil
}

// FreeSlots lists bookable starts within the tenant's hours for the day.
func (a *GoogleAdapter) FreeSlots(ctx context.Context, clientID string, cfg tenants.Config, day time.Time) ([]time.Time, error) {
	windowStart, windowEnd, ok := dayWindow(cfg, day)
	if !ok {
		return nil, nil
	}
	svc, calendarID, err := a.serviceFor(ctx, clientID)
	if err != nil {
		return nil, err
	}
	busy, err := a.queryBusy(ctx, svc, calendarID, cfg.Timezone, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return GenerateSlots(windowStart, windowEnd, cfg.Duration(), busy), nil
}

// BusyIntervals exposes the raw freebusy response for diagnostics.
func (a *GoogleAdapter) BusyIntervals(ctx context.Context, clientID string, from, to time.Time) ([]Interval, error) {
	svc, calendarID, err := a.serviceFor(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return a.queryBusy(ctx, svc, calendarID, from.Location().String(), from, to)
}

// CheckSlot queries freebusy for the exact requested window and, when it is
// taken, runs the bounded forward search for an alternative.
func (a *GoogleAdapter) CheckSlot(ctx context.Context, q SlotQuery) (*Conflict, error) {
	svc, calendarID, err := a.serviceFor(ctx, q.ClientID)
	if err != nil {
		return nil, err
	}
	busy, err := a.queryBusy(ctx, svc, calendarID, q.Timezone, q.Start, q.End())
	if err != nil {
		return nil, err
	}
	if !Overlaps(busy, q.Start, q.End()) {
		return nil, nil
	}
	suggested, err := NextFree(ctx, func(ctx context.Context, from, to time.Time) ([]Interval, error) {
		return a.queryBusy(ctx, svc, calendarID, q.Timezone, from, to)
	}, q.Start)
	if err != nil {
		return nil, err
	}
	return SlotConflict(suggested), nil
}

// CreateEvent inserts the calendar event with a Meet link and emails the
// attendee through Google's own invitation flow.
func (a *GoogleAdapter) CreateEvent(ctx context.Context, q SlotQuery, attendee Attendee) (Confirmation, error) {
	svc, calendarID, err := a.serviceFor(ctx, q.ClientID)
	if err != nil {
		return Confirmation{}, err
	}
	event := &calendar.Event{
		Summary:     fmt.Sprintf("Meeting with %s", attendee.Name),
		Description: fmt.Sprintf("Purpose: %s", attendee.Purpose),
		Start:       &calendar.EventDateTime{DateTime: q.Start.Format(time.RFC3339), TimeZone: q.Timezone},
		End:         &calendar.EventDateTime{DateTime: q.End().Format(time.RFC3339), TimeZone: q.Timezone},
		Attendees:   []*calendar.EventAttendee{{Email: attendee.Email}},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}
	created, err := svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return Confirmation{}, fmt.Errorf("scheduling: google event insert: %w", err)
	}
	ref := created.HtmlLink
	if created.ConferenceData != nil && len(created.ConferenceData.EntryPoints) > 0 {
		ref = created.ConferenceData.EntryPoints[0].Uri
	}
	a.logger.Info("google event created",
		"client_id", q.ClientID,
		"event_id", created.Id,
		"start", q.Start.Format(time.RFC3339))
	return Confirmation{Ref: ref, Start: q.Start, End: q.End()}, nil
}
