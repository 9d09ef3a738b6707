package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/247convo/convo-backend/internal/tenants"
)

type staticStore struct {
	cfg tenants.Config
}

func (s staticStore) Get(context.Context, string) (tenants.Config, error) { return s.cfg, nil }
func (s staticStore) Raw(context.Context, string) ([]byte, error) {
	return nil, tenants.ErrNotFound
}

type fakeAdapter struct {
	kind        ProviderKind
	conflict    *Conflict
	checkErr    error
	created     Confirmation
	createErr   error
	slots       []time.Time
	checkCalls  int
	createCalls int
	slotCalls   int
}

func (f *fakeAdapter) Kind() ProviderKind { return f.kind }

func (f *fakeAdapter) FreeSlots(context.Context, string, tenants.Config, time.Time) ([]time.Time, error) {
	f.slotCalls++
	return f.slots, nil
}

func (f *fakeAdapter) CheckSlot(context.Context, SlotQuery) (*Conflict, error) {
	f.checkCalls++
	return f.conflict, f.checkErr
}

func (f *fakeAdapter) CreateEvent(_ context.Context, q SlotQuery, _ Attendee) (Confirmation, error) {
	f.createCalls++
	if f.createErr != nil {
		return Confirmation{}, f.createErr
	}
	c := f.created
	c.Start, c.End = q.Start, q.End()
	return c, nil
}

type recordingNotifier struct {
	calls int
	to    string
	err   error
}

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, to, _ string, _ Confirmation) error {
	n.calls++
	n.to = to
	return n.err
}

func mondayConfig(provider string) tenants.Config {
	return tenants.Config{
		BookingProvider: provider,
		MeetingDuration: 30,
		Timezone:        "UTC",
		AvailableHours: map[string]tenants.HourRange{
			"monday": {Start: "09:00", End: "17:00"},
		},
	}
}

func bookingReq(start time.Time) BookingRequest {
	return BookingRequest{
		ClientID: "acme",
		Name:     "Pat Doe",
		Email:    "pat@example.com",
		Purpose:  "demo",
		Start:    start,
		Timezone: "UTC",
	}
}

func TestBookRejectsOutsideHoursBeforeProviderCall(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	// 20:00 on a configured Monday is past closing.
	_, err := o.Book(context.Background(), bookingReq(at(20, 0)))

	var conflict *Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "outside available hours")
	assert.Zero(t, adapter.checkCalls, "provider must not be contacted for out-of-hours requests")
	assert.Zero(t, adapter.createCalls)
}

func TestBookRejectsUnconfiguredWeekday(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	sunday := time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)
	_, err := o.Book(context.Background(), bookingReq(sunday))

	var conflict *Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Zero(t, adapter.checkCalls)
}

func TestBookSurfacesSlotConflictWithSuggestion(t *testing.T) {
	suggested := at(11, 30)
	adapter := &fakeAdapter{kind: ProviderGoogle, conflict: SlotConflict(&suggested)}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	_, err := o.Book(context.Background(), bookingReq(at(10, 0)))

	var conflict *Conflict
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Suggested)
	assert.Equal(t, suggested, *conflict.Suggested)
	assert.Zero(t, adapter.createCalls, "a conflicted slot must not be booked")
}

func TestBookCreatesEventAndSkipsEmailForGoogle(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle, created: Confirmation{Ref: "https://meet.google.com/abc"}}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, notifier, nil, nil)

	conf, err := o.Book(context.Background(), bookingReq(at(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc", conf.Ref)
	assert.Equal(t, at(10, 0), conf.Start)
	assert.Equal(t, at(10, 30), conf.End)
	assert.Zero(t, notifier.calls, "Google invites attendees itself")
}

func TestBookEmailsConfirmationForAcuity(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderAcuity, created: Confirmation{Ref: "https://acuity.example/confirm/1"}}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("acuity")}, []Adapter{adapter}, notifier, nil, nil)

	_, err := o.Book(context.Background(), bookingReq(at(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "pat@example.com", notifier.to)
}

func TestBookSucceedsWhenConfirmationEmailFails(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderAcuity, created: Confirmation{Ref: "ref"}}
	notifier := &recordingNotifier{err: errors.New("sendgrid down")}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("acuity")}, []Adapter{adapter}, notifier, nil, nil)

	conf, err := o.Book(context.Background(), bookingReq(at(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, "ref", conf.Ref)
}

func TestBookPropagatesProviderFailure(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle, checkErr: errors.New("freebusy 500")}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	_, err := o.Book(context.Background(), bookingReq(at(10, 0)))
	require.Error(t, err)
	var conflict *Conflict
	assert.False(t, errors.As(err, &conflict), "provider failures are not conflicts")
}

func TestBookHonorsProviderOverride(t *testing.T) {
	google := &fakeAdapter{kind: ProviderGoogle}
	acuity := &fakeAdapter{kind: ProviderAcuity, created: Confirmation{Ref: "ref"}}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{google, acuity}, nil, nil, nil)

	req := bookingReq(at(10, 0))
	req.Provider = "acuity"
	_, err := o.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, google.checkCalls)
	assert.Equal(t, 1, acuity.createCalls)
}

func TestBookUnknownProvider(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	req := bookingReq(at(10, 0))
	req.Provider = "calendly"
	_, err := o.Book(context.Background(), req)
	assert.Error(t, err)
}

func TestAvailabilityListsSlots(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle, slots: []time.Time{at(9, 0), at(9, 30)}}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	slots, err := o.Availability(context.Background(), "acme", "2025-08-04")
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 1, adapter.slotCalls)
}

func TestAvailabilityRejectsBadDate(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderGoogle}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("google")}, []Adapter{adapter}, nil, nil, nil)

	_, err := o.Availability(context.Background(), "acme", "08/04/2025")
	assert.Error(t, err)
	assert.Zero(t, adapter.slotCalls)
}

func TestBusyRequiresReportingProvider(t *testing.T) {
	adapter := &fakeAdapter{kind: ProviderAcuity}
	o := NewOrchestrator(staticStore{cfg: mondayConfig("acuity")}, []Adapter{adapter}, nil, nil, nil)

	_, err := o.Busy(context.Background(), "acme", "2025-08-04")
	assert.Error(t, err)
}
