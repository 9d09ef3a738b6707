package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

// AcuityAdapter books through the Acuity Scheduling REST API using each
// tenant's user id / API key pair as HTTP basic auth.
type AcuityAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewAcuityAdapter builds the adapter. baseURL points at the Acuity API root
// (overridden in tests), client may be nil for the default HTTP client.
func NewAcuityAdapter(baseURL string, client *http.Client, logger *logging.Logger) *AcuityAdapter {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AcuityAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

func (a *AcuityAdapter) Kind() ProviderKind { return ProviderAcuity }

type acuitySlot struct {
	Time string `json:"time"`
}

func (a *AcuityAdapter) do(ctx context.Context, creds tenants.AcuityCredentials, method, path string, query url.Values, body any, out any) error {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("scheduling: acuity request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("scheduling: acuity request: %w", err)
	}
	req.SetBasicAuth(creds.UserID, creds.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scheduling: acuity %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("scheduling: acuity %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("scheduling: acuity response: %w", err)
	}
	return nil
}

// slotsForDate lists available start times for one calendar date.
func (a *AcuityAdapter) slotsForDate(ctx context.Context, creds tenants.AcuityCredentials, date string) ([]time.Time, error) {
	query := url.Values{}
	query.Set("appointmentTypeID", creds.ServiceID)
	query.Set("date", date)
	var raw []acuitySlot
	if err := a.do(ctx, creds, http.MethodGet, "/availability/times", query, nil, &raw); err != nil {
		return nil, err
	}
	slots := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339, s.Time)
		if err != nil {
			a.logger.Warn("skipping unparseable acuity slot", "time", s.Time)
			continue
		}
		slots = append(slots, t)
	}
	return slots, nil
}

// FreeSlots delegates availability entirely to Acuity; the tenant's hour
// windows are enforced there, not here.
func (a *AcuityAdapter) FreeSlots(ctx context.Context, clientID string, cfg tenants.Config, day time.Time) ([]time.Time, error) {
	creds, err := tenants.AcuityFor(clientID)
	if err != nil {
		return nil, err
	}
	return a.slotsForDate(ctx, creds, day.Format("2006-01-02"))
}

// localMinutePrefix renders a time to second precision without the offset,
// the granularity at which Acuity slot membership is compared.
func localMinutePrefix(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// CheckSlot asks Acuity for the day's slots and accepts the request only if
// the exact start is among them. The first listed slot becomes the
// suggestion otherwise.
func (a *AcuityAdapter) CheckSlot(ctx context.Context, q SlotQuery) (*Conflict, error) {
	creds, err := tenants.AcuityFor(q.ClientID)
	if err != nil {
		return nil, err
	}
	slots, err := a.slotsForDate(ctx, creds, q.Start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	want := localMinutePrefix(q.Start)
	for _, s := range slots {
		if localMinutePrefix(s) == want {
			return nil, nil
		}
	}
	if len(slots) == 0 {
		return SlotConflict(nil), nil
	}
	suggested := slots[0]
	return SlotConflict(&suggested), nil
}

type acuityAppointment struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Datetime          string `json:"datetime"`
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	Notes             string `json:"notes,omitempty"`
}

type acuityConfirmation struct {
	ID               int64  `json:"id"`
	ConfirmationPage string `json:"confirmationPage"`
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// CreateEvent posts the appointment and returns Acuity's confirmation page
// link as the booking reference.
func (a *AcuityAdapter) CreateEvent(ctx context.Context, q SlotQuery, attendee Attendee) (Confirmation, error) {
	creds, err := tenants.AcuityFor(q.ClientID)
	if err != nil {
		return Confirmation{}, err
	}
	// Acuity expects appointmentTypeID as a number in the POST body, unlike
	// the query-string use on the availability endpoint.
	typeID, err := strconv.ParseInt(creds.ServiceID, 10, 64)
	if err != nil {
		return Confirmation{}, fmt.Errorf("scheduling: acuity service id %q: %w", creds.ServiceID, err)
	}
	first, last := splitName(attendee.Name)
	body := acuityAppointment{
		FirstName:         first,
		LastName:          last,
		Email:             attendee.Email,
		Datetime:          q.Start.Format(time.RFC3339),
		AppointmentTypeID: typeID,
		Notes:             attendee.Purpose,
	}
	var conf acuityConfirmation
	if err := a.do(ctx, creds, http.MethodPost, "/appointments", nil, body, &conf); err != nil {
		return Confirmation{}, err
	}
	a.logger.Info("acuity appointment created",
		"client_id", q.ClientID,
		"appointment_id", conf.ID,
		"start", q.Start.Format(time.RFC3339))
	return Confirmation{Ref: conf.ConfirmationPage, Start: q.Start, End: q.End()}, nil
}
