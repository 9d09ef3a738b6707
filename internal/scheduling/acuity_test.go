package scheduling

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/247convo/convo-backend/internal/tenants"
)

func setAcuityEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACUITY_USER_ID_ACME", "12345")
	t.Setenv("ACUITY_API_KEY_ACME", "secret")
	t.Setenv("ACUITY_SERVICE_ID_ACME", "777")
}

func acuityServer(t *testing.T, slots []string, appointments *[]acuityAppointment) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		require.True(t, ok, "missing basic auth")
		require.Equal(t, "12345", user)
		require.Equal(t, "secret", key)

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/availability/times":
			assert.Equal(t, "777", r.URL.Query().Get("appointmentTypeID"))
			out := make([]acuitySlot, len(slots))
			for i, s := range slots {
				out[i] = acuitySlot{Time: s}
			}
			json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodPost && r.URL.Path == "/appointments":
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(raw, &fields))
			assert.IsType(t, float64(0), fields["appointmentTypeID"],
				"appointmentTypeID must be sent as a JSON number")
			var appt acuityAppointment
			require.NoError(t, json.Unmarshal(raw, &appt))
			if appointments != nil {
				*appointments = append(*appointments, appt)
			}
			json.NewEncoder(w).Encode(acuityConfirmation{
				ID:               42,
				ConfirmationPage: "https://acuity.example/confirmation/42",
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func acuityQuery(start time.Time) SlotQuery {
	return SlotQuery{
		ClientID: "acme",
		Config:   mondayConfig("acuity"),
		Start:    start,
		Timezone: "UTC",
	}
}

func TestAcuityFreeSlots(t *testing.T) {
	setAcuityEnv(t)
	srv := acuityServer(t, []string{"2025-08-04T10:00:00+00:00", "2025-08-04T10:30:00+00:00", "bogus"}, nil)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	slots, err := a.FreeSlots(context.Background(), "acme", mondayConfig("acuity"), at(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 2, "unparseable slots are skipped")
	assert.True(t, slots[0].Equal(at(10, 0)))
}

func TestAcuityCheckSlotAcceptsListedTime(t *testing.T) {
	setAcuityEnv(t)
	srv := acuityServer(t, []string{"2025-08-04T10:00:00+00:00"}, nil)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	conflict, err := a.CheckSlot(context.Background(), acuityQuery(at(10, 0)))
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestAcuityCheckSlotSuggestsFirstListedSlot(t *testing.T) {
	setAcuityEnv(t)
	srv := acuityServer(t, []string{"2025-08-04T14:00:00+00:00", "2025-08-04T15:00:00+00:00"}, nil)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	conflict, err := a.CheckSlot(context.Background(), acuityQuery(at(10, 0)))
	require.NoError(t, err)
	require.NotNil(t, conflict)
	require.NotNil(t, conflict.Suggested)
	assert.True(t, conflict.Suggested.Equal(at(14, 0)))
}

func TestAcuityCheckSlotNoSlotsAtAll(t *testing.T) {
	setAcuityEnv(t)
	srv := acuityServer(t, nil, nil)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	conflict, err := a.CheckSlot(context.Background(), acuityQuery(at(10, 0)))
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Nil(t, conflict.Suggested)
}

func TestAcuityCreateEvent(t *testing.T) {
	setAcuityEnv(t)
	var posted []acuityAppointment
	srv := acuityServer(t, nil, &posted)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	conf, err := a.CreateEvent(context.Background(), acuityQuery(at(10, 0)), Attendee{
		Name:    "Pat Q Doe",
		Email:   "pat@example.com",
		Purpose: "intro call",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://acuity.example/confirmation/42", conf.Ref)
	assert.Equal(t, at(10, 30), conf.End)

	require.Len(t, posted, 1)
	assert.Equal(t, "Pat", posted[0].FirstName)
	assert.Equal(t, "Q Doe", posted[0].LastName)
	assert.Equal(t, int64(777), posted[0].AppointmentTypeID)
	assert.Equal(t, "intro call", posted[0].Notes)
}

func TestAcuityCreateEventRejectsNonNumericServiceID(t *testing.T) {
	setAcuityEnv(t)
	t.Setenv("ACUITY_SERVICE_ID_ACME", "premium-call")
	srv := acuityServer(t, nil, nil)
	defer srv.Close()

	a := NewAcuityAdapter(srv.URL, srv.Client(), nil)
	_, err := a.CreateEvent(context.Background(), acuityQuery(at(10, 0)), Attendee{
		Name:  "Pat Doe",
		Email: "pat@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "premium-call")
}

func TestAcuityMissingCredentials(t *testing.T) {
	a := NewAcuityAdapter("http://unused", nil, nil)
	_, err := a.FreeSlots(context.Background(), "ghost", tenants.Config{}, at(0, 0))
	assert.Error(t, err)
}
