package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/247convo/convo-backend/internal/scheduling"
	"github.com/247convo/convo-backend/pkg/logging"
)

// BookingNotifier composes and sends booking confirmation emails. Google
// bookings are excluded upstream because Calendar invites the attendee.
type BookingNotifier struct {
	sender Sender
	logger *logging.Logger
}

// NewBookingNotifier wraps an email sender. A nil sender yields a nil
// notifier, which the orchestrator treats as "email disabled".
func NewBookingNotifier(sender Sender, logger *logging.Logger) *BookingNotifier {
	if sender == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{sender: sender, logger: logger}
}

// SendBookingConfirmation emails the attendee their slot and reference link.
func (n *BookingNotifier) SendBookingConfirmation(ctx context.Context, to, name string, conf scheduling.Confirmation) error {
	when := conf.Start.Format("Monday, January 2 2006 at 3:04 PM MST")
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment is confirmed for %s (%s).\n\nDetails: %s\n",
		name, when, conf.End.Sub(conf.Start).Round(time.Minute), conf.Ref)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your appointment is confirmed for <strong>%s</strong>.</p><p><a href=%q>View your booking</a></p>",
		name, when, conf.Ref)

	return n.sender.Send(ctx, Message{
		To:      to,
		ToName:  name,
		Subject: "Your appointment is confirmed",
		Body:    body,
		HTML:    html,
	})
}

var _ scheduling.Notifier = (*BookingNotifier)(nil)
