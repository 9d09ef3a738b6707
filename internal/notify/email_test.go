package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/247convo/convo-backend/internal/scheduling"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func TestNewSendGridSenderNilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "noreply@example.com"}, nil))
}

func TestNewSendGridSenderDefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "noreply@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "247Convo", sender.fromName)
}

func TestSendGridSenderNilClient(t *testing.T) {
	sender := &SendGridSender{}
	assert.Error(t, sender.Send(context.Background(), Message{To: "pat@example.com"}))
}

func TestStubSenderNeverFails(t *testing.T) {
	assert.NoError(t, NewStubSender(nil).Send(context.Background(), Message{To: "pat@example.com"}))
}

func TestBookingNotifierNilSender(t *testing.T) {
	assert.Nil(t, NewBookingNotifier(nil, nil))
}

func TestBookingConfirmationEmail(t *testing.T) {
	capture := &captureSender{}
	n := NewBookingNotifier(capture, nil)

	start := time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC)
	conf := scheduling.Confirmation{
		Ref:   "https://acuity.example/confirmation/42",
		Start: start,
		End:   start.Add(40 * time.Minute),
	}
	err := n.SendBookingConfirmation(context.Background(), "pat@example.com", "Pat", conf)
	require.NoError(t, err)

	require.Len(t, capture.sent, 1)
	msg := capture.sent[0]
	assert.Equal(t, "pat@example.com", msg.To)
	assert.Equal(t, "Your appointment is confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "Monday, August 4 2025")
	assert.Contains(t, msg.Body, "40m")
	assert.Contains(t, msg.Body, conf.Ref)
	assert.Contains(t, msg.HTML, conf.Ref)
}

func TestBookingConfirmationPropagatesSendError(t *testing.T) {
	n := NewBookingNotifier(&captureSender{err: errors.New("smtp down")}, nil)
	err := n.SendBookingConfirmation(context.Background(), "pat@example.com", "Pat", scheduling.Confirmation{})
	assert.Error(t, err)
}
