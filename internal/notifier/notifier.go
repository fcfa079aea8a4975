// Package notifier consumes domain events and delivers user-facing
// notifications. OTP delivery goes out-of-band here rather than through the
// HTTP response.
package notifier

import (
	"encoding/json"

	"github.com/festivo/festivo-api/internal/platform/events"
	"github.com/festivo/festivo-api/internal/platform/sms"
	"github.com/festivo/festivo-api/pkg/logger"
)

type Notifier struct {
	bus events.Subscriber
	sms sms.Sender
}

func New(bus events.Subscriber, sender sms.Sender) *Notifier {
	return &Notifier{bus: bus, sms: sender}
}

// Start registers the event subscriptions. Handlers run on the bus's
// delivery goroutine; failures are logged, never retried.
func (n *Notifier) Start() error {
	if err := n.bus.Subscribe(events.OTPRequested, n.onOTPRequested); err != nil {
		return err
	}
	return n.bus.Subscribe(events.BookingStatusChanged, n.onBookingStatusChanged)
}

func (n *Notifier) onOTPRequested(msg *events.Message) {
	var ev events.OTPRequestedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("failed to decode otp.requested event", "error", err)
		return
	}
	if err := n.sms.SendOTP(ev.Mobile, ev.Code); err != nil {
		logger.Error("failed to deliver one-time code", "error", err, "mobile", ev.Mobile)
	}
}

func (n *Notifier) onBookingStatusChanged(msg *events.Message) {
	var ev events.BookingStatusChangedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("failed to decode booking.status_changed event", "error", err)
		return
	}
	logger.Info("booking status changed",
		"booking_id", ev.BookingID,
		"user_id", ev.UserID,
		"status", ev.Status,
	)
}
