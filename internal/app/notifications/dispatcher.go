// Package notifications renders and delivers student-facing emails and keeps a
// record of every attempt.
package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/email"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// Recorder stores delivery attempts
type Recorder interface {
	Record(ctx context.Context, n *models.EmailNotification) error
}

// Config is fixed at construction
type Config struct {
	AppName   string
	PortalURL string
}

// Dispatcher sends notifications. It is safe for concurrent use.
type Dispatcher struct {
	sender   email.Sender
	recorder Recorder
	config   Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. recorder may be nil.
func NewDispatcher(sender email.Sender, recorder Recorder, config Config, logger zerolog.Logger) *Dispatcher {
	if config.AppName == "" {
		config.AppName = "Student Admission Portal"
	}
	return &Dispatcher{
		sender:   sender,
		recorder: recorder,
		config:   config,
		logger:   logger.With().Str("component", "notifications").Logger(),
		now:      time.Now,
	}
}

// Notify renders and sends ev. It never returns an error: failures are logged,
// recorded as FAILED and reported as false.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) bool {
	if ev.Recipient == "" {
		d.logger.Warn().Str("kind", string(ev.Kind)).Msg("Notification without recipient skipped")
		return false
	}

	subject, body, err := render(d.config.AppName, d.config.PortalURL, ev)
	if err != nil {
		d.logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("Failed to render notification")
		return false
	}

	status := models.NotificationSent
	if err := d.sender.Send(ctx, ev.Recipient, subject, body); err != nil {
		status = models.NotificationFailed
		d.logger.Error().Err(err).Str("kind", string(ev.Kind)).Str("to", ev.Recipient).Msg("Notification delivery failed")
	}
	metrics.NotificationsSent.WithLabelValues(string(ev.Kind), string(status)).Inc()

	if d.recorder != nil {
		record := &models.EmailNotification{
			UserID:    ev.UserID,
			Recipient: ev.Recipient,
			Subject:   subject,
			Message:   body,
			Status:    status,
			SentAt:    d.now(),
		}
		if err := d.recorder.Record(ctx, record); err != nil {
			d.logger.Warn().Err(err).Str("to", ev.Recipient).Msg("Failed to record email notification")
		}
	}

	return status == models.NotificationSent
}
