package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/notifications"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// Decision is an administrator's verdict on an application.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// ParseDecision accepts APPROVE / REJECT in any case.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToUpper(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidDecision, s)
	}
}

// RecordStore persists application records.
type RecordStore interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// UpdateStatus writes the change unconditionally in one statement.
	UpdateStatus(ctx context.Context, id int64, change models.StatusChange) error
	// UpdateStatusIf writes the change only while the record is still in expected.
	UpdateStatusIf(ctx context.Context, id int64, expected models.ApplicationStatus, change models.StatusChange) (bool, error)
}

// DocumentTypeLister returns the document types uploaded for a record, duplicates included.
type DocumentTypeLister interface {
	ListTypesByStudent(ctx context.Context, studentID int64) ([]models.DocumentType, error)
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, event notifications.Event) bool
}

// Manager drives application records through their statuses.
type Manager struct {
	records   RecordStore
	documents DocumentTypeLister
	notifier  Notifier
	logger    zerolog.Logger
	now       func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. notifier may be nil.
func NewManager(records RecordStore, documents DocumentTypeLister, notifier Notifier, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		records:   records,
		documents: documents,
		notifier:  notifier,
		logger:    logger.With().Str("component", "lifecycle").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvaluateCompleteness checks the record's uploads and moves it from INCOMPLETE to
// PENDING once every required document type is present. It returns the completeness result.
func (m *Manager) EvaluateCompleteness(ctx context.Context, studentID int64) (bool, error) {
	types, err := m.documents.ListTypesByStudent(ctx, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to list documents for completeness: %w", err)
	}
	if !EvaluateCompleteness(types) {
		return false, nil
	}

	record, err := m.records.GetByID(ctx, studentID)
	if err != nil {
		return true, err
	}

	change, err := Transition(record.Status, Event{Kind: EventDocumentsComplete, At: m.now()})
	if err != nil {
		return true, err
	}
	if !change.Changed {
		return true, nil
	}

	updated, err := m.records.UpdateStatusIf(ctx, studentID, models.StatusIncomplete, change.StatusChange)
	if err != nil {
		return true, fmt.Errorf("failed to move application to review: %w", err)
	}
	if !updated {
		// Someone else moved the record first
		return true, nil
	}

	m.applied(ctx, record, change)
	return true, nil
}

// Decide records an administrator decision. Any current status is accepted and the
// last decision written wins. reason must be non-nil for rejections and is ignored
// for approvals.
func (m *Manager) Decide(ctx context.Context, studentID int64, decision Decision, adminID int64, reason *string) (*models.Student, error) {
	var ev Event
	switch decision {
	case DecisionApprove:
		ev = Event{Kind: EventApprove, Actor: adminID, At: m.now()}
	case DecisionReject:
		ev = Event{Kind: EventReject, Actor: adminID, Reason: reason, At: m.now()}
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidDecision, decision)
	}

	return m.apply(ctx, studentID, ev)
}

// Reopen returns a record to PENDING and clears any previous decision.
func (m *Manager) Reopen(ctx context.Context, studentID, adminID int64) (*models.Student, error) {
	return m.apply(ctx, studentID, Event{Kind: EventReopen, Actor: adminID, At: m.now()})
}

func (m *Manager) apply(ctx context.Context, studentID int64, ev Event) (*models.Student, error) {
	record, err := m.records.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	change, err := Transition(record.Status, ev)
	if err != nil {
		return nil, err
	}

	if err := m.records.UpdateStatus(ctx, studentID, change.StatusChange); err != nil {
		m.logger.Error().Err(err).Int64("studentID", studentID).Str("event", string(ev.Kind)).Msg("Failed to persist status change")
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	m.applied(ctx, record, change)
	return record, nil
}

// applied copies a persisted change onto record and announces it.
func (m *Manager) applied(ctx context.Context, record *models.Student, change Change) {
	record.Status = change.Status
	record.ApprovedBy = change.ApprovedBy
	record.ApprovedDate = change.ApprovedDate
	record.RejectionReason = change.RejectionReason

	metrics.StatusTransitions.WithLabelValues(string(change.From), string(change.Status)).Inc()
	m.logger.Info().
		Int64("studentID", record.ID).
		Str("from", string(change.From)).
		Str("to", string(change.Status)).
		Msg("Application status changed")

	if m.notifier == nil || record.Email == "" {
		return
	}
	if !m.notifier.Notify(context.WithoutCancel(ctx), notifications.StatusChanged(record)) {
		m.logger.Warn().Int64("studentID", record.ID).Msg("Status notification was not delivered")
	}
}
