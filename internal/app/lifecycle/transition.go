// Package lifecycle owns the admission status state machine of a student's
// application record.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

// EventKind names what happened to an application record.
type EventKind string

const (
	// EventDocumentsComplete fires once every required document type has an upload.
	EventDocumentsComplete EventKind = "DOCUMENTS_COMPLETE"
	EventApprove           EventKind = "APPROVE"
	EventReject            EventKind = "REJECT"
	// EventReopen puts a record back into review.
	EventReopen EventKind = "REOPEN"
)

// Event is the input of Transition.
type Event struct {
	Kind   EventKind
	Actor  int64
	Reason *string
	At     time.Time
}

// Change is the result of Transition. When Changed is false nothing must be written.
type Change struct {
	From    models.ApplicationStatus
	Changed bool
	models.StatusChange
}

// Transition applies ev to a record currently in status current.
//
// Admin decisions are accepted from any status, including terminal ones, and
// overwrite the previous decision.
func Transition(current models.ApplicationStatus, ev Event) (Change, error) {
	change := Change{From: current}

	switch ev.Kind {
	case EventDocumentsComplete:
		if current != models.StatusIncomplete {
			return change, nil
		}
		change.Changed = true
		change.Status = models.StatusPending

	case EventApprove:
		at := ev.At
		actor := ev.Actor
		change.Changed = true
		change.Status = models.StatusApproved
		change.ApprovedBy = &actor
		change.ApprovedDate = &at

	case EventReject:
		if ev.Reason == nil {
			return change, apperrors.ErrRejectionReasonRequired
		}
		actor := ev.Actor
		reason := *ev.Reason
		change.Changed = true
		change.Status = models.StatusRejected
		change.ApprovedBy = &actor
		change.RejectionReason = &reason

	case EventReopen:
		change.Changed = true
		change.Status = models.StatusPending

	default:
		return change, fmt.Errorf("%w: unknown event %q", apperrors.ErrInvalidDecision, ev.Kind)
	}

	return change, nil
}

// CheckInvariants reports whether the approval bookkeeping of a record agrees with its status.
func CheckInvariants(s models.StatusChange) error {
	switch s.Status {
	case models.StatusApproved:
		if s.ApprovedBy == nil || s.ApprovedDate == nil || s.RejectionReason != nil {
			return fmt.Errorf("approved record must carry approver and date and no rejection reason")
		}
	case models.StatusRejected:
		if s.ApprovedBy == nil || s.ApprovedDate != nil || s.RejectionReason == nil {
			return fmt.Errorf("rejected record must carry approver and reason and no approval date")
		}
	case models.StatusIncomplete, models.StatusPending:
		if s.ApprovedBy != nil || s.ApprovedDate != nil || s.RejectionReason != nil {
			return fmt.Errorf("%s record must not carry decision bookkeeping", s.Status)
		}
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}
	return nil
}
