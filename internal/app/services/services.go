package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/repositories"
)

// Services defined in this package:
// - AuthService: registration saga, login with the brute-force guard, token refresh and logout
// - StudentService: the student's own dashboard and profile
// - DocumentService: uploads, listings, downloads, verification and deletion of documents
// - AdminService: dashboard counts, record decisions, reports and the activity log
// - CourseService: course reference data

// recordActivity appends an audit row. Failures are logged and otherwise ignored.
func recordActivity(ctx context.Context, repo repositories.IActivityRepository, log zerolog.Logger, userID *int64, action, description, ip string) {
	if repo == nil {
		return
	}
	entry := &models.ActivityLog{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   ip,
	}
	if err := repo.Log(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to write activity log")
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

// ApplicationLifecycle moves application records between statuses
type ApplicationLifecycle interface {
	EvaluateCompleteness(ctx context.Context, studentID int64) (bool, error)
	Decide(ctx context.Context, studentID int64, decision lifecycle.Decision, adminID int64, reason *string) (*models.Student, error)
	Reopen(ctx context.Context, studentID, adminID int64) (*models.Student, error)
}
