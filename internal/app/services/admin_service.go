package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/notifications"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/filestorage"
	"github.com/yigit/admission/internal/pkg/helpers"
)

// recentActivityOnDashboard is how many activity rows the dashboard shows
const recentActivityOnDashboard = 10

// AdminService defines administrator operations on application records
type AdminService interface {
	Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
	ListStudents(ctx context.Context, req *dto.StudentFilterRequest) (*dto.StudentListResponse, error)
	GetStudent(ctx context.Context, studentID int64) (*dto.StudentDetailResponse, error)
	Decide(ctx context.Context, studentID int64, req *dto.DecisionRequest, adminID int64) (*models.Student, error)
	Reopen(ctx context.Context, studentID, adminID int64) (*models.Student, error)
	DeleteStudent(ctx context.Context, studentID int64) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	Report(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error)
	RecentActivity(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// AdminRepositories groups the stores AdminService reads and writes
type AdminRepositories struct {
	Users     repositories.IUserRepository
	Students  repositories.IStudentRepository
	Documents repositories.IDocumentRepository
	Courses   repositories.ICourseRepository
	Tokens    repositories.ITokenRepository
	Activity  repositories.IActivityRepository
}

// adminServiceImpl implements AdminService
type adminServiceImpl struct {
	repos     AdminRepositories
	storage   filestorage.Storage
	lifecycle ApplicationLifecycle
	notifier  lifecycle.Notifier
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(
	repos AdminRepositories,
	storage filestorage.Storage,
	lc ApplicationLifecycle,
	notifier lifecycle.Notifier,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		repos:     repos,
		storage:   storage,
		lifecycle: lc,
		notifier:  notifier,
		logger:    logger.With().Str("service", "admin").Logger(),
		now:       time.Now,
	}
}

// Dashboard collects the overview counts
func (s *adminServiceImpl) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	counts, err := s.repos.Students.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.repos.Users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	courses, err := s.repos.Courses.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	unverified, err := s.repos.Documents.CountUnverified(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repos.Activity.Recent(ctx, recentActivityOnDashboard)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[models.ApplicationStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		byStatus[st] = counts[st]
	}

	return &dto.AdminDashboardResponse{
		TotalStudents:       counts.Total(),
		ByStatus:            byStatus,
		TotalAdmins:         admins,
		ActiveCourses:       courses,
		UnverifiedDocuments: unverified,
		RecentActivity:      recent,
	}, nil
}

// studentFilter converts listing query parameters
func studentFilter(courseID *int64, status *string, year *int) models.StudentFilter {
	f := models.StudentFilter{CourseID: courseID, EnrollmentYear: year}
	if status != nil && *status != "" {
		st := models.ApplicationStatus(*status)
		f.Status = &st
	}
	return f
}

// ListStudents returns one page of application records
func (s *adminServiceImpl) ListStudents(ctx context.Context, req *dto.StudentFilterRequest) (*dto.StudentListResponse, error) {
	filter := studentFilter(req.CourseID, req.Status, req.EnrollmentYear)
	filter.Search = req.Search
	page := helpers.NormalizePage(req.Page, req.PageSize)
	filter.Offset, filter.Limit = page.Offset(), page.Size

	students, total, err := s.repos.Students.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StudentResponse, 0, len(students))
	for _, st := range students {
		out = append(out, dto.NewStudentResponse(st))
	}
	return &dto.StudentListResponse{
		Students:   out,
		Pagination: page.Info(total),
	}, nil
}

// GetStudent returns one record with its documents
func (s *adminServiceImpl) GetStudent(ctx context.Context, studentID int64) (*dto.StudentDetailResponse, error) {
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	docs, err := s.repos.Documents.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	types := make([]models.DocumentType, 0, len(docs))
	for _, d := range docs {
		types = append(types, d.DocumentType)
	}
	return &dto.StudentDetailResponse{
		Student:          dto.NewStudentResponse(student),
		Documents:        dto.NewDocumentResponses(docs),
		MissingDocuments: lifecycle.MissingDocumentTypes(types),
	}, nil
}

// Decide approves or rejects a record. Any current status is accepted.
func (s *adminServiceImpl) Decide(ctx context.Context, studentID int64, req *dto.DecisionRequest, adminID int64) (*models.Student, error) {
	decision, err := lifecycle.ParseDecision(req.Decision)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.Decide(ctx, studentID, decision, adminID, req.Reason)
}

// Reopen puts a record back into review
func (s *adminServiceImpl) Reopen(ctx context.Context, studentID, adminID int64) (*models.Student, error) {
	return s.lifecycle.Reopen(ctx, studentID, adminID)
}

// DeleteStudent removes the application record, which cascades to its documents, then the files.
// The credential is kept; SetUserActive disables it.
func (s *adminServiceImpl) DeleteStudent(ctx context.Context, studentID int64) error {
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	if err := s.repos.Students.Delete(ctx, studentID); err != nil {
		return err
	}
	if err := s.storage.DeleteDir(filestorage.StudentDir(studentID)); err != nil {
		s.logger.Warn().Err(err).Int64("studentID", studentID).Msg("Application record deleted but files remain")
	}

	s.logger.Info().Int64("studentID", studentID).Int64("userID", student.UserID).Msg("Application record deleted")
	return nil
}

// SetUserActive enables or disables a credential. Disabling revokes its refresh tokens.
func (s *adminServiceImpl) SetUserActive(ctx context.Context, userID int64, active bool) error {
	if err := s.repos.Users.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		if err := s.repos.Tokens.RevokeAllUserTokens(ctx, userID); err != nil {
			return fmt.Errorf("failed to revoke tokens of disabled user: %w", err)
		}
	}
	s.logger.Info().Int64("userID", userID).Bool("active", active).Msg("Credential active flag changed")

	if s.notifier == nil {
		return nil
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Could not load user for account notice")
		return nil
	}
	subject, message := "Account disabled", "Your account has been disabled. Please contact the admissions office."
	if active {
		subject, message = "Account enabled", "Your account has been enabled. You can log in again."
	}
	s.notifier.Notify(context.WithoutCancel(ctx), notifications.General(int64Ptr(user.ID), user.Email, user.Username, subject, message))
	return nil
}

// Report lists every record matching the filters
func (s *adminServiceImpl) Report(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error) {
	students, _, err := s.repos.Students.List(ctx, studentFilter(req.CourseID, req.Status, req.EnrollmentYear))
	if err != nil {
		return nil, err
	}

	rows := make([]dto.ReportRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, dto.ReportRow{
			StudentID:      st.ID,
			Username:       st.Username,
			FullName:       st.FullName(),
			Email:          st.Email,
			Phone:          st.Phone,
			CourseName:     st.CourseName,
			EnrollmentYear: st.EnrollmentYear,
			Status:         st.Status,
			RegisteredAt:   st.RegistrationAt,
			ApprovedDate:   st.ApprovedDate,
		})
	}
	return &dto.ReportResponse{
		GeneratedAt: s.now(),
		Count:       len(rows),
		Rows:        rows,
	}, nil
}

// reportHeader is the first line of a CSV report
var reportHeader = []string{
	"Student ID", "Username", "Full Name", "Email", "Phone", "Course",
	"Enrollment Year", "Status", "Registration Date", "Approved Date",
}

// WriteReportCSV writes report rows as CSV
func WriteReportCSV(w io.Writer, report *dto.ReportResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range report.Rows {
		approved := ""
		if r.ApprovedDate != nil {
			approved = r.ApprovedDate.Format(dto.DateLayout)
		}
		record := []string{
			strconv.FormatInt(r.StudentID, 10),
			r.Username,
			r.FullName,
			r.Email,
			r.Phone,
			r.CourseName,
			strconv.Itoa(r.EnrollmentYear),
			string(r.Status),
			r.RegisteredAt.Format(dto.DateLayout),
			approved,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecentActivity returns the newest activity log rows
func (s *adminServiceImpl) RecentActivity(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	return s.repos.Activity.Recent(ctx, limit)
}
