package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/dberrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

// IStudentRepository defines application record persistence
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	UpdateProfile(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id int64, change models.StatusChange) error
	UpdateStatusIf(ctx context.Context, id int64, expected models.ApplicationStatus, change models.StatusChange) (bool, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

var studentColumns = []string{
	"s.id", "s.user_id", "s.first_name", "s.last_name", "s.date_of_birth", "s.gender", "s.phone",
	"s.address", "s.city", "s.state", "s.zip_code", "s.country", "s.course_id", "s.enrollment_year",
	"s.status", "s.registration_date", "s.approved_by", "s.approved_date", "s.rejection_reason",
	"u.email", "u.username", "COALESCE(c.course_name, '')",
}

// StudentRepository handles application record database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func studentSelect(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(studentColumns...).
		From("students s").
		Join("users u ON u.id = s.user_id").
		LeftJoin("courses c ON c.id = s.course_id")
}

// studentFilterWhere translates a filter into WHERE conditions on the joined select
func studentFilterWhere(f models.StudentFilter) squirrel.And {
	where := squirrel.And{}
	if f.CourseID != nil {
		where = append(where, squirrel.Eq{"s.course_id": *f.CourseID})
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"s.status": *f.Status})
	}
	if f.EnrollmentYear != nil {
		where = append(where, squirrel.Eq{"s.enrollment_year": *f.EnrollmentYear})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"s.first_name": like},
			squirrel.ILike{"s.last_name": like},
			squirrel.ILike{"u.email": like},
			squirrel.ILike{"u.username": like},
		})
	}
	return where
}

func studentListQuery(sb squirrel.StatementBuilderType, f models.StudentFilter) squirrel.SelectBuilder {
	q := studentSelect(sb).
		Where(studentFilterWhere(f)).
		OrderBy("s.registration_date DESC", "s.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(f.Offset)
	}
	return q
}

func studentCountQuery(sb squirrel.StatementBuilderType, f models.StudentFilter) squirrel.SelectBuilder {
	return sb.Select("COUNT(*)").
		From("students s").
		Join("users u ON u.id = s.user_id").
		Where(studentFilterWhere(f))
}

// statusUpdateQuery writes the status column set. A non-nil expected makes the update conditional.
func statusUpdateQuery(sb squirrel.StatementBuilderType, id int64, change models.StatusChange, expected *models.ApplicationStatus) squirrel.UpdateBuilder {
	q := sb.Update("students").
		Set("status", change.Status).
		Set("approved_by", change.ApprovedBy).
		Set("approved_date", change.ApprovedDate).
		Set("rejection_reason", change.RejectionReason).
		Where(squirrel.Eq{"id": id})
	if expected != nil {
		q = q.Where(squirrel.Eq{"status": *expected})
	}
	return q
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.Gender, &s.Phone,
		&s.Address, &s.City, &s.State, &s.ZipCode, &s.Country, &s.CourseID, &s.EnrollmentYear,
		&s.Status, &s.RegistrationAt, &s.ApprovedBy, &s.ApprovedDate, &s.RejectionReason,
		&s.Email, &s.Username, &s.CourseName)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts an application record and sets its ID
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.Status == "" {
		student.Status = models.StatusIncomplete
	}
	if strings.TrimSpace(student.Country) == "" {
		student.Country = "India"
	}
	if student.RegistrationAt.IsZero() {
		student.RegistrationAt = time.Now()
	}

	sql, args, err := r.sb.Insert("students").
		Columns("user_id", "first_name", "last_name", "date_of_birth", "gender", "phone", "address",
			"city", "state", "zip_code", "country", "course_id", "enrollment_year", "status", "registration_date").
		Values(student.UserID, student.FirstName, student.LastName, student.DateOfBirth, student.Gender,
			student.Phone, student.Address, student.City, student.State, student.ZipCode, student.Country,
			student.CourseID, student.EnrollmentYear, student.Status, student.RegistrationAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintStudentsUser):
			logger.Warn().Int64("userID", student.UserID).Msg("Application record already exists for user")
			return apperrors.ErrResourceAlreadyExists
		case dberrors.IsForeignKeyError(err, dberrors.ConstraintStudentsCourse):
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("userID", student.UserID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("userID", student.UserID).Int64("studentID", student.ID).Msg("Application record created")
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := studentSelect(r.sb).Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return s, nil
}

// GetByID retrieves an application record by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

// GetByUserID retrieves the application record of a credential
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.user_id": userID})
}

// List returns one page of records matching filter and the total match count
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	countSQL, countArgs, err := studentCountQuery(r.sb, filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	sql, args, err := studentListQuery(r.sb, filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating students: %w", err)
	}

	return students, total, nil
}

// UpdateProfile writes the contact columns only; status bookkeeping is left untouched
func (r *StudentRepository) UpdateProfile(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("first_name", student.FirstName).
		Set("last_name", student.LastName).
		Set("phone", student.Phone).
		Set("address", student.Address).
		Set("city", student.City).
		Set("state", student.State).
		Set("zip_code", student.ZipCode).
		Set("country", student.Country).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update profile query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateStatus writes a status change unconditionally
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int64, change models.StatusChange) error {
	sql, args, err := statusUpdateQuery(r.sb, id, change, nil).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Str("status", string(change.Status)).Msg("Error executing update status query")
		return fmt.Errorf("error updating status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateStatusIf writes a status change only while the record is still in expected.
// It reports whether a row was updated.
func (r *StudentRepository) UpdateStatusIf(ctx context.Context, id int64, expected models.ApplicationStatus, change models.StatusChange) (bool, error) {
	sql, args, err := statusUpdateQuery(r.sb, id, change, &expected).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build conditional update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing conditional update status query")
		return false, fmt.Errorf("error updating status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an application record; its documents cascade
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// CountByStatus counts records per status. Statuses without records are reported as zero.
func (r *StudentRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	sql, args, err := r.sb.Select("status", "COUNT(*)").From("students").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by status query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing count by status query")
		return nil, fmt.Errorf("error counting students: %w", err)
	}
	defer rows.Close()

	counts := make(models.StatusCounts, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}
	for rows.Next() {
		var st models.ApplicationStatus
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}
