package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/logger"
)

// IActivityRepository defines the audit log
type IActivityRepository interface {
	Log(ctx context.Context, entry *models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// ActivityRepository writes and reads 'activity_log'
type ActivityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Log appends an entry
func (r *ActivityRepository) Log(ctx context.Context, entry *models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	sql, args, err := r.sb.Insert("activity_log").
		Columns("user_id", "action", "description", "ip_address", "created_at").
		Values(entry.UserID, entry.Action, entry.Description, entry.IPAddress, entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build log activity query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
		logger.Error().Err(err).Str("action", entry.Action).Msg("Error writing activity log")
		return fmt.Errorf("error logging activity: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	sql, args, err := r.sb.Select("id", "user_id", "action", "description", "ip_address", "created_at").
		From("activity_log").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent activity query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing recent activity query")
		return nil, fmt.Errorf("error reading activity: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ActivityLog, 0, limit)
	for rows.Next() {
		var e models.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Description, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning activity: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
