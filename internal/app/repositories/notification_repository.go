package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/admission/internal/app/models"
)

// NotificationRepository records email attempts in 'email_notifications'
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Record stores one delivery attempt
func (r *NotificationRepository) Record(ctx context.Context, n *models.EmailNotification) error {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}

	sql, args, err := r.sb.Insert("email_notifications").
		Columns("user_id", "recipient", "subject", "message", "status", "sent_at").
		Values(n.UserID, n.Recipient, n.Subject, n.Message, n.Status, n.SentAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build record notification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID); err != nil {
		return fmt.Errorf("error recording notification: %w", err)
	}
	return nil
}
