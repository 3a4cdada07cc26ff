package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/dberrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

// ITokenRepository defines refresh token persistence
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// revokedRetention is how long revoked tokens are kept before cleanup
const revokedRetention = 30 * 24 * time.Hour

var refreshTokenColumns = []string{"id", "token", "user_id", "expiry_date", "is_revoked", "created_at"}

// TokenRepository handles refresh token database operations
type TokenRepository struct {
	db  *pgxpool.Pool
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db:  db,
		sb:  statementBuilder(),
		now: time.Now,
	}
}

// exec builds and runs a write statement; op names it in logs and errors
func (r *TokenRepository) exec(ctx context.Context, op string, q squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("failed to build %s query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return tag, fmt.Errorf("failed to %s: %w", op, err)
	}
	return tag, nil
}

// CreateToken stores a new refresh token
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	q := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked", "created_at").
		Values(token, userID, expiryDate, false, r.now())

	if _, err := r.exec(ctx, "store refresh token", q); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintRefreshToken) {
			logger.Warn().Int64("userID", userID).Msg("Refresh token collision")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Storing refresh token failed")
		return err
	}
	return nil
}

// GetTokenByValue returns a usable refresh token. Revoked and expired tokens are errors.
func (r *TokenRepository) GetTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := r.sb.Select(refreshTokenColumns...).
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh token lookup: %w", err)
	}

	var t models.RefreshToken
	row := r.db.QueryRow(ctx, sql, args...)
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiryDate, &t.IsRevoked, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Refresh token lookup failed")
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	switch {
	case t.IsRevoked:
		return nil, apperrors.ErrTokenRevoked
	case !t.ExpiryDate.After(r.now()):
		return nil, apperrors.ErrTokenExpired
	}
	return &t, nil
}

// RevokeToken marks one token unusable
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	q := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token})

	tag, err := r.exec(ctx, "revoke refresh token", q)
	if err != nil {
		logger.Error().Err(err).Msg("Revoking refresh token failed")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllUserTokens ends every session of a user. Having none is not an error.
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	q := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false})

	if _, err := r.exec(ctx, "revoke user sessions", q); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Revoking user sessions failed")
		return err
	}
	return nil
}

// CleanupExpiredTokens deletes expired tokens and revoked ones past retention
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := r.exec(ctx, "clean up refresh tokens", cleanupTokensQuery(r.sb, r.now()))
	if err != nil {
		logger.Error().Err(err).Msg("Refresh token cleanup failed")
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func cleanupTokensQuery(sb squirrel.StatementBuilderType, now time.Time) squirrel.DeleteBuilder {
	return sb.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": now.Add(-revokedRetention)},
			},
		})
}
