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
	"github.com/yigit/admission/internal/pkg/logger"
)

// IDocumentRepository defines document metadata persistence
type IDocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error)
	ListTypesByStudent(ctx context.Context, studentID int64) ([]models.DocumentType, error)
	List(ctx context.Context, unverifiedOnly bool) ([]*models.Document, error)
	SetVerified(ctx context.Context, id int64, verified bool, adminID int64) (*models.Document, error)
	Delete(ctx context.Context, id int64) error
	CountUnverified(ctx context.Context) (int64, error)
}

var documentColumns = []string{
	"id", "student_id", "document_type", "file_name", "file_path", "file_size", "mime_type",
	"uploaded_at", "verified", "verified_by", "verified_at",
}

// DocumentRepository handles document metadata database operations
type DocumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.StudentID, &d.DocumentType, &d.FileName, &d.FilePath, &d.FileSize,
		&d.MimeType, &d.UploadedAt, &d.Verified, &d.VerifiedBy, &d.VerifiedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// verifyQuery sets the verification flag; verified_by and verified_at are cleared when unverifying
func verifyQuery(sb squirrel.StatementBuilderType, id int64, verified bool, adminID int64, now time.Time) squirrel.UpdateBuilder {
	q := sb.Update("documents").Set("verified", verified)
	if verified {
		q = q.Set("verified_by", adminID).Set("verified_at", now)
	} else {
		q = q.Set("verified_by", nil).Set("verified_at", nil)
	}
	return q.Where(squirrel.Eq{"id": id}).Suffix("RETURNING " + strings.Join(documentColumns, ", "))
}

// Create inserts document metadata and sets its ID
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	sql, args, err := r.sb.Insert("documents").
		Columns("student_id", "document_type", "file_name", "file_path", "file_size", "mime_type", "uploaded_at", "verified").
		Values(doc.StudentID, doc.DocumentType, doc.FileName, doc.FilePath, doc.FileSize, doc.MimeType, doc.UploadedAt, false).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create document SQL")
		return fmt.Errorf("failed to build create document query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID); err != nil {
		logger.Error().Err(err).Int64("studentID", doc.StudentID).Str("type", string(doc.DocumentType)).Msg("Error executing create document query")
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// GetByID retrieves document metadata by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns...).From("documents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	d, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		logger.Error().Err(err).Int64("documentID", id).Msg("Error scanning document row")
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Document, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list documents query")
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListByStudent returns a record's documents, newest first
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	return r.list(ctx, r.sb.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("uploaded_at DESC", "id DESC"))
}

// ListTypesByStudent returns the type of every upload of a record, duplicates included
func (r *DocumentRepository) ListTypesByStudent(ctx context.Context, studentID int64) ([]models.DocumentType, error) {
	sql, args, err := r.sb.Select("document_type").
		From("documents").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list document types query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list document types query")
		return nil, fmt.Errorf("error listing document types: %w", err)
	}
	defer rows.Close()

	types := make([]models.DocumentType, 0, 4)
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("error scanning document type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// List returns every document, or only unverified ones, newest first
func (r *DocumentRepository) List(ctx context.Context, unverifiedOnly bool) ([]*models.Document, error) {
	q := r.sb.Select(documentColumns...).From("documents").OrderBy("uploaded_at DESC", "id DESC")
	if unverifiedOnly {
		q = q.Where(squirrel.Eq{"verified": false})
	}
	return r.list(ctx, q)
}

// SetVerified updates the verification flag and returns the updated document
func (r *DocumentRepository) SetVerified(ctx context.Context, id int64, verified bool, adminID int64) (*models.Document, error) {
	sql, args, err := verifyQuery(r.sb, id, verified, adminID, time.Now()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verify document query: %w", err)
	}

	d, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		logger.Error().Err(err).Int64("documentID", id).Msg("Error executing verify document query")
		return nil, fmt.Errorf("error verifying document: %w", err)
	}
	return d, nil
}

// Delete removes document metadata
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("documents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete document query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("documentID", id).Msg("Error executing delete document query")
		return fmt.Errorf("error deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}

// CountUnverified counts documents awaiting verification
func (r *DocumentRepository) CountUnverified(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("documents").Where(squirrel.Eq{"verified": false}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count documents query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error counting unverified documents")
		return 0, fmt.Errorf("error counting documents: %w", err)
	}
	return n, nil
}
