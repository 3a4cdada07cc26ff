package migrations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func existsRows(applied bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(applied)
}

var (
	createTracking = regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")
	checkApplied   = regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")
	recordApplied  = regexp.QuoteMeta("INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)")
)

func TestMigrateFromDirectory_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := migrationsDir(t, map[string]string{
		"002_documents.sql": "CREATE TABLE documents (id BIGSERIAL PRIMARY KEY);",
		"001_init.sql":      "CREATE TABLE users (id BIGSERIAL PRIMARY KEY);",
		"README.md":         "not a migration",
	})

	mock.ExpectExec(createTracking).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(checkApplied).WithArgs("001").WillReturnRows(existsRows(true))

	mock.ExpectQuery(checkApplied).WithArgs("002").WillReturnRows(existsRows(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE documents")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(recordApplied).WithArgs("002", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := NewMigrator(db, zerolog.Nop()).MigrateFromDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFromDirectory_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := migrationsDir(t, map[string]string{"001_init.sql": "CREATE TABLE broken ("})

	mock.ExpectExec(createTracking).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(checkApplied).WithArgs("001").WillReturnRows(existsRows(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken (")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := NewMigrator(db, zerolog.Nop()).MigrateFromDirectory(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_init.sql")
	assert.Zero(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFromDirectory_MissingDirectory(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewMigrator(db, zerolog.Nop()).MigrateFromDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("001_init.sql"))
	assert.Equal(t, "010", versionOf("/srv/migrations/010_add_index_on_status.sql"))
}
