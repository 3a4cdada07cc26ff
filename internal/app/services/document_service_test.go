package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/admission/internal/app/auth"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/notifications"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/filestorage"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type documentFixture struct {
	documents *MockDocumentRepository
	students  *MockStudentRepository
	lifecycle *MockLifecycle
	notifier  *MockNotifier
	root      string
	storage   *filestorage.LocalStorage
	service   DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	root := t.TempDir()
	storage, err := filestorage.NewLocalStorage(root, 0)
	require.NoError(t, err)

	f := &documentFixture{
		documents: new(MockDocumentRepository),
		students:  new(MockStudentRepository),
		lifecycle: new(MockLifecycle),
		notifier:  new(MockNotifier),
		root:      root,
		storage:   storage,
	}
	authz := appauth.NewAuthorizationService(f.students, f.documents)
	f.service = NewDocumentService(f.documents, f.students, storage, f.lifecycle, authz, f.notifier, zerolog.Nop())
	return f
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func bob() *models.Student {
	return &models.Student{ID: 5, UserID: 50, FirstName: "Bob", LastName: "Rao", Email: "bob@example.com", Status: models.StatusIncomplete}
}

func storedFiles(t *testing.T, root string, studentID int64) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, filestorage.StudentDir(studentID)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestUpload_FourthRequiredTypeMovesToReview(t *testing.T) {
	f := newDocumentFixture(t)
	f.students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)
	f.documents.On("Create", mock.Anything, mock.AnythingOfType("*models.Document")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Document).ID = 77 }).
		Return(nil)
	f.lifecycle.On("EvaluateCompleteness", mock.Anything, int64(5)).Return(true, nil)
	pending := bob()
	pending.Status = models.StatusPending
	f.students.On("GetByID", mock.Anything, int64(5)).Return(pending, nil)

	resp, err := f.service.Upload(context.Background(), 50, "aadhar", fileHeader(t, "Aadhar Card.PDF", pdfContent))
	require.NoError(t, err)

	assert.True(t, resp.Complete)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.Equal(t, int64(77), resp.Document.ID)
	assert.Equal(t, models.DocumentAadhar, resp.Document.DocumentType)
	assert.Equal(t, "application/pdf", resp.Document.MimeType)
	assert.Equal(t, int64(len(pdfContent)), resp.Document.FileSize)
	assert.Len(t, storedFiles(t, f.root, 5), 1)
}

func TestUpload_IncompleteKeepsStatus(t *testing.T) {
	f := newDocumentFixture(t)
	f.students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)
	f.documents.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.lifecycle.On("EvaluateCompleteness", mock.Anything, int64(5)).Return(false, nil)

	resp, err := f.service.Upload(context.Background(), 50, "PHOTO", fileHeader(t, "me.pdf", pdfContent))
	require.NoError(t, err)

	assert.False(t, resp.Complete)
	assert.Equal(t, models.StatusIncomplete, resp.Status)
	f.students.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpload_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		docType string
		file    func(t *testing.T) *multipart.FileHeader
		field   string
	}{
		{"unknown type", "PASSPORT", func(t *testing.T) *multipart.FileHeader { return fileHeader(t, "a.pdf", pdfContent) }, "documentType"},
		{"missing file", "PHOTO", func(t *testing.T) *multipart.FileHeader { return nil }, "file"},
		{"extension not allowed", "PHOTO", func(t *testing.T) *multipart.FileHeader { return fileHeader(t, "a.gif", []byte("GIF89a")) }, "file"},
		{"empty file", "PHOTO", func(t *testing.T) *multipart.FileHeader { return fileHeader(t, "a.pdf", nil) }, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)

			_, err := f.service.Upload(context.Background(), 50, tt.docType, tt.file(t))

			var fieldErr *apperrors.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			f.students.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
			f.documents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpload_RejectsContentNotMatchingExtension(t *testing.T) {
	f := newDocumentFixture(t)
	f.students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)

	_, err := f.service.Upload(context.Background(), 50, "PHOTO", fileHeader(t, "me.png", []byte("just some text, not an image")))

	require.ErrorIs(t, err, apperrors.ErrInvalidFile)
	assert.Empty(t, storedFiles(t, f.root, 5))
	f.documents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpload_RemovesFileWhenMetadataInsertFails(t *testing.T) {
	f := newDocumentFixture(t)
	f.students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)
	f.documents.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.service.Upload(context.Background(), 50, "PHOTO", fileHeader(t, "me.pdf", pdfContent))

	require.Error(t, err)
	assert.Empty(t, storedFiles(t, f.root, 5))
	f.lifecycle.AssertNotCalled(t, "EvaluateCompleteness", mock.Anything, mock.Anything)
}

func TestDownload_OwnerAndAdmin(t *testing.T) {
	f := newDocumentFixture(t)
	relPath, _, err := f.storage.Save(bytes.NewReader(pdfContent), filestorage.StudentDir(5), "pdf")
	require.NoError(t, err)
	doc := &models.Document{ID: 9, StudentID: 5, FilePath: relPath, DocumentType: models.DocumentPhoto}
	f.documents.On("GetByID", mock.Anything, int64(9)).Return(doc, nil)
	f.students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)
	other := &models.Student{ID: 6, UserID: 60}
	f.students.On("GetByUserID", mock.Anything, int64(60)).Return(other, nil)

	for _, p := range []appauth.Principal{
		{UserID: 50, Role: models.RoleStudent},
		{UserID: 1, Role: models.RoleAdmin},
	} {
		got, file, err := f.service.Download(context.Background(), 9, p)
		require.NoError(t, err)
		body, err := io.ReadAll(file)
		require.NoError(t, file.Close())
		require.NoError(t, err)
		assert.Equal(t, pdfContent, body)
		assert.Equal(t, int64(9), got.ID)
	}

	_, _, err = f.service.Download(context.Background(), 9, appauth.Principal{UserID: 60, Role: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestVerify_NotifiesStudent(t *testing.T) {
	f := newDocumentFixture(t)
	doc := &models.Document{ID: 9, StudentID: 5, DocumentType: models.DocumentMarksheet10, Verified: true}
	f.documents.On("SetVerified", mock.Anything, int64(9), true, int64(7)).Return(doc, nil)
	f.students.On("GetByID", mock.Anything, int64(5)).Return(bob(), nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notifications.Event) bool {
		return ev.Kind == notifications.KindDocumentVerification && ev.Verified && ev.Recipient == "bob@example.com"
	})).Return(true)

	got, err := f.service.Verify(context.Background(), 9, true, 7)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	f.notifier.AssertExpectations(t)
}

func TestDeleteDocument_RemovesRowAndFile(t *testing.T) {
	f := newDocumentFixture(t)
	relPath, _, err := f.storage.Save(bytes.NewReader(pdfContent), filestorage.StudentDir(5), "pdf")
	require.NoError(t, err)
	f.documents.On("GetByID", mock.Anything, int64(9)).Return(&models.Document{ID: 9, StudentID: 5, FilePath: relPath}, nil)
	f.documents.On("Delete", mock.Anything, int64(9)).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), 9))
	assert.Empty(t, storedFiles(t, f.root, 5))
}
