package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

func TestStudentDashboard_ListsMissingDocuments(t *testing.T) {
	students := new(MockStudentRepository)
	documents := new(MockDocumentRepository)
	courses := new(MockCourseRepository)
	students.On("GetByUserID", mock.Anything, int64(50)).Return(bob(), nil)
	documents.On("ListByStudent", mock.Anything, int64(5)).Return([]*models.Document{
		{ID: 1, StudentID: 5, DocumentType: models.DocumentPhoto},
		{ID: 2, StudentID: 5, DocumentType: models.DocumentPhoto},
		{ID: 3, StudentID: 5, DocumentType: models.DocumentAadhar},
	}, nil)
	courses.On("GetByID", mock.Anything, int64(0)).Return(nil, apperrors.ErrCourseNotFound)

	svc := NewStudentService(students, documents, courses, zerolog.Nop())
	got, err := svc.GetDashboard(context.Background(), 50)
	require.NoError(t, err)

	assert.False(t, got.Complete)
	assert.Equal(t, []models.DocumentType{models.DocumentMarksheet10, models.DocumentMarksheet12}, got.MissingDocuments)
	assert.Len(t, got.Documents, 3)
	assert.Nil(t, got.Course)
}

func TestUpdateProfile_PreservesStatus(t *testing.T) {
	students := new(MockStudentRepository)
	reason := "Blurry photo"
	admin := int64(7)
	record := bob()
	record.Status = models.StatusRejected
	record.ApprovedBy = &admin
	record.RejectionReason = &reason
	record.Country = "India"
	students.On("GetByUserID", mock.Anything, int64(50)).Return(record, nil)
	students.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*models.Student")).Return(nil)

	svc := NewStudentService(students, new(MockDocumentRepository), new(MockCourseRepository), zerolog.Nop())
	got, err := svc.UpdateProfile(context.Background(), 50, &dto.UpdateProfileRequest{
		FirstName: "Bobby", LastName: "Rao", Phone: "98765 43210", Address: "1 Park St",
		City: "Kolkata", State: "West Bengal", ZipCode: "700016",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bobby", got.FirstName)
	assert.Equal(t, "9876543210", got.Phone)
	assert.Equal(t, "India", got.Country)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, &reason, got.RejectionReason)
}
