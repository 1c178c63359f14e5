package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
)

func newCourseServiceForTest(t *testing.T) (*CourseService, *MockCourseRepository, *MockUserRepository, *MockEmailService) {
	t.Helper()
	courseRepo := new(MockCourseRepository)
	userRepo := new(MockUserRepository)
	emailSvc := new(MockEmailService)
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewCourseService(courseRepo, userRepo, store, emailSvc)
	return svc, courseRepo, userRepo, emailSvc
}

func TestCourseService_InviteByEmail_Success(t *testing.T) {
	// Arrange
	svc, courseRepo, userRepo, emailSvc := newCourseServiceForTest(t)
	course := &entity.Course{ID: 1, Title: "Анализ", OwnerID: 2}
	invited := &entity.User{ID: 9, Username: "student", Email: "student@example.com"}

	courseRepo.On("GetByID", uint(1)).Return(course, nil)
	userRepo.On("GetByEmail", "student@example.com").Return(invited, nil)
	courseRepo.On("AddMember", mock.MatchedBy(func(m *entity.CourseMember) bool {
		return m.CourseID == 1 && m.UserID == 9
	})).Return(nil)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2, Username: "teacher"}, nil)
	emailSvc.On("SendCourseInvitation", mock.Anything, "student@example.com", "Анализ", "teacher").Return(nil)

	// Act
	user, err := svc.InviteByEmail(context.Background(), 1, 2, "Student@Example.com")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(9), user.ID)
	courseRepo.AssertExpectations(t)
	emailSvc.AssertExpectations(t)
}

func TestCourseService_InviteByEmail_UnknownEmail(t *testing.T) {
	svc, courseRepo, userRepo, _ := newCourseServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.InviteByEmail(context.Background(), 1, 2, "ghost@example.com")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseService_InviteByEmail_AlreadyMember(t *testing.T) {
	svc, courseRepo, userRepo, emailSvc := newCourseServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)
	userRepo.On("GetByEmail", "student@example.com").Return(&entity.User{ID: 9, Email: "student@example.com"}, nil)
	courseRepo.On("AddMember", mock.Anything).Return(apperrors.ErrConflict)

	_, err := svc.InviteByEmail(context.Background(), 1, 2, "student@example.com")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	emailSvc.AssertNotCalled(t, "SendCourseInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCourseService_InviteByEmail_OnlyOwnerInvites(t *testing.T) {
	svc, courseRepo, userRepo, _ := newCourseServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)

	_, err := svc.InviteByEmail(context.Background(), 1, 5, "student@example.com")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
}

func TestCourseService_InviteByEmail_EmailFailureDoesNotRollback(t *testing.T) {
	// Членство создано, письмо не ушло: приглашение все равно успешно
	svc, courseRepo, userRepo, emailSvc := newCourseServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, Title: "Анализ", OwnerID: 2}, nil)
	userRepo.On("GetByEmail", "student@example.com").Return(&entity.User{ID: 9, Email: "student@example.com"}, nil)
	courseRepo.On("AddMember", mock.Anything).Return(nil)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2, Username: "teacher"}, nil)
	emailSvc.On("SendCourseInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	user, err := svc.InviteByEmail(context.Background(), 1, 2, "student@example.com")

	require.NoError(t, err)
	assert.Equal(t, uint(9), user.ID)
}

func TestCourseService_Delete_RemovesVectorCollection(t *testing.T) {
	// Arrange: в коллекции курса лежит проиндексированный чанк
	courseRepo := new(MockCourseRepository)
	userRepo := new(MockUserRepository)
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewCourseService(courseRepo, userRepo, store, new(MockEmailService))

	ctx := context.Background()
	course := &entity.Course{ID: 3, OwnerID: 2}
	require.NoError(t, store.Upsert(ctx, course.VectorCollection(), []vectorstore.Record{
		{ID: "doc.pdf:0", Vector: []float32{1}, Document: "чанк"},
	}))
	courseRepo.On("GetByID", uint(3)).Return(course, nil)
	courseRepo.On("Delete", uint(3)).Return(nil)

	// Act
	require.NoError(t, svc.Delete(ctx, 3, 2))

	// Assert: коллекция удалена вместе с курсом
	_, err = store.Query(ctx, course.VectorCollection(), []float32{1}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestCourseService_Delete_OnlyOwner(t *testing.T) {
	svc, courseRepo, _, _ := newCourseServiceForTest(t)
	courseRepo.On("GetByID", uint(3)).Return(&entity.Course{ID: 3, OwnerID: 2}, nil)

	err := svc.Delete(context.Background(), 3, 5)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	courseRepo.AssertNotCalled(t, "Delete", mock.Anything)
}
