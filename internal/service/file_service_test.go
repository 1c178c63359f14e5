package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/internal/rag/ingest"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
	"github.com/yourusername/courseward-api/internal/storage"
)

// fixedEmbedder отдает одинаковый вектор на любой текст
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newFileServiceForTest(t *testing.T) (*FileService, *MockFileRepository, *MockCourseRepository, *MockCacheRepository, *vectorstore.FileStore, *storage.LocalProvider) {
	t.Helper()
	fileRepo := new(MockFileRepository)
	courseRepo := new(MockCourseRepository)
	cacheRepo := new(MockCacheRepository)
	store, err := vectorstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	provider, err := storage.NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	svc := NewFileService(fileRepo, courseRepo, cacheRepo, provider, fixedEmbedder{}, store, ingest.NewTextSplitter(1000, 200))
	return svc, fileRepo, courseRepo, cacheRepo, store, provider
}

func TestFileService_Upload_RejectsWrongContentType(t *testing.T) {
	svc, fileRepo, courseRepo, _, _, _ := newFileServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)

	// Валидация отклоняет документ до каких-либо изменений состояния
	_, err := svc.Upload(context.Background(), 1, 2, "doc.txt", "text/plain", []byte("hello"))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	fileRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestFileService_Upload_RejectsFakePDF(t *testing.T) {
	svc, fileRepo, courseRepo, _, _, _ := newFileServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)

	// Заявленный content type верный, но магических байт PDF нет
	_, err := svc.Upload(context.Background(), 1, 2, "doc.pdf", "application/pdf", []byte("not a pdf"))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	fileRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestFileService_Upload_ForbiddenForOutsider(t *testing.T) {
	svc, _, courseRepo, _, _, _ := newFileServiceForTest(t)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)
	courseRepo.On("IsMember", uint(1), uint(9)).Return(false, nil)

	_, err := svc.Upload(context.Background(), 1, 9, "doc.pdf", "application/pdf", []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestFileService_Delete_CascadesToVectorIndex(t *testing.T) {
	// Arrange: чанки двух файлов в коллекции курса
	svc, fileRepo, courseRepo, _, store, provider := newFileServiceForTest(t)
	ctx := context.Background()
	course := &entity.Course{ID: 1, OwnerID: 2}
	file := &entity.CourseFile{ID: 10, CourseID: 1, FileName: "a.pdf"}

	require.NoError(t, store.Upsert(ctx, course.VectorCollection(), []vectorstore.Record{
		{ID: "a.pdf:0", Vector: []float32{1, 0}, Document: "из удаляемого файла"},
		{ID: "b.pdf:0", Vector: []float32{0, 1}, Document: "из другого файла"},
	}))
	require.NoError(t, provider.Upload(ctx, file.StorageKey(), strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	fileRepo.On("GetByID", uint(10)).Return(file, nil)
	courseRepo.On("GetByID", uint(1)).Return(course, nil)
	fileRepo.On("Delete", uint(10)).Return(nil)

	// Act
	require.NoError(t, svc.Delete(ctx, 10, 2))

	// Assert: остались только чанки другого файла, объект удален
	results, err := store.Query(ctx, course.VectorCollection(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "из другого файла", results[0].Document)

	_, err = provider.Download(ctx, file.StorageKey())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFileService_Delete_OnlyCourseOwner(t *testing.T) {
	svc, fileRepo, courseRepo, _, _, _ := newFileServiceForTest(t)
	fileRepo.On("GetByID", uint(10)).Return(&entity.CourseFile{ID: 10, CourseID: 1, FileName: "a.pdf"}, nil)
	courseRepo.On("GetByID", uint(1)).Return(&entity.Course{ID: 1, OwnerID: 2}, nil)

	err := svc.Delete(context.Background(), 10, 9)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	fileRepo.AssertNotCalled(t, "Delete", mock.Anything)
}
