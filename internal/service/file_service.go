package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
	"github.com/yourusername/courseward-api/internal/rag/embedding"
	"github.com/yourusername/courseward-api/internal/rag/ingest"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
	"github.com/yourusername/courseward-api/internal/storage"
)

// ingestLockTTL ограничивает время удержания замка индексирования
const ingestLockTTL = 5 * time.Minute

// embedBatchSize — сколько чанков уходит в один запрос эмбеддингов
const embedBatchSize = 64

// FileService управляет документами курса: хранение, извлечение текста
// и индексирование в коллекции курса
type FileService struct {
	fileRepo    repository.FileRepository
	courseRepo  repository.CourseRepository
	cacheRepo   repository.CacheRepository
	provider    storage.Provider
	embedder    embedding.Embedder
	vectorStore vectorstore.Store
	splitter    *ingest.TextSplitter
}

// NewFileService создает новый сервис документов
func NewFileService(
	fileRepo repository.FileRepository,
	courseRepo repository.CourseRepository,
	cacheRepo repository.CacheRepository,
	provider storage.Provider,
	embedder embedding.Embedder,
	vectorStore vectorstore.Store,
	splitter *ingest.TextSplitter,
) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		courseRepo:  courseRepo,
		cacheRepo:   cacheRepo,
		provider:    provider,
		embedder:    embedder,
		vectorStore: vectorStore,
		splitter:    splitter,
	}
}

// Upload принимает PDF, сохраняет его в хранилище и индексирует текст
// в коллекции курса. Валидация и извлечение текста происходят до любых
// изменений состояния. Повторная загрузка файла с тем же именем
// переиндексирует его чанки (upsert по id).
func (s *FileService) Upload(ctx context.Context, courseID, userID uint, fileName, contentType string, data []byte) (*entity.CourseFile, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != userID {
		ok, err := s.courseRepo.IsMember(courseID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrForbidden
		}
	}

	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." {
		return nil, fmt.Errorf("%w: file name is required", apperrors.ErrValidation)
	}
	if contentType != "application/pdf" {
		return nil, fmt.Errorf("%w: only application/pdf is accepted", apperrors.ErrValidation)
	}

	// Извлечение и чанкование до каких-либо записей
	text, err := ingest.ExtractPDF(data)
	if err != nil {
		return nil, err
	}
	chunks := s.splitter.Split(text)

	// Замок против параллельного индексирования того же файла курса:
	// upsert идемпотентен, но гонять эмбеддинги дважды незачем
	lockKey := fmt.Sprintf("ingest:course%d:%s", courseID, fileName)
	acquired, err := s.cacheRepo.SetNX(lockKey, "1", ingestLockTTL)
	if err != nil {
		log.Printf("[FileService] Не удалось взять замок %s: %v", lockKey, err)
	} else if !acquired {
		return nil, fmt.Errorf("%w: this file is already being ingested", apperrors.ErrConflict)
	}
	defer func() {
		if derr := s.cacheRepo.Delete(lockKey); derr != nil {
			log.Printf("[FileService] Не удалось снять замок %s: %v", lockKey, derr)
		}
	}()

	file := &entity.CourseFile{
		CourseID:    courseID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		ChunkCount:  len(chunks),
	}

	if err := s.provider.Upload(ctx, file.StorageKey(), bytes.NewReader(data), file.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if len(chunks) > 0 {
		if err := s.indexChunks(ctx, course.VectorCollection(), file.ChunkIDPrefix(), chunks); err != nil {
			// Откатываем сохраненный объект, записи в БД еще нет
			if derr := s.provider.Delete(ctx, file.StorageKey()); derr != nil {
				log.Printf("[FileService] Не удалось удалить объект %s после сбоя индексирования: %v", file.StorageKey(), derr)
			}
			return nil, err
		}
	}

	if err := s.fileRepo.Create(file); err != nil {
		return nil, err
	}

	log.Printf("[FileService] Документ %s загружен в курс %d, чанков: %d", fileName, courseID, len(chunks))
	return file, nil
}

// indexChunks эмбеддит чанки пакетами и кладет их в коллекцию курса
func (s *FileService) indexChunks(ctx context.Context, collection, idPrefix string, chunks []string) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := s.embedder.Embed(ctx, batch)
		if err != nil {
			return fmt.Errorf("%w: embedding failed: %v", apperrors.ErrUnavailable, err)
		}

		records := make([]vectorstore.Record, len(batch))
		for i := range batch {
			records[i] = vectorstore.Record{
				ID:       fmt.Sprintf("%s%d", idPrefix, start+i),
				Vector:   vectors[i],
				Document: batch[i],
			}
		}
		if err := s.vectorStore.Upsert(ctx, collection, records); err != nil {
			return fmt.Errorf("failed to index chunks: %w", err)
		}
	}
	return nil
}

// List возвращает документы курса
func (s *FileService) List(courseID, userID uint) ([]entity.CourseFile, error) {
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.fileRepo.GetByCourseID(courseID)
}

// Download возвращает содержимое документа
func (s *FileService) Download(ctx context.Context, fileID, userID uint) (*entity.CourseFile, []byte, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := s.courseRepo.IsOwnerOrMember(file.CourseID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.ErrForbidden
	}

	reader, err := s.provider.Download(ctx, file.StorageKey())
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, nil, fmt.Errorf("failed to read document %s: %w", file.StorageKey(), err)
	}
	return file, buf.Bytes(), nil
}

// Delete удаляет документ: запись в БД, объект в хранилище и его чанки
// в коллекции курса. Разрешено только владельцу курса.
func (s *FileService) Delete(ctx context.Context, fileID, userID uint) error {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(file.CourseID)
	if err != nil {
		return err
	}
	if course.OwnerID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.fileRepo.Delete(fileID); err != nil {
		return err
	}

	// Хранилище и индекс чистятся best-effort: запись уже удалена,
	// осиротевшие чанки переиндексируются при повторной загрузке файла
	if err := s.provider.Delete(ctx, file.StorageKey()); err != nil {
		log.Printf("[FileService] Не удалось удалить объект %s: %v", file.StorageKey(), err)
	}
	if err := s.vectorStore.DeleteByPrefix(ctx, course.VectorCollection(), file.ChunkIDPrefix()); err != nil {
		log.Printf("[FileService] Не удалось удалить чанки %s из коллекции %s: %v",
			file.ChunkIDPrefix(), course.VectorCollection(), err)
	}
	return nil
}
