package service

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/courseward-api/internal/domain/entity"
	"github.com/yourusername/courseward-api/internal/domain/repository"
	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// quizSchemaTTL — время жизни кеша схемы викторины
const quizSchemaTTL = 10 * time.Minute

// quizSchemaKey формирует ключ кеша схемы викторины (вопросы + варианты)
func quizSchemaKey(quizID uint) string {
	return fmt.Sprintf("quiz_schema:%d", quizID)
}

// OptionInput — вариант ответа при создании вопроса
type OptionInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionInput — вопрос при создании викторины
type QuestionInput struct {
	Title          string        `json:"title" binding:"required"`
	Text           string        `json:"text" binding:"required"`
	StudyMaterials string        `json:"study_materials"`
	Options        []OptionInput `json:"answers" binding:"required,min=2"`
}

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	quizRepo    repository.QuizRepository
	courseRepo  repository.CourseRepository
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	courseRepo repository.CourseRepository,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		courseRepo:  courseRepo,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
	}
}

// Create создает викторину с вопросами и вариантами ответов одной транзакцией.
// Создавать викторины могут владелец курса и его участники.
func (s *QuizService) Create(
	courseID, creatorID uint,
	title, description string,
	rewardCoins int,
	minCorrectRatio float64,
	questions []QuestionInput,
) (*entity.Quiz, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: quiz title is required", apperrors.ErrValidation)
	}
	if minCorrectRatio < 0 || minCorrectRatio > 1 {
		return nil, fmt.Errorf("%w: min_correct_ratio must be within [0, 1]", apperrors.ErrValidation)
	}

	if _, err := s.courseRepo.GetByID(courseID); err != nil {
		return nil, err
	}
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, creatorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}

	quiz := &entity.Quiz{
		CourseID:        courseID,
		Title:           strings.TrimSpace(title),
		Description:     description,
		RewardCoins:     rewardCoins,
		MinCorrectRatio: minCorrectRatio,
	}
	for _, q := range questions {
		question := entity.Question{
			Title:          q.Title,
			Text:           q.Text,
			StudyMaterials: q.StudyMaterials,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, entity.AnswerOption{
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizRepo.CreateWithQuestions(quiz); err != nil {
		return nil, err
	}

	log.Printf("[QuizService] Создана викторина id=%d course=%d questions=%d",
		quiz.ID, courseID, len(quiz.Questions))
	return quiz, nil
}

// GetForUser возвращает викторину с вопросами, если пользователю доступен её курс
func (s *QuizService) GetForUser(quizID, userID uint) (*entity.Quiz, error) {
	quiz, err := s.GetSchema(quizID)
	if err != nil {
		return nil, err
	}

	ok, err := s.courseRepo.IsOwnerOrMember(quiz.CourseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	return quiz, nil
}

// ListByCourse возвращает викторины курса (без вопросов)
func (s *QuizService) ListByCourse(courseID, userID uint) ([]entity.Quiz, error) {
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.quizRepo.GetByCourseID(courseID)
}

// Кешировать entity.Quiz напрямую нельзя: у AnswerOption.IsCorrect
// json-тег "-" (флаг не должен утекать в API-ответы), и JSON-раунд-трип
// через Redis стер бы ключ правильных ответов. Схема сериализуется
// отдельными структурами с явными тегами.
type cachedQuizSchema struct {
	ID              uint                 `json:"id"`
	CourseID        uint                 `json:"course_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	RewardCoins     int                  `json:"reward_coins"`
	MinCorrectRatio float64              `json:"min_correct_ratio"`
	Questions       []cachedQuizQuestion `json:"questions"`
}

type cachedQuizQuestion struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	Text           string             `json:"text"`
	StudyMaterials string             `json:"study_materials"`
	Options        []cachedQuizOption `json:"options"`
}

type cachedQuizOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

func toCachedSchema(quiz *entity.Quiz) cachedQuizSchema {
	schema := cachedQuizSchema{
		ID:              quiz.ID,
		CourseID:        quiz.CourseID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		RewardCoins:     quiz.RewardCoins,
		MinCorrectRatio: quiz.MinCorrectRatio,
	}
	for _, q := range quiz.Questions {
		question := cachedQuizQuestion{
			ID:             q.ID,
			Title:          q.Title,
			Text:           q.Text,
			StudyMaterials: q.StudyMaterials,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, cachedQuizOption{
				ID:        o.ID,
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		schema.Questions = append(schema.Questions, question)
	}
	return schema
}

func fromCachedSchema(schema cachedQuizSchema) *entity.Quiz {
	quiz := &entity.Quiz{
		ID:              schema.ID,
		CourseID:        schema.CourseID,
		Title:           schema.Title,
		Description:     schema.Description,
		RewardCoins:     schema.RewardCoins,
		MinCorrectRatio: schema.MinCorrectRatio,
	}
	for _, q := range schema.Questions {
		question := entity.Question{
			ID:             q.ID,
			QuizID:         schema.ID,
			Title:          q.Title,
			Text:           q.Text,
			StudyMaterials: q.StudyMaterials,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, entity.AnswerOption{
				ID:         o.ID,
				QuestionID: q.ID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

// GetSchema возвращает викторину с вопросами и вариантами ответов,
// кешируя схему в Redis: на путях прохождения и подсчета она запрашивается
// многократно, а меняться после создания не может.
func (s *QuizService) GetSchema(quizID uint) (*entity.Quiz, error) {
	var cached cachedQuizSchema
	if err := s.cacheRepo.GetJSON(quizSchemaKey(quizID), &cached); err == nil && cached.ID == quizID {
		return fromCachedSchema(cached), nil
	}

	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(quizSchemaKey(quizID), toCachedSchema(quiz), quizSchemaTTL); err != nil {
		log.Printf("[QuizService] Не удалось закешировать схему викторины %d: %v", quizID, err)
	}
	return quiz, nil
}

// QuizProgress — прогресс пользователя по одной викторине курса.
// CorrectRatio равен nil, пока викторина не пройдена.
type QuizProgress struct {
	QuizID          uint     `json:"quiz_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RewardCoins     int      `json:"coins"`
	MinCorrectRatio float64  `json:"min_correct_ratio"`
	IsComplete      bool     `json:"is_complete"`
	CorrectRatio    *float64 `json:"correct_ratio"`
}

// CourseProgress — курс глазами участника: заголовок и прогресс по викторинам
type CourseProgress struct {
	CourseID uint           `json:"course_id"`
	Title    string         `json:"title"`
	Quizzes  []QuizProgress `json:"quizzes"`
}

// GetCourseProgress возвращает викторины курса с отметками о прохождении
// текущим пользователем. Викторина считается пройденной, когда доля
// правильных ответов попытки не ниже порога.
func (s *QuizService) GetCourseProgress(courseID, userID uint) (*CourseProgress, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	ok, err := s.courseRepo.IsOwnerOrMember(courseID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}

	quizzes, err := s.quizRepo.GetByCourseID(courseID)
	if err != nil {
		return nil, err
	}

	progress := &CourseProgress{
		CourseID: course.ID,
		Title:    course.Title,
		Quizzes:  make([]QuizProgress, 0, len(quizzes)),
	}
	for _, quiz := range quizzes {
		p := QuizProgress{
			QuizID:          quiz.ID,
			Title:           quiz.Title,
			Description:     quiz.Description,
			RewardCoins:     quiz.RewardCoins,
			MinCorrectRatio: quiz.MinCorrectRatio,
		}

		attempt, err := s.attemptRepo.GetByUserAndQuiz(userID, quiz.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if attempt != nil {
			ratio := 0.0
			if attempt.TotalAnswers > 0 {
				ratio = float64(attempt.CorrectAnswers) / float64(attempt.TotalAnswers)
			}
			p.CorrectRatio = &ratio
			p.IsComplete = ratio >= quiz.MinCorrectRatio
		}
		progress.Quizzes = append(progress.Quizzes, p)
	}
	return progress, nil
}

// Delete удаляет викторину. Разрешено только владельцу курса.
func (s *QuizService) Delete(quizID, userID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(quiz.CourseID)
	if err != nil {
		return err
	}
	if course.OwnerID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.quizRepo.Delete(quizID); err != nil {
		return err
	}
	if err := s.cacheRepo.Delete(quizSchemaKey(quizID)); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш схемы викторины %d: %v", quizID, err)
	}
	return nil
}

// ExportResultsXLSX выгружает результаты всех попыток викторины в xlsx.
// Доступно только владельцу курса.
func (s *QuizService) ExportResultsXLSX(quizID, userID uint) ([]byte, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != userID {
		return nil, apperrors.ErrForbidden
	}

	attempts, err := s.attemptRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Username", "Email", "Correct", "Total", "Ratio", "Passed", "Attempted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, attempt := range attempts {
		username, email := "", ""
		if user, uerr := s.userRepo.GetByID(attempt.UserID); uerr == nil {
			username, email = user.Username, user.Email
		}

		ratio := 0.0
		if attempt.TotalAnswers > 0 {
			ratio = float64(attempt.CorrectAnswers) / float64(attempt.TotalAnswers)
		}

		values := []interface{}{
			username,
			email,
			attempt.CorrectAnswers,
			attempt.TotalAnswers,
			ratio,
			ratio >= quiz.MinCorrectRatio && attempt.TotalAnswers > 0,
			attempt.AttemptedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
