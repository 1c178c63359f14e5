package service

import (
	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// QuestionScore — результат проверки одного вопроса
type QuestionScore struct {
	Question *entity.Question
	// Selected — выбранный вариант; nil, если вопрос не отвечен
	// или выбранный id не принадлежит вопросу
	Selected *entity.AnswerOption
	Correct  bool
}

// ScoreResult — итог подсчета попытки
type ScoreResult struct {
	CorrectCount int
	Total        int
	Ratio        float64
	// Passed — достигнут ли порог min_correct_ratio викторины
	Passed    bool
	Questions []QuestionScore
}

// ScoreQuiz подсчитывает попытку: selections — выбранный вариант по каждому
// отвеченному вопросу (question_id -> answer_option_id).
// Неотвеченный вопрос считается неправильным и входит в Total.
// Викторина без вопросов дает Ratio 0 и Passed false.
func ScoreQuiz(quiz *entity.Quiz, selections map[uint]uint) ScoreResult {
	result := ScoreResult{
		Total:     len(quiz.Questions),
		Questions: make([]QuestionScore, 0, len(quiz.Questions)),
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		qs := QuestionScore{Question: q}

		if optionID, ok := selections[q.ID]; ok {
			for j := range q.Options {
				if q.Options[j].ID == optionID {
					qs.Selected = &q.Options[j]
					qs.Correct = q.Options[j].IsCorrect
					break
				}
			}
		}

		if qs.Correct {
			result.CorrectCount++
		}
		result.Questions = append(result.Questions, qs)
	}

	if result.Total > 0 {
		result.Ratio = float64(result.CorrectCount) / float64(result.Total)
		result.Passed = result.Ratio >= quiz.MinCorrectRatio
	}
	return result
}
