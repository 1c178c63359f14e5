package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/courseward-api/internal/domain/entity"
)

// BuildFeedbackPrompt собирает промпт обратной связи по разобранной попытке.
// В промпт попадают только неправильно отвеченные (или пропущенные) вопросы,
// в порядке вопросов викторины. Детерминирован: одинаковый вход дает
// побайтно одинаковый текст.
func BuildFeedbackPrompt(course *entity.Course, quiz *entity.Quiz, scored []QuestionScore) string {
	lines := []string{
		fmt.Sprintf("Course: %s", course.Title),
		course.Description,
		"",
		fmt.Sprintf("Quiz: %s", quiz.Title),
		quiz.Description,
		"",
		"I answered the following questions incorrectly:",
	}

	for _, qs := range scored {
		if qs.Correct {
			continue
		}

		materials := qs.Question.StudyMaterials
		if materials == "" {
			materials = "None"
		}

		lines = append(lines,
			"",
			fmt.Sprintf("Question: %s", qs.Question.Title),
			qs.Question.Text,
			fmt.Sprintf("Study materials: %s", materials),
		)

		// Для неотвеченного вопроса строка с выбранным вариантом опускается
		if qs.Selected != nil {
			lines = append(lines, fmt.Sprintf("My answer: %s", qs.Selected.Text))
		}

		correctText := "<no correct answer found>"
		if correct := qs.Question.CorrectOption(); correct != nil {
			correctText = correct.Text
		}
		lines = append(lines, fmt.Sprintf("Correct answer: %s", correctText))
	}

	lines = append(lines,
		"",
		"Please provide detailed feedback on these mistakes and how to improve.",
	)
	return strings.Join(lines, "\n")
}

// QuizHelpInput — контекст вопроса, над которым работает преподаватель
type QuizHelpInput struct {
	QuizTitle           string
	QuizDescription     string
	QuestionTitle       string
	QuestionText        string
	AdditionalMaterials string
}

// BuildQuizHelpPrompt собирает системный промпт ассистента по созданию викторин
func BuildQuizHelpPrompt(in QuizHelpInput) string {
	return fmt.Sprintf(`You're a helpful assistant for quiz creation. The teacher is working on:
Quiz Title: %s
Quiz Description: %s

Current Question:
Title: %s
Text: %s

Additional Materials Provided: %s

Please answer the teacher's questions and help them create questions for this quiz.
`, in.QuizTitle, in.QuizDescription, in.QuestionTitle, in.QuestionText, in.AdditionalMaterials)
}
