package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotifierService_OneEventPerQuizPerTick(t *testing.T) {
	// Arrange: маркеры по двум викторинам
	attemptRepo := new(MockAttemptRepository)
	svc := NewNotifierService(attemptRepo)

	attemptRepo.On("DistinctUnhandledQuizIDs", uint(5)).Return([]uint{1, 4}, nil).Once()
	attemptRepo.On("MarkHandledByQuiz", uint(1)).Return(int64(2), nil).Once()
	attemptRepo.On("MarkHandledByQuiz", uint(4)).Return(int64(1), nil).Once()

	// Act: первый тик
	events, err := svc.NextBatch(5)

	// Assert: ровно по одному событию на викторину, все маркеры поглощены
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint(1), events[0].QuizID)
	assert.Equal(t, uint(4), events[1].QuizID)
	assert.NotEmpty(t, events[0].Time)
	attemptRepo.AssertExpectations(t)

	// Второй тик сразу после первого: событий нет
	attemptRepo.On("DistinctUnhandledQuizIDs", uint(5)).Return([]uint{}, nil).Once()
	events, err = svc.NextBatch(5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNotifierService_MarkFailureStillEmits(t *testing.T) {
	// Событие уже в пакете: сбой отметки дает повтор на следующем тике,
	// а не потерю события
	attemptRepo := new(MockAttemptRepository)
	svc := NewNotifierService(attemptRepo)

	attemptRepo.On("DistinctUnhandledQuizIDs", uint(5)).Return([]uint{1}, nil)
	attemptRepo.On("MarkHandledByQuiz", uint(1)).Return(int64(0), assert.AnError)

	events, err := svc.NextBatch(5)

	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestNotifierService_NoMarkers(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewNotifierService(attemptRepo)

	attemptRepo.On("DistinctUnhandledQuizIDs", uint(5)).Return([]uint{}, nil)

	events, err := svc.NextBatch(5)

	require.NoError(t, err)
	assert.Empty(t, events)
	attemptRepo.AssertNotCalled(t, "MarkHandledByQuiz", mock.Anything)
}
