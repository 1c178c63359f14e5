package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (повторная попытка пройти
	// викторину, повторное приглашение участника).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется, когда внешний коллаборатор (LLM, embeddings)
	// недоступен. Для клиента это повторяемая серверная ошибка.
	ErrUnavailable = errors.New("collaborator unavailable")
)
