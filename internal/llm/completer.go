package llm

import "context"

// Роли сообщений диалога в терминах chat-completion API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message — одно сообщение диалога
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer — черный ящик генерации текста. Синхронный запрос-ответ,
// без стриминга. Реализация подключается через конфигурацию.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
