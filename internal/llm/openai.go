package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/yourusername/courseward-api/internal/pkg/errors"
)

// OpenAIClient — реализация Completer поверх OpenAI-совместимого
// endpoint /chat/completions.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

// NewOpenAIClient создает клиент chat-completion.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete отправляет диалог модели и возвращает текст ответа.
// Сбой после всех повторов оборачивается в ErrUnavailable: для вызывающей
// стороны это повторяемая серверная ошибка.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty conversation", apperrors.ErrValidation)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
	}

	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, status, retryAfter, err := c.doOnce(ctx, reqBody)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryableStatus(status) || attempt == c.maxRetries {
			break
		}

		sleepFor := backoff
		if retryAfter > 0 {
			sleepFor = retryAfter
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		log.Printf("[LLM] Повтор запроса chat/completions (попытка %d/%d, пауза %s): %v",
			attempt+1, c.maxRetries, sleepFor, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return "", fmt.Errorf("%w: language model request failed: %v", apperrors.ErrUnavailable, lastErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func (c *OpenAIClient) doOnce(ctx context.Context, body chatRequest) (string, int, time.Duration, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", 0, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", 0, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", http.StatusServiceUnavailable, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var retryAfter time.Duration
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return "", resp.StatusCode, retryAfter, fmt.Errorf("chat API http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", resp.StatusCode, 0, fmt.Errorf("chat API decode error: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.StatusCode, 0, fmt.Errorf("chat API returned no choices")
	}
	return parsed.Choices[0].Message.Content, resp.StatusCode, 0, nil
}
