// Package llm генерирует короткие комментарии к видео через OpenAI-совместимый
// API (по умолчанию Groq). Включает rate limiting и логирование запросов.
package llm

import (
	"context"
	"fmt"
)

// Logger определяет интерфейс для логирования LLM запросов.
type Logger interface {
	// LogLLMRequest сохраняет информацию о запросе к LLM в базу данных.
	LogLLMRequest(ctx context.Context, runID *uint, role, promptText, responseText, model string, tokensUsed int) error
}

// Commenter производит текст комментария по названию видео.
type Commenter interface {
	GenerateComment(ctx context.Context, videoTitle string) (string, error)
}

// CommentGenerationError оборачивает любую ошибку получения комментария.
// Агент такие ошибки только логирует.
type CommentGenerationError struct {
	Err error
}

func (e *CommentGenerationError) Error() string {
	return fmt.Sprintf("генерация комментария: %v", e.Err)
}

func (e *CommentGenerationError) Unwrap() error {
	return e.Err
}
