package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ytAgent/internal/sanitizer"

	"github.com/sashabaranov/go-openai"
)

var surroundingQuotes = regexp.MustCompile(`^"(.*)"$`)

// commentPrompt это запрос на короткий естественный комментарий.
func commentPrompt(videoTitle string) string {
	return fmt.Sprintf("Generate a natural comment (10–15 words) for: %s", videoTitle)
}

// GenerateComment возвращает комментарий без обрамляющих кавычек. Пустая
// строка без ошибки означает, что модель ничего не предложила.
func (c *Client) GenerateComment(ctx context.Context, videoTitle string) (string, error) {
	prompt := commentPrompt(videoTitle)

	resp, err := c.createChatCompletionWithRateLimit(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", &CommentGenerationError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	content := resp.Choices[0].Message.Content

	if c.logger != nil {
		_ = c.logger.LogLLMRequest(ctx, nil, openai.ChatMessageRoleUser,
			sanitizer.Sanitize(prompt), sanitizer.Sanitize(content), c.model, resp.Usage.TotalTokens)
	}

	return CleanComment(content), nil
}

// CleanComment снимает кавычки, в которые модель любит заворачивать ответ.
func CleanComment(s string) string {
	s = surroundingQuotes.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
