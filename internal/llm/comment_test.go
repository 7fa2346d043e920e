package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	prompts []string
}

func (l *recordingLogger) LogLLMRequest(ctx context.Context, runID *uint, role, promptText, responseText, model string, tokensUsed int) error {
	l.prompts = append(l.prompts, promptText)
	return nil
}

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && assert.Len(t, body.Messages, 1) {
			assert.Equal(t, "test-model", body.Model)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Contains(t, body.Messages[0].Content, "Why the sky is blue")
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
			"usage": map[string]any{"total_tokens": 12},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateComment_StripsQuotes(t *testing.T) {
	srv := completionServer(t, `"Great explanation, I finally get Rayleigh scattering now!"`, http.StatusOK)
	logger := &recordingLogger{}
	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Model: "test-model"}, logger)

	comment, err := c.GenerateComment(context.Background(), "Why the sky is blue")
	require.NoError(t, err)
	assert.Equal(t, "Great explanation, I finally get Rayleigh scattering now!", comment)
	assert.Len(t, logger.prompts, 1)
}

func TestGenerateComment_UpstreamFailure(t *testing.T) {
	srv := completionServer(t, "", http.StatusUnauthorized)
	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Model: "test-model"}, nil)

	_, err := c.GenerateComment(context.Background(), "Why the sky is blue")
	var genErr *CommentGenerationError
	assert.True(t, errors.As(err, &genErr))
}

func TestCleanComment(t *testing.T) {
	assert.Equal(t, "hello", CleanComment(`"hello"`))
	assert.Equal(t, "hello", CleanComment("  hello \n"))
	assert.Equal(t, `say "hi" please`, CleanComment(`say "hi" please`))
}
