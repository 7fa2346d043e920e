package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerMinute int
	TokensPerHour     int
}

type Client struct {
	client      *openai.Client
	model       string
	logger      Logger
	rateLimiter *RateLimiter
}

func NewClient(cfg Config, logger Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	oaCfg.BaseURL = cfg.BaseURL

	return &Client{
		client:      openai.NewClientWithConfig(oaCfg),
		model:       cfg.Model,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute, cfg.TokensPerHour),
	}
}

// createChatCompletionWithRateLimit выполняет запрос с проверкой rate limit
func (c *Client) createChatCompletionWithRateLimit(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	// Проверка лимита запросов
	if err := c.rateLimiter.AllowRequest(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	// Оценка количества токенов (грубая оценка: ~4 символа на токен)
	estimatedTokens := 0
	for _, msg := range req.Messages {
		estimatedTokens += len(msg.Content) / 4
	}
	estimatedTokens += req.MaxTokens

	if err := c.rateLimiter.AllowTokens(ctx, estimatedTokens); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	// Корректируем использованные токены (теперь знаем точное значение)
	if resp.Usage.TotalTokens > estimatedTokens {
		c.rateLimiter.ConsumeTokens(resp.Usage.TotalTokens - estimatedTokens)
	}

	return resp, nil
}
