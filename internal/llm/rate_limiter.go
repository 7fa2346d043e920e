package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter реализует token bucket для запросов (RPM) и токенов (TPH).
// При исчерпании лимита возвращает ошибку, а не ждет: комментарий к
// конкретному видео не стоит задержки всей очереди.
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int

	requestTokens    int
	requestMu        sync.Mutex
	requestLastCheck time.Time

	tokenBudget    int
	tokenMu        sync.Mutex
	tokenLastCheck time.Time

	now func() time.Time
}

// NewRateLimiter создает новый rate limiter
func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30 // бесплатный тариф Groq
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 200000
	}

	now := time.Now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		requestTokens:     requestsPerMinute,
		requestLastCheck:  now,
		tokenBudget:       tokensPerHour,
		tokenLastCheck:    now,
		now:               time.Now,
	}
}

// refillRequestTokens пополняет токены запросов пропорционально прошедшему времени.
// Время последней проверки сдвигается только на использованную долю,
// иначе частые вызовы никогда не накопят целый токен.
func (rl *RateLimiter) refillRequestTokens() {
	now := rl.now()
	perToken := time.Minute / time.Duration(rl.requestsPerMinute)
	add := int(now.Sub(rl.requestLastCheck) / perToken)
	if add <= 0 {
		return
	}

	rl.requestTokens += add
	rl.requestLastCheck = rl.requestLastCheck.Add(time.Duration(add) * perToken)
	if rl.requestTokens >= rl.requestsPerMinute {
		rl.requestTokens = rl.requestsPerMinute
		rl.requestLastCheck = now
	}
}

// refillTokenBudget пополняет бюджет токенов
func (rl *RateLimiter) refillTokenBudget() {
	now := rl.now()
	add := int(now.Sub(rl.tokenLastCheck).Hours() * float64(rl.tokensPerHour))
	if add <= 0 {
		return
	}

	rl.tokenBudget += add
	rl.tokenLastCheck = now
	if rl.tokenBudget > rl.tokensPerHour {
		rl.tokenBudget = rl.tokensPerHour
	}
}

// AllowRequest проверяет, можно ли выполнить запрос
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	rl.requestMu.Lock()
	defer rl.requestMu.Unlock()

	rl.refillRequestTokens()

	if rl.requestTokens <= 0 {
		waitTime := time.Minute / time.Duration(rl.requestsPerMinute)
		return fmt.Errorf("превышен лимит запросов (%d RPM), повторите через %v", rl.requestsPerMinute, waitTime)
	}

	rl.requestTokens--
	return nil
}

// AllowTokens проверяет, можно ли использовать указанное количество токенов
func (rl *RateLimiter) AllowTokens(ctx context.Context, tokens int) error {
	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.refillTokenBudget()

	if rl.tokenBudget < tokens {
		missing := tokens - rl.tokenBudget
		waitTime := time.Duration(float64(time.Hour) * float64(missing) / float64(rl.tokensPerHour))
		return fmt.Errorf("превышен лимит токенов (%d TPH): требуется %d, доступно %d, повторите через %v",
			rl.tokensPerHour, tokens, rl.tokenBudget, waitTime.Round(time.Second))
	}

	rl.tokenBudget -= tokens
	return nil
}

// ConsumeTokens списывает токены после успешного запроса
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.tokenBudget -= tokens
	if rl.tokenBudget < 0 {
		rl.tokenBudget = 0
	}
}

// GetStats возвращает текущую статистику лимитера
func (rl *RateLimiter) GetStats() (requestsAvailable int, tokensAvailable int) {
	rl.requestMu.Lock()
	rl.refillRequestTokens()
	requestsAvailable = rl.requestTokens
	rl.requestMu.Unlock()

	rl.tokenMu.Lock()
	rl.refillTokenBudget()
	tokensAvailable = rl.tokenBudget
	rl.tokenMu.Unlock()

	return
}
