package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("llm circuit breaker is open")

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// BreakingCommenter перестает обращаться к модели после maxFailures ошибок
// подряд и пробует снова через resetTimeout.
type BreakingCommenter struct {
	next         Commenter
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       CircuitState
	failures    int
	lastFailure time.Time
}

func NewBreakingCommenter(next Commenter, maxFailures int, resetTimeout time.Duration) *BreakingCommenter {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	if resetTimeout <= 0 {
		resetTimeout = time.Minute
	}

	return &BreakingCommenter{
		next:         next,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        StateClosed,
	}
}

func (b *BreakingCommenter) GenerateComment(ctx context.Context, videoTitle string) (string, error) {
	b.mu.Lock()
	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.resetTimeout {
			b.mu.Unlock()
			return "", ErrCircuitOpen
		}
		b.state = StateHalfOpen
	}
	b.mu.Unlock()

	text, err := b.next.GenerateComment(ctx, videoTitle)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Отмена прогона не говорит о здоровье модели
	if err != nil && ctx.Err() == nil {
		b.failures++
		b.lastFailure = b.now()
		if b.state == StateHalfOpen || b.failures >= b.maxFailures {
			b.state = StateOpen
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	b.state = StateClosed
	b.failures = 0
	return text, nil
}

func (b *BreakingCommenter) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
