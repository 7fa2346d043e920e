// Package poll содержит ограниченный по времени цикл повторных проверок с
// постоянной задержкой. Используется и при ожидании подгрузки списка видео,
// и при опросе агента вкладки.
package poll

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrTimeout возвращается, если условие не выполнилось за отведенное время.
var ErrTimeout = errors.New("poll: condition not met before timeout")

var errNotYet = errors.New("poll: not yet")

// Condition проверяет условие. Ошибка прерывает опрос немедленно.
type Condition func(ctx context.Context) (bool, error)

// Until вызывает cond каждые interval, пока он не вернет true.
// timeout <= 0 означает ожидание до отмены ctx.
func Until(ctx context.Context, interval, timeout time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	maxElapsed := timeout
	if maxElapsed <= 0 {
		maxElapsed = time.Duration(math.MaxInt64)
	}

	operation := func() (struct{}, error) {
		ok, err := cond(ctx)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if !ok {
			return struct{}{}, errNotYet
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if errors.Is(err, errNotYet) {
		return ErrTimeout
	}
	return err
}
