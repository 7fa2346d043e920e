package agent

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBusy: агент вкладки уже выполняет задачу.
var ErrBusy = errors.New("agent is already running a task")

// TaskError это ошибка шага задачи на странице видео.
type TaskError struct {
	Step string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func stepError(step string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskError{Step: step, Err: err}
}

// sleep ждет d или отмены ctx.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 || ctx.Err() != nil {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
