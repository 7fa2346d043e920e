// Package readiness определяет, когда вкладка загрузилась и когда ее агент
// готов принимать сообщения.
package readiness

import (
	"context"
	"errors"
	"time"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/poll"

	"go.uber.org/zap"
)

// ErrTabClosed возвращается, если вкладка закрылась до окончания загрузки.
var ErrTabClosed = errors.New("tab closed before it became ready")

// Lifecycle это источник событий жизненного цикла вкладок.
type Lifecycle interface {
	Subscribe(filter func(browser.LifecycleEvent) bool) *browser.Subscription
	Status(id browser.TabID) (browser.LifecycleEvent, bool)
}

// Messenger отправляет запросы агентам вкладок.
type Messenger interface {
	Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error)
}

type Detector struct {
	lifecycle Lifecycle
	messenger Messenger
	log       *zap.Logger
}

func New(lifecycle Lifecycle, messenger Messenger, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{lifecycle: lifecycle, messenger: messenger, log: log}
}

// AwaitReady возвращается один раз, когда загрузка вкладки tab завершилась.
// Подписка ограничена этой вкладкой и снимается на любом пути выхода.
func (d *Detector) AwaitReady(ctx context.Context, tab browser.TabID) error {
	sub := d.lifecycle.Subscribe(func(e browser.LifecycleEvent) bool {
		return e.Tab == tab
	})
	defer sub.Close()

	// Вкладка могла загрузиться до подписки.
	if e, ok := d.lifecycle.Status(tab); ok && e.Status == browser.StatusComplete {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.C:
			if !ok {
				return ErrTabClosed
			}
			switch e.Status {
			case browser.StatusComplete:
				d.log.Debug("Вкладка загружена", zap.Int("tab", int(tab)), zap.String("url", e.URL))
				return nil
			case browser.StatusClosed:
				return ErrTabClosed
			}
		}
	}
}

// AwaitAgentReady опрашивает агента вкладки ping каждые interval, пока не
// получит status=ready. Отсутствие ответа означает "еще не готов".
// timeout <= 0 ждет до отмены ctx.
func (d *Detector) AwaitAgentReady(ctx context.Context, tab browser.TabID, interval, timeout time.Duration) error {
	ep := bus.TabEndpoint(int(tab))
	attempts := 0

	err := poll.Until(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		attempts++
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		resp, err := d.messenger.Send(pingCtx, ep, bus.Ping{})
		if err != nil {
			return false, nil
		}
		return resp.Status == bus.StatusReady, nil
	})

	if err == nil {
		d.log.Debug("Агент вкладки готов", zap.Int("tab", int(tab)), zap.Int("attempts", attempts))
	}
	return err
}
