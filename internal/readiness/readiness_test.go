package readiness

import (
	"context"
	"testing"
	"time"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/poll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReady_FiresOnlyForOwnTab(t *testing.T) {
	hub := browser.NewLifecycleHub()
	d := New(hub, bus.New(nil), nil)

	done := make(chan error, 1)
	go func() { done <- d.AwaitReady(context.Background(), 2) }()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, time.Millisecond)

	hub.Publish(browser.LifecycleEvent{Tab: 1, Status: browser.StatusComplete})
	select {
	case <-done:
		t.Fatal("resolved for an unrelated tab")
	case <-time.After(20 * time.Millisecond):
	}

	hub.Publish(browser.LifecycleEvent{Tab: 2, Status: browser.StatusLoading})
	hub.Publish(browser.LifecycleEvent{Tab: 2, Status: browser.StatusComplete})
	require.NoError(t, <-done)

	assert.Zero(t, hub.Subscribers(), "listener must be removed after firing")
}

func TestAwaitReady_AlreadyComplete(t *testing.T) {
	hub := browser.NewLifecycleHub()
	hub.Publish(browser.LifecycleEvent{Tab: 4, Status: browser.StatusComplete})

	d := New(hub, bus.New(nil), nil)
	require.NoError(t, d.AwaitReady(context.Background(), 4))
	assert.Zero(t, hub.Subscribers())
}

func TestAwaitReady_TimeoutRemovesListener(t *testing.T) {
	hub := browser.NewLifecycleHub()
	d := New(hub, bus.New(nil), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	err := d.AwaitReady(ctx, 9)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, hub.Subscribers())
}

func TestAwaitReady_TabClosed(t *testing.T) {
	hub := browser.NewLifecycleHub()
	d := New(hub, bus.New(nil), nil)

	done := make(chan error, 1)
	go func() { done <- d.AwaitReady(context.Background(), 3) }()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, time.Millisecond)

	hub.Publish(browser.LifecycleEvent{Tab: 3, Status: browser.StatusClosed})
	assert.ErrorIs(t, <-done, ErrTabClosed)
}

func TestAwaitAgentReady_WaitsForInjection(t *testing.T) {
	b := bus.New(nil)
	d := New(browser.NewLifecycleHub(), b, nil)

	go func() {
		time.Sleep(30 * time.Millisecond)
		mux := bus.NewMux()
		mux.Handle(bus.ActionPing, func(ctx context.Context, req bus.Request, respond bus.Responder) bus.Reply {
			return bus.Respond(bus.Response{Status: bus.StatusReady})
		})
		b.Listen(context.Background(), bus.TabEndpoint(5), mux.Serve)
	}()

	err := d.AwaitAgentReady(context.Background(), 5, 5*time.Millisecond, time.Second)
	require.NoError(t, err)
}

func TestAwaitAgentReady_TimesOutWithoutAgent(t *testing.T) {
	d := New(browser.NewLifecycleHub(), bus.New(nil), nil)

	err := d.AwaitAgentReady(context.Background(), 5, 5*time.Millisecond, 30*time.Millisecond)
	assert.ErrorIs(t, err, poll.ErrTimeout)
}
