package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHub_FilteredDelivery(t *testing.T) {
	hub := NewLifecycleHub()
	sub := hub.Subscribe(func(e LifecycleEvent) bool { return e.Tab == 2 })
	defer sub.Close()

	hub.Publish(LifecycleEvent{Tab: 1, Status: StatusComplete})
	hub.Publish(LifecycleEvent{Tab: 2, Status: StatusComplete, URL: "https://example.com"})

	e := <-sub.C
	assert.Equal(t, TabID(2), e.Tab)
	assert.Equal(t, "https://example.com", e.URL)
	assert.Empty(t, sub.C)
}

func TestLifecycleHub_StatusTracksLastEvent(t *testing.T) {
	hub := NewLifecycleHub()

	_, ok := hub.Status(5)
	assert.False(t, ok)

	hub.Publish(LifecycleEvent{Tab: 5, Status: StatusLoading})
	e, ok := hub.Status(5)
	require.True(t, ok)
	assert.Equal(t, StatusLoading, e.Status)

	hub.Publish(LifecycleEvent{Tab: 5, Status: StatusComplete})
	e, _ = hub.Status(5)
	assert.Equal(t, StatusComplete, e.Status)

	hub.Publish(LifecycleEvent{Tab: 5, Status: StatusClosed})
	_, ok = hub.Status(5)
	assert.False(t, ok)
}

func TestLifecycleHub_CloseRemovesSubscription(t *testing.T) {
	hub := NewLifecycleHub()
	sub := hub.Subscribe(nil)
	assert.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()
	assert.Zero(t, hub.Subscribers())

	_, open := <-sub.C
	assert.False(t, open)

	// публикация после закрытия не паникует
	hub.Publish(LifecycleEvent{Tab: 1, Status: StatusComplete})
}

func TestLifecycleStatusString(t *testing.T) {
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "unknown", LifecycleStatus(42).String())
}
