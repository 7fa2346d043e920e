package ui

import (
	"testing"

	"ytAgent/internal/bus"

	"github.com/stretchr/testify/assert"
)

func TestFormatSubscribers(t *testing.T) {
	assert.Equal(t, "14.1M", FormatSubscribers(14_100_000))
	assert.Equal(t, "2M", FormatSubscribers(2_000_000))
	assert.Equal(t, "500K", FormatSubscribers(500_000))
	assert.Equal(t, "999", FormatSubscribers(999))
	assert.Equal(t, "0", FormatSubscribers(0))
}

func TestFormatProgress(t *testing.T) {
	line := FormatProgress(bus.Progress{Phase: "task_done", Index: 2, Total: 3, Outcome: "error", Error: "like: detached"})
	assert.Contains(t, line, "[2/3]")
	assert.Contains(t, line, "ошибка")
	assert.Contains(t, line, "like: detached")

	assert.Contains(t, FormatProgress(bus.Progress{Phase: "stopped", Index: 2, Total: 5}), "3")
	assert.Contains(t, FormatProgress(bus.Progress{Phase: "finished", Outcome: "stopped"}), "остановлен")
}
