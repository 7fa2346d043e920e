package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsInt(t *testing.T) {
	assert.Equal(t, 3, asInt(3))
	assert.Equal(t, 4, asInt(int64(4)))
	assert.Equal(t, 5, asInt(5.0))
	assert.Equal(t, 0, asInt(nil))
	assert.Equal(t, 0, asInt("7"))
}

func TestAsBool(t *testing.T) {
	assert.True(t, asBool(true))
	assert.False(t, asBool(nil))
	assert.False(t, asBool("true"))
}
