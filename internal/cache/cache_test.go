package cache

import (
	"context"
	"testing"

	"ytAgent/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingDirectory struct {
	calls int
}

func (d *countingDirectory) ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error) {
	d.calls++
	return []model.Channel{{ID: "UC1", Title: query}}, nil
}

func (d *countingDirectory) UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error) {
	return []string{"https://www.youtube.com/watch?v=" + channelID}, nil
}

func TestCachedDirectory_WithoutRedisPassesThrough(t *testing.T) {
	next := &countingDirectory{}
	c := NewCachedDirectory(next, nil, 0, nil)

	for i := 0; i < 2; i++ {
		channels, err := c.ResolveChannels(context.Background(), "Veritasium", 5)
		require.NoError(t, err)
		assert.Equal(t, "Veritasium", channels[0].Title)
	}
	assert.Equal(t, 2, next.calls)

	links, err := c.UploadedVideos(context.Background(), "abc", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, links)
}

func TestConnect_EmptyURLDisablesCache(t *testing.T) {
	assert.Nil(t, Connect(context.Background(), "", zap.NewNop()))
	assert.Nil(t, Connect(context.Background(), "not a url", zap.NewNop()))
}

func TestSearchKey_NormalizesQuery(t *testing.T) {
	assert.Equal(t, searchKey("Veri tasium", 5), searchKey("veritasium", 5))
	assert.NotEqual(t, searchKey("veritasium", 5), searchKey("veritasium", 10))
}
